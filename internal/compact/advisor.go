// Package compact tracks editing activity across hook invocations and
// decides when to suggest compacting the assistant's context.
//
// Each hook process loads the persisted State, runs exactly one Evaluate
// step and writes the result back. Persistence is best effort: a missing or
// corrupt record silently restarts the count from zero.
package compact

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	// EditThreshold is the number of qualifying edits after which a
	// suggestion may fire.
	EditThreshold = 20

	// DebounceWindow is the time that must pass after a suggestion
	// before another one may fire.
	DebounceWindow = 5 * time.Minute
)

// State is the persisted advisor record.
type State struct {
	// EditCount is the number of edits observed since the last
	// suggestion. It is never negative.
	EditCount int64 `json:"editCount"`

	// LastSuggestionTime is the epoch-millisecond time of the last
	// suggestion, or zero if none was ever made.
	LastSuggestionTime int64 `json:"lastSuggestionTime"`
}

// DefaultState returns the state used when nothing usable is persisted.
func DefaultState() State {
	return State{}
}

// Decision is the outcome of a single Evaluate step.
type Decision struct {
	// State is the record to persist.
	State State

	// Suggest is true when a compaction suggestion should be shown.
	Suggest bool

	// EditCount is the post-increment count at the time of the
	// decision, whether or not a suggestion fired.
	EditCount int64
}

// Evaluate counts one more edit and decides whether to suggest compaction.
// A suggestion fires once the count reaches EditThreshold and strictly more
// than DebounceWindow has elapsed since the previous suggestion.
func Evaluate(state State, now time.Time) Decision {
	nowMillis := now.UnixMilli()

	// The count saturates so a corrupt record can't wrap negative.
	incremented := state.EditCount
	if incremented < math.MaxInt64 {
		incremented++
	}

	// The debounce is measured against the previous suggestion, before
	// any mutation.
	elapsed := nowMillis - state.LastSuggestionTime

	if incremented >= EditThreshold &&
		elapsed > DebounceWindow.Milliseconds() {

		return Decision{
			State: State{
				EditCount:          0,
				LastSuggestionTime: nowMillis,
			},
			Suggest:   true,
			EditCount: incremented,
		}
	}

	return Decision{
		State: State{
			EditCount:          incremented,
			LastSuggestionTime: state.LastSuggestionTime,
		},
		EditCount: incremented,
	}
}

// SuggestionMessage is the advisory line shown when Evaluate suggests.
func SuggestionMessage(editCount int64) string {
	return fmt.Sprintf("[Compact] You've made %d edits. Consider "+
		"compacting if you're transitioning phases.", editCount)
}

// Advise runs one load, evaluate and save cycle against store. Persistence
// failures are logged and otherwise ignored.
func Advise(ctx context.Context, store StateStore, now time.Time) Decision {
	state := store.LoadState(ctx)
	decision := Evaluate(state, now)

	log.DebugS(ctx, "Evaluated edit",
		"prev_count", state.EditCount,
		"edit_count", decision.EditCount,
		"suggest", decision.Suggest)

	if err := store.SaveState(ctx, decision.State); err != nil {
		log.WarnS(ctx, "Unable to persist advisor state", err)
	}

	return decision
}
