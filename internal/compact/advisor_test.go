package compact

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestEvaluateScenarios covers the concrete threshold and debounce cases.
func TestEvaluateScenarios(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	tests := []struct {
		name        string
		state       State
		now         time.Time
		wantSuggest bool
		wantState   State
		wantCount   int64
	}{
		{
			name:        "first edit",
			state:       State{EditCount: 0, LastSuggestionTime: 0},
			now:         time.UnixMilli(500),
			wantSuggest: false,
			wantState:   State{EditCount: 1, LastSuggestionTime: 0},
			wantCount:   1,
		},
		{
			name:        "threshold reached, never suggested",
			state:       State{EditCount: 19, LastSuggestionTime: 0},
			now:         time.UnixMilli(1_000_000),
			wantSuggest: true,
			wantState: State{
				EditCount: 0, LastSuggestionTime: 1_000_000,
			},
			wantCount: 20,
		},
		{
			name: "threshold reached within debounce",
			state: State{
				EditCount:          19,
				LastSuggestionTime: now.UnixMilli() - 60_000,
			},
			now:         now,
			wantSuggest: false,
			wantState: State{
				EditCount:          20,
				LastSuggestionTime: now.UnixMilli() - 60_000,
			},
			wantCount: 20,
		},
		{
			name: "threshold reached after debounce",
			state: State{
				EditCount:          19,
				LastSuggestionTime: now.UnixMilli() - 360_000,
			},
			now:         now,
			wantSuggest: true,
			wantState: State{
				EditCount: 0, LastSuggestionTime: now.UnixMilli(),
			},
			wantCount: 20,
		},
		{
			name: "elapsed exactly the window does not qualify",
			state: State{
				EditCount:          19,
				LastSuggestionTime: now.UnixMilli() - 300_000,
			},
			now:         now,
			wantSuggest: false,
			wantState: State{
				EditCount:          20,
				LastSuggestionTime: now.UnixMilli() - 300_000,
			},
			wantCount: 20,
		},
		{
			name:        "one below threshold",
			state:       State{EditCount: 18},
			now:         now,
			wantSuggest: false,
			wantState:   State{EditCount: 19},
			wantCount:   19,
		},
		{
			name:        "far above threshold resets",
			state:       State{EditCount: 25},
			now:         now,
			wantSuggest: true,
			wantState: State{
				EditCount: 0, LastSuggestionTime: now.UnixMilli(),
			},
			wantCount: 26,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := Evaluate(tc.state, tc.now)

			require.Equal(t, tc.wantSuggest, decision.Suggest)
			require.Equal(t, tc.wantState, decision.State)
			require.Equal(t, tc.wantCount, decision.EditCount)
		})
	}
}

// TestEvaluateBelowThresholdNeverSuggests checks that counts below the
// threshold only ever increment.
func TestEvaluateBelowThresholdNeverSuggests(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		state := State{
			EditCount: rapid.Int64Range(
				0, EditThreshold-2,
			).Draw(rt, "editCount"),
			LastSuggestionTime: rapid.Int64Range(
				0, 1<<50,
			).Draw(rt, "lastSuggestion"),
		}
		now := time.UnixMilli(
			rapid.Int64Range(0, 1<<51).Draw(rt, "now"),
		)

		decision := Evaluate(state, now)

		require.False(rt, decision.Suggest)
		require.Equal(rt, state.EditCount+1, decision.State.EditCount)
		require.Equal(rt, state.EditCount+1, decision.EditCount)
		require.Equal(
			rt, state.LastSuggestionTime,
			decision.State.LastSuggestionTime,
		)
	})
}

// TestEvaluateAtThreshold checks both sides of the debounce window once the
// threshold is reached.
func TestEvaluateAtThreshold(t *testing.T) {
	window := DebounceWindow.Milliseconds()

	rapid.Check(t, func(rt *rapid.T) {
		last := rapid.Int64Range(0, 1<<50).Draw(rt, "lastSuggestion")
		elapsed := rapid.Int64Range(
			-window, 4*window,
		).Draw(rt, "elapsed")
		now := time.UnixMilli(last + elapsed)

		state := State{
			EditCount:          EditThreshold - 1,
			LastSuggestionTime: last,
		}
		decision := Evaluate(state, now)

		require.Equal(rt, int64(EditThreshold), decision.EditCount)

		if elapsed > window {
			require.True(rt, decision.Suggest)
			require.Equal(rt, State{
				EditCount:          0,
				LastSuggestionTime: now.UnixMilli(),
			}, decision.State)

			return
		}

		require.False(rt, decision.Suggest)
		require.Equal(rt, State{
			EditCount:          EditThreshold,
			LastSuggestionTime: last,
		}, decision.State)
	})
}

// TestEvaluateInvariants runs random edit sequences with a monotonic clock
// and checks the state invariants after every step.
func TestEvaluateInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		state := DefaultState()
		clock := rapid.Int64Range(0, 1<<40).Draw(rt, "start")

		steps := rapid.IntRange(1, 120).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			clock += rapid.Int64Range(0, 120_000).Draw(rt, "tick")
			prev := state

			decision := Evaluate(state, time.UnixMilli(clock))
			state = decision.State

			require.GreaterOrEqual(rt, state.EditCount, int64(0))
			require.GreaterOrEqual(
				rt, state.LastSuggestionTime,
				prev.LastSuggestionTime,
			)
			require.Equal(rt, prev.EditCount+1, decision.EditCount)

			if decision.Suggest {
				require.Zero(rt, state.EditCount)
				require.Equal(rt, clock, state.LastSuggestionTime)
			}
		}
	})
}

// TestEvaluateSaturatesCount checks that the largest stored count doesn't
// wrap negative.
func TestEvaluateSaturatesCount(t *testing.T) {
	now := time.UnixMilli(10_000_000)

	// Inside the debounce window the count stays at its ceiling.
	decision := Evaluate(State{
		EditCount:          math.MaxInt64,
		LastSuggestionTime: now.UnixMilli(),
	}, now)
	require.False(t, decision.Suggest)
	require.Equal(t, int64(math.MaxInt64), decision.EditCount)
	require.Equal(t, int64(math.MaxInt64), decision.State.EditCount)

	// Outside it the suggestion fires and the count resets.
	decision = Evaluate(State{EditCount: math.MaxInt64}, now)
	require.True(t, decision.Suggest)
	require.Equal(t, int64(math.MaxInt64), decision.EditCount)
	require.Zero(t, decision.State.EditCount)

	// The same record read from disk goes through Advise unchanged.
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(
		path, []byte(`{"editCount":9223372036854775807,`+
			`"lastSuggestionTime":10000000}`), 0o600,
	))
	decision = Advise(ctx, NewFileStore(path), now)
	require.False(t, decision.Suggest)
	require.GreaterOrEqual(t, LoadState(path).EditCount, int64(0))
}

// TestEvaluateCountNeverNegative checks the count invariant over the whole
// non-negative range.
func TestEvaluateCountNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		state := State{
			EditCount: rapid.Int64Range(
				0, math.MaxInt64,
			).Draw(rt, "editCount"),
			LastSuggestionTime: rapid.Int64Range(
				0, 1<<50,
			).Draw(rt, "lastSuggestion"),
		}
		now := time.UnixMilli(
			rapid.Int64Range(0, 1<<51).Draw(rt, "now"),
		)

		decision := Evaluate(state, now)
		require.GreaterOrEqual(rt, decision.EditCount, int64(1))
		require.GreaterOrEqual(rt, decision.State.EditCount, int64(0))
	})
}

// TestSuggestionMessage checks the advisory text carries the count.
func TestSuggestionMessage(t *testing.T) {
	require.Equal(
		t,
		"[Compact] You've made 20 edits. Consider compacting if "+
			"you're transitioning phases.",
		SuggestionMessage(20),
	)
}

// TestAdvisePersistsDecision checks a full load, evaluate, save cycle
// against a file store.
func TestAdvisePersistsDecision(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))

	require.NoError(t, store.SaveState(ctx, State{EditCount: 19}))

	now := time.UnixMilli(1_000_000)
	decision := Advise(ctx, store, now)
	require.True(t, decision.Suggest)
	require.Equal(t, int64(20), decision.EditCount)

	require.Equal(t, State{
		EditCount: 0, LastSuggestionTime: 1_000_000,
	}, store.LoadState(ctx))

	// The next edit within the window starts counting again.
	decision = Advise(ctx, store, now.Add(time.Second))
	require.False(t, decision.Suggest)
	require.Equal(t, State{
		EditCount: 1, LastSuggestionTime: 1_000_000,
	}, store.LoadState(ctx))
}

// TestAdviseIgnoresSaveFailure checks that a store which can't persist
// still yields a decision.
func TestAdviseIgnoresSaveFailure(t *testing.T) {
	dir := t.TempDir()

	// The state path is an existing directory, so the rename fails.
	store := NewFileStore(dir)

	decision := Advise(context.Background(), store, time.UnixMilli(500))
	require.False(t, decision.Suggest)
	require.Equal(t, int64(1), decision.EditCount)
}
