package compact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DefaultStateFilename is the file name of the JSON state record in the
// system temp directory.
const DefaultStateFilename = ".claude-compact-state.json"

// ErrInvalidState is returned when a persisted record decodes but violates
// the State invariants.
var ErrInvalidState = errors.New("invalid advisor state")

// StateStore is the durable home of the advisor State. LoadState never
// fails: anything unusable yields DefaultState.
type StateStore interface {
	// LoadState returns the persisted state or DefaultState.
	LoadState(ctx context.Context) State

	// SaveState overwrites the persisted state.
	SaveState(ctx context.Context, state State) error
}

// DefaultStatePath returns the JSON state file location used when none is
// configured.
func DefaultStatePath() string {
	return filepath.Join(os.TempDir(), DefaultStateFilename)
}

// LoadState reads the JSON state record at path. It returns DefaultState if
// the file is missing, unreadable or holds anything but a valid record.
func LoadState(path string) State {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("No usable state at %s: %v", path, err)
		return DefaultState()
	}

	state, err := decodeState(data)
	if err != nil {
		log.Debugf("Discarding state at %s: %v", path, err)
		return DefaultState()
	}

	return state
}

// SaveState writes state to path, replacing any previous record. The
// record is written to a temporary sibling first and renamed into place.
func SaveState(state State, path string) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmpPath := filepath.Join(
		dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()),
	)
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state: %w", err)
	}

	return nil
}

// decodeState parses a flat JSON record. Records written before the field
// was renamed carry lastSuggestion instead of lastSuggestionTime.
func decodeState(data []byte) (State, error) {
	var raw struct {
		EditCount          *int64 `json:"editCount"`
		LastSuggestionTime *int64 `json:"lastSuggestionTime"`
		LastSuggestion     *int64 `json:"lastSuggestion"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, fmt.Errorf("failed to parse state: %w", err)
	}

	var state State
	if raw.EditCount != nil {
		state.EditCount = *raw.EditCount
	}
	switch {
	case raw.LastSuggestionTime != nil:
		state.LastSuggestionTime = *raw.LastSuggestionTime
	case raw.LastSuggestion != nil:
		state.LastSuggestionTime = *raw.LastSuggestion
	}

	if state.EditCount < 0 {
		return State{}, fmt.Errorf("%w: negative edit count %d",
			ErrInvalidState, state.EditCount)
	}

	return state, nil
}

// FileStore is a StateStore backed by a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// LoadState returns the state stored in the file.
//
// NOTE: This is part of the StateStore interface.
func (f *FileStore) LoadState(_ context.Context) State {
	return LoadState(f.path)
}

// SaveState overwrites the file with state.
//
// NOTE: This is part of the StateStore interface.
func (f *FileStore) SaveState(_ context.Context, state State) error {
	return SaveState(state, f.path)
}

// A compile-time check to ensure FileStore implements StateStore.
var _ StateStore = (*FileStore)(nil)
