package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/resumescan/internal/logger"
)

const fileName = "ui-state.json"

// UIState holds persistent UI preferences that carry across runs.
type UIState struct {
	Picker PickerState `json:"picker"`
}

// PickerState remembers where resumes were last uploaded from.
type PickerState struct {
	LastDir    string `json:"last_dir,omitempty"`
	ShowHidden bool   `json:"show_hidden"`
}

// DefaultUIState returns an empty state: the picker starts in the working
// directory with hidden files filtered.
func DefaultUIState() *UIState {
	return &UIState{}
}

// StartDir returns the directory the file picker should open in. A stored
// directory that no longer exists falls back to the working directory.
func (s *UIState) StartDir() string {
	if s != nil && s.Picker.LastDir != "" {
		if info, err := os.Stat(s.Picker.LastDir); err == nil && info.IsDir() {
			return s.Picker.LastDir
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// Load reads the UI state from <dataDir>/ui-state.json.
// Returns default state if the file doesn't exist or on error.
func Load(dataDir string) *UIState {
	path := filepath.Join(dataDir, fileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultUIState()
	}
	if err != nil {
		logger.Warn("Failed to read UI state file: %v", err)
		return DefaultUIState()
	}

	var state UIState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("Failed to parse UI state JSON: %v", err)
		return DefaultUIState()
	}

	return &state
}

// Save writes the UI state to <dataDir>/ui-state.json, creating the data
// directory if needed.
func Save(dataDir string, state *UIState) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, fileName)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling UI state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing UI state file: %w", err)
	}

	logger.Debug("UI state saved to %s", path)
	return nil
}
