package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

const (
	historyFileName = "run-history.json"
	// MaxHistoryEntries bounds run-history.json; older runs are dropped.
	MaxHistoryEntries = 100
)

// HistoryManager persists the run history under the user data directory.
type HistoryManager struct {
	dataDir string
}

// NewHistoryManager creates ~/.takeoutrestore if needed.
func NewHistoryManager() (*HistoryManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	dataDir := filepath.Join(homeDir, DataDirName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &HistoryManager{dataDir: dataDir}, nil
}

// Save writes history atomically.
func (m *HistoryManager) Save(history *types.RunHistory) error {
	history.UpdatedAt = time.Now()

	filename := filepath.Join(m.dataDir, historyFileName)
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run history: %w", err)
	}

	tmpFile := filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write run history file: %w", err)
	}
	if err := os.Rename(tmpFile, filename); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename run history file: %w", err)
	}

	return nil
}

// Load returns an empty history when the file does not exist yet.
func (m *HistoryManager) Load() (*types.RunHistory, error) {
	filename := filepath.Join(m.dataDir, historyFileName)
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.RunHistory{
				Entries:   []types.RunHistoryEntry{},
				UpdatedAt: time.Now(),
			}, nil
		}
		return nil, fmt.Errorf("failed to read run history file: %w", err)
	}

	var history types.RunHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run history: %w", err)
	}

	return &history, nil
}

// AddEntry prepends entry and keeps the newest MaxHistoryEntries.
func (m *HistoryManager) AddEntry(entry types.RunHistoryEntry) error {
	history, err := m.Load()
	if err != nil {
		return fmt.Errorf("failed to load run history: %w", err)
	}

	history.Entries = append([]types.RunHistoryEntry{entry}, history.Entries...)
	if len(history.Entries) > MaxHistoryEntries {
		history.Entries = history.Entries[:MaxHistoryEntries]
	}

	if err := m.Save(history); err != nil {
		return fmt.Errorf("failed to save run history: %w", err)
	}

	return nil
}
