package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// ErrStateLocked is returned when another run holds the state file.
var ErrStateLocked = errors.New("state file is locked by another run")

type ProcessedFile struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	DestPath  string    `json:"dest_path"`
	Action    string    `json:"action,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type State struct {
	mu        sync.RWMutex
	filePath  string
	lock      *flock.Flock
	Processed map[string]ProcessedFile `json:"processed"`
	LastRun   time.Time                `json:"last_run"`
}

func New(filePath string) *State {
	return &State{
		filePath:  filePath,
		Processed: make(map[string]ProcessedFile),
	}
}

func Load(filePath string) (*State, error) {
	s := New(filePath)

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if s.Processed == nil {
		s.Processed = make(map[string]ProcessedFile)
	}

	return s, nil
}

// LockPath is the advisory lock file guarding filePath.
func LockPath(filePath string) string {
	return filePath + ".lock"
}

// Acquire takes the exclusive lock next to the state file without blocking.
func (s *State) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}

	lock := flock.New(LockPath(s.filePath))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock state file: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrStateLocked, s.filePath)
	}

	s.mu.Lock()
	s.lock = lock
	s.mu.Unlock()
	return nil
}

// Release drops the lock taken by Acquire. It is a no-op when not locked.
func (s *State) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}

func (s *State) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.filePath)
}

func (s *State) IsProcessed(path string, size int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.Processed[path]; ok {
		return p.Size == size
	}
	return false
}

func (s *State) MarkProcessed(path string, size int64, destPath, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Processed[path] = ProcessedFile{
		Path:      path,
		Size:      size,
		DestPath:  destPath,
		Action:    action,
		Timestamp: time.Now(),
	}
	s.LastRun = time.Now()
}
