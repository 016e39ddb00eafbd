package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ospilot/ospilot/pkg/logger"
)

// Store persists tasks as one JSON file per task. Writes go through a
// temp file and rename so a concurrent reader never observes a partial
// task. This is also the cancellation channel: a second process sets
// CANCELING on disk and the running loop picks it up via Refresh.
type Store struct {
	dir string
	mu  sync.Mutex
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create task store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the task atomically.
func (s *Store) Save(t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(s.dir, "task-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(0644); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, s.path(t.ID)); err != nil {
		return err
	}
	cleanup = false
	return nil
}

// Load reads a task by ID.
func (s *Store) Load(id string) (*Task, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", id, err)
	}
	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", id, err)
	}
	return &t, nil
}

// List returns all stored tasks, newest first.
func (s *Store) List() ([]*Task, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var tasks []*Task
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		t, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			logger.WarnCF("task", "Skipping unreadable task file", map[string]interface{}{
				"file":  entry.Name(),
				"error": err.Error(),
			})
			continue
		}
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Refresh folds an externally requested cancellation into the in-memory
// task. Other fields stay as the running loop knows them; the loop is
// the writer of record for everything except cancellation.
func (s *Store) Refresh(t *Task) error {
	onDisk, err := s.Load(t.ID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if onDisk.Status == StatusCanceling || onDisk.Status == StatusCanceled {
		t.Status = onDisk.Status
	}
	return nil
}

// Cancel requests cancellation of a task. The running loop observes the
// CANCELING status at its next step boundary and stops.
func (s *Store) Cancel(id string) error {
	t, err := s.Load(id)
	if err != nil {
		return err
	}
	if t.Status.Terminal() {
		return fmt.Errorf("task %s is already %s", id, t.Status)
	}
	t.Status = StatusCanceling
	if err := s.Save(t); err != nil {
		return err
	}
	logger.InfoCF("task", "Cancellation requested", map[string]interface{}{
		"task": id,
	})
	return nil
}
