package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileName is the store file used when no path is configured.
const DefaultFileName = "tasks.json"

// Load reads the store at path. A missing file yields an empty store.
func Load(path string, opts ...Option) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(opts...), nil
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}

	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse task file %s: %w", path, err)
	}
	m.apply(opts)
	return m, nil
}

// Decode parses a serialized store document.
func Decode(data []byte) (*Manager, error) {
	var m Manager
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Tasks == nil {
		m.Tasks = make(map[int]*Task)
	}
	for key, t := range m.Tasks {
		if t == nil {
			return nil, &ValidationError{Path: fmt.Sprintf("tasks.%d", key), Err: errors.New("task is null")}
		}
		if t.ID != key {
			return nil, &ValidationError{
				Path: fmt.Sprintf("tasks.%d.id", key),
				Err:  fmt.Errorf("key %d holds task id %d", key, t.ID),
			}
		}
		if !t.Status.Valid() {
			return nil, &ValidationError{
				Path: fmt.Sprintf("tasks.%d.status", key),
				Err:  fmt.Errorf("invalid status %q, must be one of: Pending, Completed, Canceled", t.Status),
			}
		}
		if t.CreatedAt.IsZero() {
			return nil, &ValidationError{Path: fmt.Sprintf("tasks.%d.created_at", key), Err: errors.New("missing timestamp")}
		}
		if t.UpdatedAt.IsZero() {
			return nil, &ValidationError{Path: fmt.Sprintf("tasks.%d.updated_at", key), Err: errors.New("missing timestamp")}
		}
	}
	if m.NextID < 1 {
		m.NextID = 1
	}
	m.apply(nil)
	return &m, nil
}

// Save writes the whole store to path with 2-space indentation.
// The document is written to a temporary sibling and renamed into place.
func (m *Manager) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}

	// Add trailing newline
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create task file dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace task file: %w", err)
	}

	return nil
}
