package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimeLayout is the on-disk timestamp format.
const TimeLayout = "2006-01-02 15:04:05 UTC"

// ErrNotFound is returned when an operation references an id that is not in the store.
var ErrNotFound = errors.New("task not found")

// Status represents a task status.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCanceled  Status = "Canceled"
)

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusCompleted, StatusCanceled}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// UnmarshalJSON rejects statuses outside the closed set.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status := Status(raw)
	if !status.Valid() {
		return fmt.Errorf("invalid status %q, must be one of: Pending, Completed, Canceled", raw)
	}
	*s = status
	return nil
}

// ParseStatus parses a status name case-insensitively.
// "cancelled" is accepted as an alias for Canceled.
func ParseStatus(input string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "pending":
		return StatusPending, nil
	case "completed", "complete", "done":
		return StatusCompleted, nil
	case "canceled", "cancelled", "cancel":
		return StatusCanceled, nil
	}
	return "", fmt.Errorf("unknown status %q (expected pending|completed|canceled)", input)
}

// Timestamp is a UTC time serialized with TimeLayout.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds in UTC so it survives a save/load round trip.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

// String formats the timestamp with TimeLayout.
func (ts Timestamp) String() string {
	return ts.UTC().Format(TimeLayout)
}

// MarshalJSON encodes the timestamp as a TimeLayout string.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

// UnmarshalJSON decodes a TimeLayout string.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	ts.Time = parsed.UTC()
	return nil
}

// Task represents a single to-do record.
type Task struct {
	ID          int       `json:"id"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// NewTask creates a pending task stamped with now.
func NewTask(id int, description string, now time.Time) Task {
	ts := NewTimestamp(now)
	return Task{
		ID:          id,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// SetStatus overwrites the status and refreshes UpdatedAt.
// Any status may move to any other, including itself.
func (t *Task) SetStatus(status Status, now time.Time) {
	t.Status = status
	t.touch(now)
}

// SetDescription overwrites the description and refreshes UpdatedAt.
func (t *Task) SetDescription(description string, now time.Time) {
	t.Description = description
	t.touch(now)
}

// touch refreshes UpdatedAt, never letting it fall before CreatedAt.
func (t *Task) touch(now time.Time) {
	ts := NewTimestamp(now)
	if ts.Before(t.CreatedAt.Time) {
		ts = t.CreatedAt
	}
	t.UpdatedAt = ts
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the time source used to stamp tasks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager is the in-memory task store: tasks keyed by id plus the id counter.
type Manager struct {
	Tasks  map[int]*Task `json:"tasks"`
	NextID int           `json:"next_id"`

	now func() time.Time
}

// New returns an empty store whose first id is 1.
func New(opts ...Option) *Manager {
	m := &Manager{
		Tasks:  make(map[int]*Task),
		NextID: 1,
	}
	m.apply(opts)
	return m
}

func (m *Manager) apply(opts []Option) {
	m.now = time.Now
	for _, opt := range opts {
		opt(m)
	}
}

// Add creates a pending task and returns its id.
func (m *Manager) Add(description string) int {
	if m.NextID < 1 {
		m.NextID = 1
	}
	// A hand-edited file may carry a stale counter; never hand out an id in use.
	for {
		if _, taken := m.Tasks[m.NextID]; !taken {
			break
		}
		m.NextID++
	}

	id := m.NextID
	t := NewTask(id, description, m.now())
	m.Tasks[id] = &t
	m.NextID++
	return id
}

// Get returns a copy of the task with the given id.
func (m *Manager) Get(id int) (Task, bool) {
	t, ok := m.Tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// GetMutable returns the stored task for in-place modification.
func (m *Manager) GetMutable(id int) (*Task, bool) {
	t, ok := m.Tasks[id]
	return t, ok
}

// Remove deletes the task and returns it. NextID is left untouched.
func (m *Manager) Remove(id int) (Task, bool) {
	t, ok := m.Tasks[id]
	if !ok {
		return Task{}, false
	}
	delete(m.Tasks, id)
	return *t, true
}

// SetStatus changes the status of the task with the given id.
func (m *Manager) SetStatus(id int, status Status) (Task, error) {
	t, ok := m.GetMutable(id)
	if !ok {
		return Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	t.SetStatus(status, m.now())
	return *t, nil
}

// SetDescription replaces the description of the task with the given id
// and returns the previous description.
func (m *Manager) SetDescription(id int, description string) (string, Task, error) {
	t, ok := m.GetMutable(id)
	if !ok {
		return "", Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	previous := t.Description
	t.SetDescription(description, m.now())
	return previous, *t, nil
}

// List returns all tasks sorted by ascending id.
func (m *Manager) List() []Task {
	return m.collect(func(*Task) bool { return true })
}

// ListByStatus returns the tasks with the given status sorted by ascending id.
func (m *Manager) ListByStatus(status Status) []Task {
	return m.collect(func(t *Task) bool { return t.Status == status })
}

func (m *Manager) collect(keep func(*Task) bool) []Task {
	tasks := make([]Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		if keep(t) {
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

// Counts summarizes how many tasks are in each status.
type Counts struct {
	Pending   int
	Completed int
	Canceled  int
}

// Total returns the number of counted tasks.
func (c Counts) Total() int {
	return c.Pending + c.Completed + c.Canceled
}

// Counts returns the per-status summary shown under a listing.
func (m *Manager) Counts() Counts {
	return Counts{
		Pending:   len(m.ListByStatus(StatusPending)),
		Completed: len(m.ListByStatus(StatusCompleted)),
		Canceled:  len(m.ListByStatus(StatusCanceled)),
	}
}

// Len returns the number of tasks in the store.
func (m *Manager) Len() int {
	return len(m.Tasks)
}
