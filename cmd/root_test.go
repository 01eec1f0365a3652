package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/taskman/internal/task"
)

type harness struct {
	t    *testing.T
	dir  string
	file string
	now  func() time.Time
}

func newCLI(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{"TASKMAN_FILE", "TASKMAN_SCHEMA", "TASKMAN_LOG_LEVEL", "TASKMAN_LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	current := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	return &harness{
		t:    t,
		dir:  dir,
		file: filepath.Join(dir, "tasks.json"),
		now: func() time.Time {
			now := current
			current = current.Add(time.Minute)
			return now
		},
	}
}

// run executes taskman with --file pointing at the test store.
func (c *harness) run(args ...string) (string, string, error) {
	c.t.Helper()
	return c.runRaw(append([]string{"--file", c.file}, args...)...)
}

// runRaw executes taskman without adding any flags.
func (c *harness) runRaw(args ...string) (string, string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), append([]string{"taskman"}, args...),
		WithStdout(&stdout),
		WithStderr(&stderr),
		WithClock(c.now),
		WithWorkDir(c.dir),
		WithoutUserConfig(),
	)
	return stdout.String(), stderr.String(), err
}

func (c *harness) mustRun(args ...string) string {
	c.t.Helper()
	out, stderr, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("taskman %v: %v\nstderr: %s", args, err, stderr)
	}
	return out
}

func (c *harness) readFile() []byte {
	c.t.Helper()
	data, err := os.ReadFile(c.file)
	if err != nil {
		c.t.Fatalf("reading store: %v", err)
	}
	return data
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", usageErrorf("bad"), ExitUsage},
		{"not found", task.ErrNotFound, ExitFailure},
		{"wrapped not found", errors.Join(errors.New("ctx"), task.ErrNotFound), ExitFailure},
		{"other", errors.New("disk full"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun(t *testing.T) {
	t.Run("no command prints usage", func(t *testing.T) {
		c := newCLI(t)
		out, _, err := c.runRaw()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Main commands:") || !strings.Contains(out, "add <description>") {
			t.Errorf("usage not printed:\n%s", out)
		}
		if _, err := os.Stat(c.file); !os.IsNotExist(err) {
			t.Error("usage created a task file")
		}
	})

	t.Run("help flag", func(t *testing.T) {
		c := newCLI(t)
		out, _, err := c.runRaw("--help")
		if err != nil {
			t.Fatalf("expected no error with --help, got %v", err)
		}
		if !strings.Contains(out, "complete") {
			t.Errorf("help does not list commands:\n%s", out)
		}
	})

	t.Run("version flag", func(t *testing.T) {
		c := newCLI(t)
		out, _, err := c.runRaw("--version")
		if err != nil {
			t.Fatalf("expected no error with --version, got %v", err)
		}
		if !strings.Contains(out, Version) {
			t.Errorf("version not printed: %q", out)
		}
	})

	t.Run("unknown command is a usage error", func(t *testing.T) {
		c := newCLI(t)
		_, _, err := c.run("frobnicate")
		if !errors.Is(err, ErrUsage) {
			t.Fatalf("expected usage error, got %v", err)
		}
		if ExitCode(err) != ExitUsage {
			t.Errorf("exit code: got %d, want %d", ExitCode(err), ExitUsage)
		}
	})

	t.Run("unknown flag is a usage error", func(t *testing.T) {
		c := newCLI(t)
		_, _, err := c.run("list", "--bogus")
		if !errors.Is(err, ErrUsage) {
			t.Fatalf("expected usage error, got %v", err)
		}
	})
}

func TestAdd(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("add", "buy", "milk")
	if !strings.Contains(out, "Task added with ID: 1") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Description: buy milk") {
		t.Errorf("description not echoed:\n%s", out)
	}

	out = c.mustRun("add", "call mom")
	if !strings.Contains(out, "Task added with ID: 2") {
		t.Errorf("second add:\n%s", out)
	}

	m, err := task.Load(c.file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.NextID != 3 || m.Len() != 2 {
		t.Errorf("store: next_id=%d len=%d", m.NextID, m.Len())
	}
	first, _ := m.Get(1)
	if first.Description != "buy milk" || first.Status != task.StatusPending {
		t.Errorf("task 1: %+v", first)
	}
	if first.CreatedAt.String() != "2024-01-01 09:30:00 UTC" {
		t.Errorf("created_at: %s", first.CreatedAt)
	}
}

func TestAddRequiresDescription(t *testing.T) {
	c := newCLI(t)
	_, _, err := c.run("add")
	if !errors.Is(err, ErrUsage) {
		t.Errorf("expected usage error, got %v", err)
	}
	if _, err := os.Stat(c.file); !os.IsNotExist(err) {
		t.Error("failed add created a task file")
	}
}

func TestDescriptionsStoredVerbatim(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"empty", []string{""}, ""},
		{"blank", []string{"  "}, "  "},
		{"padded", []string{"  padded  "}, "  padded  "},
		{"empty word kept", []string{"a", "", "b"}, "a  b"},
		{"looks like a flag", []string{"--status", "x"}, "--status x"},
		{"dashes", []string{"--", "-v"}, "-- -v"},
		{"help word", []string{"help"}, "help"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			out := c.mustRun(append([]string{"add"}, tt.args...)...)
			if !strings.Contains(out, "Task added with ID: 1") {
				t.Errorf("add output:\n%s", out)
			}
			m, err := task.Load(c.file)
			if err != nil {
				t.Fatal(err)
			}
			got, _ := m.Get(1)
			if got.Description != tt.want {
				t.Errorf("add stored %q, want %q", got.Description, tt.want)
			}

			out = c.mustRun(append([]string{"update", "1"}, tt.args...)...)
			if !strings.Contains(out, "Task 1 updated") {
				t.Errorf("update output:\n%s", out)
			}
			m, err = task.Load(c.file)
			if err != nil {
				t.Fatal(err)
			}
			got, _ = m.Get(1)
			if got.Description != tt.want {
				t.Errorf("update stored %q, want %q", got.Description, tt.want)
			}
		})
	}
}

func TestUpdateToEmptyDescription(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "old text")

	out := c.mustRun("update", "1", "")
	if !strings.Contains(out, "Previous description: old text") {
		t.Errorf("update output:\n%s", out)
	}
	m, err := task.Load(c.file)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Get(1); got.Description != "" {
		t.Errorf("description: got %q, want empty", got.Description)
	}

	if _, _, err := c.run("update", "1"); !errors.Is(err, ErrUsage) {
		t.Errorf("update without description: expected usage error, got %v", err)
	}
}

func TestAddHelp(t *testing.T) {
	c := newCLI(t)
	out, _, err := c.run("add", "--help")
	if err != nil {
		t.Fatalf("add --help: %v", err)
	}
	if !strings.Contains(out, "<description>") {
		t.Errorf("help not printed:\n%s", out)
	}
	if _, err := os.Stat(c.file); !os.IsNotExist(err) {
		t.Error("add --help created a task file")
	}
}

func TestList(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		c := newCLI(t)
		out := c.mustRun("list")
		if strings.TrimSpace(out) != "No tasks recorded" {
			t.Errorf("got %q", out)
		}
	})

	t.Run("all tasks with summary", func(t *testing.T) {
		c := newCLI(t)
		c.mustRun("add", "buy milk")
		c.mustRun("add", "call mom")
		c.mustRun("add", "file taxes")
		c.mustRun("complete", "2")
		c.mustRun("cancel", "3")

		out := c.mustRun("list")
		rule := strings.Repeat("-", 80)
		want := strings.Join([]string{
			"Task list:",
			rule,
			"ID: 1 | Pending | buy milk",
			"ID: 2 | Completed | call mom",
			"ID: 3 | Canceled | file taxes",
			rule,
			"Summary: 1 pending | 1 completed | 1 canceled",
			"",
		}, "\n")
		if out != want {
			t.Errorf("list output:\n%s\nwant:\n%s", out, want)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		c := newCLI(t)
		c.mustRun("add", "a")
		c.mustRun("add", "b")
		c.mustRun("complete", "1")

		out := c.mustRun("list", "--status", "completed")
		if !strings.Contains(out, "ID: 1 | Completed | a") || strings.Contains(out, "ID: 2") {
			t.Errorf("filtered list:\n%s", out)
		}

		out = c.mustRun("list", "-s", "canceled")
		if !strings.Contains(out, "No canceled tasks") {
			t.Errorf("empty filter:\n%s", out)
		}
		if !strings.Contains(out, "Summary: 1 pending | 1 completed | 0 canceled") {
			t.Errorf("summary missing:\n%s", out)
		}
	})

	t.Run("bad status is a usage error", func(t *testing.T) {
		c := newCLI(t)
		_, _, err := c.run("list", "--status", "blocked")
		if !errors.Is(err, ErrUsage) {
			t.Errorf("expected usage error, got %v", err)
		}
	})
}

func TestStatusCommands(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "write report")

	tests := []struct {
		command string
		message string
		want    task.Status
	}{
		{"complete", "Task 1 marked as completed", task.StatusCompleted},
		{"pending", "Task 1 marked as pending", task.StatusPending},
		{"cancel", "Task 1 canceled", task.StatusCanceled},
		{"complete", "Task 1 marked as completed", task.StatusCompleted},
	}
	for _, tt := range tests {
		out := c.mustRun(tt.command, "1")
		if !strings.Contains(out, tt.message) || !strings.Contains(out, "Description: write report") {
			t.Errorf("%s output:\n%s", tt.command, out)
		}
		m, err := task.Load(c.file)
		if err != nil {
			t.Fatal(err)
		}
		got, _ := m.Get(1)
		if got.Status != tt.want {
			t.Errorf("after %s: status %q, want %q", tt.command, got.Status, tt.want)
		}
		if !got.UpdatedAt.After(got.CreatedAt.Time) {
			t.Errorf("after %s: updated_at %s not after created_at %s", tt.command, got.UpdatedAt, got.CreatedAt)
		}
	}
}

func TestNotFoundLeavesStoreUntouched(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		c := newCLI(t)
		_, _, err := c.run("complete", "99")
		if !errors.Is(err, task.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if ExitCode(err) != ExitFailure {
			t.Errorf("exit code: got %d, want %d", ExitCode(err), ExitFailure)
		}
		if _, err := os.Stat(c.file); !os.IsNotExist(err) {
			t.Error("not-found path wrote a task file")
		}
	})

	t.Run("existing store", func(t *testing.T) {
		c := newCLI(t)
		c.mustRun("add", "keep me")
		before := c.readFile()

		for _, args := range [][]string{
			{"complete", "99"},
			{"pending", "99"},
			{"cancel", "99"},
			{"remove", "99"},
			{"show", "99"},
			{"update", "99", "new", "text"},
			{"complete", "0"},
		} {
			_, _, err := c.run(args...)
			if !errors.Is(err, task.ErrNotFound) {
				t.Errorf("%v: expected ErrNotFound, got %v", args, err)
			}
		}
		if after := c.readFile(); !bytes.Equal(before, after) {
			t.Errorf("store changed:\nbefore: %s\nafter: %s", before, after)
		}
	})
}

func TestInvalidID(t *testing.T) {
	c := newCLI(t)
	for _, args := range [][]string{
		{"complete", "abc"},
		{"show"},
		{"remove", "1", "2"},
		{"update", "x", "desc"},
		{"update", "1"},
	} {
		_, _, err := c.run(args...)
		if !errors.Is(err, ErrUsage) {
			t.Errorf("%v: expected usage error, got %v", args, err)
		}
	}
}

func TestRemove(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "a")
	c.mustRun("add", "b")

	out := c.mustRun("remove", "2")
	if !strings.Contains(out, "Task 2 permanently removed") || !strings.Contains(out, "Description: b") {
		t.Errorf("remove output:\n%s", out)
	}
	if _, _, err := c.run("show", "2"); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("show after remove: %v", err)
	}

	out = c.mustRun("add", "c")
	if !strings.Contains(out, "Task added with ID: 3") {
		t.Errorf("removed id reused:\n%s", out)
	}
}

func TestShow(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "buy milk")
	c.mustRun("complete", "1")

	out := c.mustRun("show", "1")
	rule := strings.Repeat("-", 50)
	want := strings.Join([]string{
		"Task 1 details:",
		rule,
		"ID:          1",
		"Description: buy milk",
		"Status:      Completed",
		"Created:     2024-01-01 09:30:00 UTC",
		"Updated:     2024-01-01 09:31:00 UTC",
		rule,
		"",
	}, "\n")
	if out != want {
		t.Errorf("show output:\n%s\nwant:\n%s", out, want)
	}
}

func TestUpdate(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "old text")

	out := c.mustRun("update", "1", "new", "text")
	for _, want := range []string{
		"Task 1 updated",
		"Previous description: old text",
		"New description: new text",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	m, err := task.Load(c.file)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := m.Get(1)
	if got.Description != "new text" || got.Status != task.StatusPending {
		t.Errorf("task after update: %+v", got)
	}
}

func TestCorruptStore(t *testing.T) {
	c := newCLI(t)
	if err := os.WriteFile(c.file, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := c.run("add", "x")
	if err == nil || !strings.Contains(err.Error(), "loading task file") {
		t.Fatalf("expected load error, got %v", err)
	}
	if ExitCode(err) != ExitFailure {
		t.Errorf("exit code: got %d", ExitCode(err))
	}
	if got := string(c.readFile()); got != "{not json" {
		t.Errorf("corrupt file overwritten: %q", got)
	}
}

func TestValidate(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		c := newCLI(t)
		out := c.mustRun("validate")
		if !strings.Contains(out, "Not found") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("valid store", func(t *testing.T) {
		c := newCLI(t)
		c.mustRun("add", "a")
		out := c.mustRun("validate")
		if !strings.Contains(out, "Valid") || !strings.Contains(out, "Schema: built-in") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("invalid store", func(t *testing.T) {
		c := newCLI(t)
		doc := `{"tasks":{"1":{"id":1,"description":"x","status":"Done","created_at":"2024-01-01 00:00:00 UTC","updated_at":"2024-01-01 00:00:00 UTC"}},"next_id":2}`
		if err := os.WriteFile(c.file, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
		out, _, err := c.run("validate")
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid, got %v", err)
		}
		if !strings.Contains(out, "tasks[1].status") {
			t.Errorf("error path missing:\n%s", out)
		}
	})

	t.Run("print schema", func(t *testing.T) {
		c := newCLI(t)
		out := c.mustRun("validate", "--print-schema")
		if out != string(task.DefaultSchema()) {
			t.Error("printed schema differs from the built-in one")
		}
	})
}

func TestConfigCommand(t *testing.T) {
	t.Run("shows sources", func(t *testing.T) {
		c := newCLI(t)
		out := c.mustRun("config")
		if !strings.Contains(out, c.file) {
			t.Errorf("tasks file missing:\n%s", out)
		}
		if !strings.Contains(out, "flag") || !strings.Contains(out, "default") {
			t.Errorf("sources missing:\n%s", out)
		}
	})

	t.Run("example", func(t *testing.T) {
		c := newCLI(t)
		out := c.mustRun("config", "--example")
		if !strings.Contains(out, "tasks_file") {
			t.Errorf("example missing keys:\n%s", out)
		}
	})
}

func TestProjectConfigSelectsStore(t *testing.T) {
	c := newCLI(t)
	config := "tasks_file = \"lists/work.json\"\n"
	if err := os.WriteFile(filepath.Join(c.dir, "taskman.toml"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, stderr, err := c.runRaw("add", "from", "config"); err != nil {
		t.Fatalf("add: %v\nstderr: %s", err, stderr)
	}
	if _, err := os.Stat(filepath.Join(c.dir, "lists", "work.json")); err != nil {
		t.Errorf("configured store not written: %v", err)
	}
	if _, err := os.Stat(c.file); !os.IsNotExist(err) {
		t.Error("default store written despite config")
	}
}

func TestDebugLogging(t *testing.T) {
	c := newCLI(t)

	_, stderr, err := c.run("--debug", "add", "x")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "store saved") {
		t.Errorf("debug log missing:\n%s", stderr)
	}

	_, stderr, err = c.run("add", "y")
	if err != nil {
		t.Fatal(err)
	}
	if stderr != "" {
		t.Errorf("unexpected log output at default level:\n%s", stderr)
	}
}

func TestTUIRequiresTerminal(t *testing.T) {
	c := newCLI(t)
	_, _, err := c.run("tui")
	if err == nil || !strings.Contains(err.Error(), "TTY") {
		t.Errorf("expected TTY error, got %v", err)
	}
}
