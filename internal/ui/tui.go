// Package ui provides an optional terminal dashboard for the task file.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskman/internal/task"
)

// DefaultRefreshInterval is how often the dashboard rereads the task file.
const DefaultRefreshInterval = 2 * time.Second

// Option configures the dashboard.
type Option func(*options)

type options struct {
	output   io.Writer
	interval time.Duration
}

// WithOutput sets where the dashboard is drawn. It must be a terminal.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithRefreshInterval sets the reload period. Non-positive values keep the default.
func WithRefreshInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// Run shows the dashboard for the task file at path until the user quits
// or ctx is canceled.
func Run(ctx context.Context, path string, opts ...Option) error {
	o := &options{
		output:   os.Stdout,
		interval: DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(o)
	}

	if !IsTTY(o.output) {
		return fmt.Errorf("tui requires a TTY")
	}

	m := newModel(path, o.interval)
	program := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(o.output),
	)
	_, err := program.Run()
	return err
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusStyles = map[task.Status]lipgloss.Style{
		task.StatusPending:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		task.StatusCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		task.StatusCanceled:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
	}
	statusMarkers = map[task.Status]string{
		task.StatusPending:   "[ ]",
		task.StatusCompleted: "[x]",
		task.StatusCanceled:  "[-]",
	}
)

type model struct {
	path     string
	interval time.Duration
	load     func(string) (*task.Manager, error)

	store    *task.Manager
	loadErr  error
	filter   task.Status
	showHelp bool
}

type tickMsg time.Time

func newModel(path string, interval time.Duration) *model {
	return &model{
		path:     path,
		interval: interval,
		load: func(p string) (*task.Manager, error) {
			return task.Load(p)
		},
	}
}

func (m *model) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.interval)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		case "1":
			m.filter = task.StatusPending
		case "2":
			m.filter = task.StatusCompleted
		case "3":
			m.filter = task.StatusCanceled
		case "0":
			m.filter = ""
		}
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Task Manager") + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.interval)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading task file:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.interval)
		return b.String()
	}
	if m.store == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.interval)
		return b.String()
	}

	writeOverview(&b, m.store.Counts())
	if m.filter != "" {
		fmt.Fprintf(&b, "Filter: %s (0 to clear)\n\n", m.filter)
	}
	writeTasks(&b, m.visible())
	fmt.Fprintf(&b, "%s\n\n", mutedStyle.Render("File: "+m.path))
	writeFooter(&b, m.interval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh rereads the task file. A missing file shows as an empty store.
func (m *model) refresh() {
	store, err := m.load(m.path)
	if err != nil {
		m.loadErr = err
		m.store = nil
		return
	}
	m.loadErr = nil
	m.store = store
}

// visible returns the tasks that pass the current filter, ascending by id.
func (m *model) visible() []task.Task {
	if m.store == nil {
		return nil
	}
	if m.filter == "" {
		return m.store.List()
	}
	return m.store.ListByStatus(m.filter)
}

func writeOverview(b *strings.Builder, c task.Counts) {
	b.WriteString(headerStyle.Render("Overview") + "\n\n")
	fmt.Fprintf(b, "  %s  %s  %s  Total: %d\n\n",
		statusStyles[task.StatusPending].Render(fmt.Sprintf("Pending: %d", c.Pending)),
		statusStyles[task.StatusCompleted].Render(fmt.Sprintf("Completed: %d", c.Completed)),
		statusStyles[task.StatusCanceled].UnsetStrikethrough().Render(fmt.Sprintf("Canceled: %d", c.Canceled)),
		c.Total(),
	)
}

func writeTasks(b *strings.Builder, tasks []task.Task) {
	b.WriteString(headerStyle.Render("Tasks") + "\n\n")
	if len(tasks) == 0 {
		b.WriteString("  No tasks to show.\n\n")
		return
	}
	for _, t := range tasks {
		b.WriteString(formatTask(t) + "\n")
	}
	b.WriteString("\n")
}

func formatTask(t task.Task) string {
	marker := statusMarkers[t.Status]
	style := statusStyles[t.Status]
	return fmt.Sprintf("  %s %3d  %s", marker, t.ID, style.Render(t.Description))
}

func writeHelp(b *strings.Builder) {
	b.WriteString(headerStyle.Render("Keyboard Shortcuts") + "\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Reload the task file\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Show pending tasks\n")
	b.WriteString("  2            Show completed tasks\n")
	b.WriteString("  3            Show canceled tasks\n")
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Press h for help | q to quit | Refreshing every %s", interval)) + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
