package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/nibzard/taskman/internal/task"
)

const (
	listRule   = 80
	detailRule = 50
)

func (a *app) addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a new task",
		ArgsUsage: "<description>",

		// Flag parsing trims positionals and stops at an empty one.
		SkipFlagParsing: true,
		HideHelpCommand: true,
		Action:          a.runAdd,
	}
}

func (a *app) runAdd(_ context.Context, cmd *cli.Command) error {
	args, help := rawArgs(cmd)
	if help {
		return cli.ShowSubcommandHelp(cmd)
	}
	description, err := descriptionArg(args)
	if err != nil {
		return err
	}
	if err := a.setup(cmd); err != nil {
		return err
	}
	m, err := a.loadStore()
	if err != nil {
		return err
	}

	id := m.Add(description)
	if err := a.saveStore(m); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Task added with ID: %d\n", id)
	fmt.Fprintf(a.stdout, "   Description: %s\n", description)
	return nil
}

func (a *app) listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List all tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "Only show tasks with this status (pending|completed|canceled)",
			},
		},
		Action: a.runList,
	}
}

func (a *app) runList(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return usageErrorf("unexpected arguments: %v", cmd.Args().Slice())
	}
	var filter task.Status
	if s := cmd.String("status"); s != "" {
		status, err := task.ParseStatus(s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		filter = status
	}
	if err := a.setup(cmd); err != nil {
		return err
	}
	m, err := a.loadStore()
	if err != nil {
		return err
	}

	if m.Len() == 0 {
		fmt.Fprintln(a.stdout, "No tasks recorded")
		return nil
	}

	tasks := m.List()
	if filter != "" {
		tasks = m.ListByStatus(filter)
	}

	if len(tasks) == 0 {
		fmt.Fprintf(a.stdout, "No %s tasks\n", strings.ToLower(string(filter)))
	} else {
		fmt.Fprintln(a.stdout, "Task list:")
		fmt.Fprintln(a.stdout, strings.Repeat("-", listRule))
		for _, t := range tasks {
			fmt.Fprintf(a.stdout, "ID: %d | %s | %s\n", t.ID, t.Status, t.Description)
		}
		fmt.Fprintln(a.stdout, strings.Repeat("-", listRule))
	}

	counts := m.Counts()
	fmt.Fprintf(a.stdout, "Summary: %d pending | %d completed | %d canceled\n",
		counts.Pending, counts.Completed, counts.Canceled)
	return nil
}

// statusCommand builds the complete/pending/cancel commands, which differ
// only in the status they set.
func (a *app) statusCommand(name, usage string, status task.Status) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return a.runSetStatus(cmd, status)
		},
	}
}

func (a *app) runSetStatus(cmd *cli.Command, status task.Status) error {
	id, err := idArg(cmd.Args().Slice())
	if err != nil {
		return err
	}
	if err := a.setup(cmd); err != nil {
		return err
	}
	m, err := a.loadStore()
	if err != nil {
		return err
	}

	t, err := m.SetStatus(id, status)
	if err != nil {
		return err
	}
	if err := a.saveStore(m); err != nil {
		return err
	}

	switch status {
	case task.StatusCompleted:
		fmt.Fprintf(a.stdout, "Task %d marked as completed\n", id)
	case task.StatusPending:
		fmt.Fprintf(a.stdout, "Task %d marked as pending\n", id)
	case task.StatusCanceled:
		fmt.Fprintf(a.stdout, "Task %d canceled\n", id)
	}
	fmt.Fprintf(a.stdout, "   Description: %s\n", t.Description)
	return nil
}

func (a *app) removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Remove a task permanently",
		ArgsUsage: "<id>",
		Action:    a.runRemove,
	}
}

func (a *app) runRemove(_ context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd.Args().Slice())
	if err != nil {
		return err
	}
	if err := a.setup(cmd); err != nil {
		return err
	}
	m, err := a.loadStore()
	if err != nil {
		return err
	}

	t, ok := m.Remove(id)
	if !ok {
		return fmt.Errorf("%w: %d", task.ErrNotFound, id)
	}
	if err := a.saveStore(m); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Task %d permanently removed\n", id)
	fmt.Fprintf(a.stdout, "   Description: %s\n", t.Description)
	return nil
}

func (a *app) showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show task details",
		ArgsUsage: "<id>",
		Action:    a.runShow,
	}
}

func (a *app) runShow(_ context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd.Args().Slice())
	if err != nil {
		return err
	}
	if err := a.setup(cmd); err != nil {
		return err
	}
	m, err := a.loadStore()
	if err != nil {
		return err
	}

	t, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", task.ErrNotFound, id)
	}

	fmt.Fprintf(a.stdout, "Task %d details:\n", id)
	fmt.Fprintln(a.stdout, strings.Repeat("-", detailRule))
	fmt.Fprintf(a.stdout, "ID:          %d\n", t.ID)
	fmt.Fprintf(a.stdout, "Description: %s\n", t.Description)
	fmt.Fprintf(a.stdout, "Status:      %s\n", t.Status)
	fmt.Fprintf(a.stdout, "Created:     %s\n", t.CreatedAt)
	fmt.Fprintf(a.stdout, "Updated:     %s\n", t.UpdatedAt)
	fmt.Fprintln(a.stdout, strings.Repeat("-", detailRule))
	return nil
}

func (a *app) updateCommand() *cli.Command {
	return &cli.Command{
		Name:            "update",
		Usage:           "Replace a task description",
		ArgsUsage:       "<id> <description>",
		SkipFlagParsing: true,
		HideHelpCommand: true,
		Action:          a.runUpdate,
	}
}

func (a *app) runUpdate(_ context.Context, cmd *cli.Command) error {
	args, help := rawArgs(cmd)
	if help {
		return cli.ShowSubcommandHelp(cmd)
	}
	if len(args) < 2 {
		return usageErrorf("update needs an id and a description")
	}
	id, err := idArg(args[:1])
	if err != nil {
		return err
	}
	description, err := descriptionArg(args[1:])
	if err != nil {
		return err
	}
	if err := a.setup(cmd); err != nil {
		return err
	}
	m, err := a.loadStore()
	if err != nil {
		return err
	}

	previous, _, err := m.SetDescription(id, description)
	if err != nil {
		return err
	}
	if err := a.saveStore(m); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Task %d updated\n", id)
	fmt.Fprintf(a.stdout, "   Previous description: %s\n", previous)
	fmt.Fprintf(a.stdout, "   New description: %s\n", description)
	return nil
}

// idArg parses the single positional task id.
func idArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, usageErrorf("expected a task id, got %d arguments", len(args))
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, usageErrorf("invalid task id %q", args[0])
	}
	return id, nil
}

// rawArgs returns the positionals of a command that skips flag parsing.
// help is set when the only argument asks for help.
func rawArgs(cmd *cli.Command) (args []string, help bool) {
	args = cmd.Args().Slice()
	if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
		return nil, true
	}
	return args, false
}

// descriptionArg joins the remaining words into a single description.
// The text is kept as given, including an empty string.
func descriptionArg(args []string) (string, error) {
	if len(args) == 0 {
		return "", usageErrorf("missing task description")
	}
	return strings.Join(args, " "), nil
}
