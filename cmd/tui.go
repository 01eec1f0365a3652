package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/nibzard/taskman/internal/ui"
)

func (a *app) tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Open a read-only dashboard of the task file",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "refresh",
				Usage: "How often the dashboard rereads the task file",
				Value: ui.DefaultRefreshInterval,
			},
		},
		Action: a.runTUI,
	}
}

func (a *app) runTUI(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return usageErrorf("unexpected arguments: %v", cmd.Args().Slice())
	}
	if err := a.setup(cmd); err != nil {
		return err
	}
	a.logger.Debug("starting dashboard", "path", a.cfg.TasksFile)
	return ui.Run(ctx, a.cfg.TasksFile,
		ui.WithOutput(a.stdout),
		ui.WithRefreshInterval(cmd.Duration("refresh")),
	)
}
