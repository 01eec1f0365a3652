package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/nibzard/taskman/internal/config"
)

func (a *app) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show the effective configuration and where each value came from",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "example",
				Usage: "Print an example config file",
			},
		},
		Action: a.runConfig,
	}
}

func (a *app) runConfig(_ context.Context, cmd *cli.Command) error {
	if cmd.Bool("example") {
		fmt.Fprint(a.stdout, config.ExampleConfig())
		return nil
	}
	if err := a.setup(cmd); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "Config files:")
	if len(a.cfg.Files) == 0 {
		fmt.Fprintln(a.stdout, "  (none)")
	}
	for _, f := range a.cfg.Files {
		fmt.Fprintf(a.stdout, "  %s\n", f)
	}
	fmt.Fprintln(a.stdout)

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
	for _, field := range config.Fields() {
		value, err := a.cfg.Value(field)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", field, value, a.cfg.Source(field))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(a.cfg.Warnings) > 0 {
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, "Warnings:")
		for _, warning := range a.cfg.Warnings {
			fmt.Fprintf(a.stdout, "  ⚠️  %s\n", warning)
		}
	}
	return nil
}
