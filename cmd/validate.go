package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/urfave/cli/v3"

	"github.com/nibzard/taskman/internal/task"
)

// ErrInvalid is returned by validate when the task file fails a check.
var ErrInvalid = errors.New("task file is invalid")

func (a *app) validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check the task file against the JSON Schema and store invariants",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "schema",
				Usage: "JSON Schema file to use instead of the built-in one",
			},
			&cli.BoolFlag{
				Name:  "no-schema",
				Usage: "Skip JSON Schema validation and only check store invariants",
			},
			&cli.BoolFlag{
				Name:  "print-schema",
				Usage: "Print the built-in JSON Schema and exit",
			},
		},
		Action: a.runValidate,
	}
}

func (a *app) runValidate(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return usageErrorf("unexpected arguments: %v", cmd.Args().Slice())
	}
	if cmd.Bool("print-schema") {
		_, err := a.stdout.Write(task.DefaultSchema())
		return err
	}
	if err := a.setup(cmd); err != nil {
		return err
	}

	schemaPath := a.cfg.SchemaFile
	if cmd.IsSet("schema") {
		schemaPath = cmd.String("schema")
	}
	opts := task.ValidationOptions{
		SchemaPath: schemaPath,
		SkipSchema: cmd.Bool("no-schema"),
	}

	fmt.Fprintf(a.stdout, "Task file: %s\n", a.cfg.TasksFile)
	result, err := task.ValidateFile(a.cfg.TasksFile, opts)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(a.stdout, "  ⚠️  Not found (created by the first add)")
		return nil
	}
	if err != nil {
		return err
	}

	if result.UsedSchema {
		schema := "built-in"
		if schemaPath != "" {
			schema = schemaPath
		}
		fmt.Fprintf(a.stdout, "Schema: %s\n", schema)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(a.stdout, "  ⚠️  %s\n", w)
	}
	if !result.Valid {
		fmt.Fprintln(a.stdout, "  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Fprintf(a.stdout, "     - %v\n", e)
		}
		a.logger.Debug("validation failed", "errors", len(result.Errors))
		return fmt.Errorf("%w: %d problem(s)", ErrInvalid, len(result.Errors))
	}
	fmt.Fprintln(a.stdout, "  ✅ Valid")
	return nil
}
