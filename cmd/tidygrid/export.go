package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidygrid/tidygrid/pkg/export"
	"github.com/tidygrid/tidygrid/pkg/log"
	"github.com/tidygrid/tidygrid/pkg/validation"
	cli "github.com/urfave/cli/v3"
)

func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:    "export",
		Aliases: []string{"e"},
		Usage:   "Write cleaned CSV tables and rules.json to a directory",
		Flags: append(tableFlags(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   "./export",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Export even when error-severity issues remain",
			},
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			dataset, err := loadDataSet(command)
			if err != nil {
				return err
			}

			issues := validation.All(dataset)

			bundle, err := export.Build(dataset, issues, command.Bool("force"))
			if err != nil {
				return err
			}

			outDir := command.String("out")
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			files := map[string][]byte{
				"clients.csv": bundle.ClientsCSV,
				"workers.csv": bundle.WorkersCSV,
				"tasks.csv":   bundle.TasksCSV,
				"rules.json":  bundle.RulesJSON,
			}

			for name, content := range files {
				if err := os.WriteFile(filepath.Join(outDir, name), content, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", name, err)
				}
			}

			fmt.Printf("Exported %d clients, %d workers, %d tasks, %d rules to %s\n",
				len(dataset.Clients), len(dataset.Workers), len(dataset.Tasks), len(dataset.Rules), outDir)

			return nil
		},
	}
}
