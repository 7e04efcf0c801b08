package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidygrid/tidygrid/pkg/export"
	"github.com/tidygrid/tidygrid/pkg/ingestion"
	"github.com/tidygrid/tidygrid/pkg/log"
	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/tidygrid/tidygrid/pkg/services"
	cli "github.com/urfave/cli/v3"
)

func tableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "clients",
			Usage: "Path to the clients CSV file",
		},
		&cli.StringFlag{
			Name:  "workers",
			Usage: "Path to the workers CSV file",
		},
		&cli.StringFlag{
			Name:  "tasks",
			Usage: "Path to the tasks CSV file",
		},
		&cli.StringFlag{
			Name:  "rules",
			Usage: "Path to a rules.json file",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "warn",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
	}
}

func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Run the validation pass and report every issue",
		Flags: append(tableFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit issues as JSON instead of text",
			},
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			dataset, err := loadDataSet(command)
			if err != nil {
				return err
			}

			validator := services.NewValidation(nil, nil, log.WithModule("cli"), nil)
			result := validator.Evaluate(dataset)

			if command.Bool("json") {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				if err := encoder.Encode(result.Issues); err != nil {
					return err
				}
			} else {
				for _, issue := range result.Issues {
					fmt.Printf("%s\t%s\t%s\t%s\n", issue.Severity, issue.RowID, issue.Field, issue.Message)
				}

				fmt.Printf("%d errors, %d warnings\n", result.ErrorCount, result.WarningCount)
			}

			if result.ErrorCount > 0 {
				return cli.Exit("", 2)
			}

			return nil
		},
	}
}

// loadDataSet builds an in-memory dataset from the table and rule flags.
// Absent tables load empty.
func loadDataSet(command *cli.Command) (*models.DataSet, error) {
	var readers [3]io.Reader

	paths := [3]string{
		command.String("clients"),
		command.String("workers"),
		command.String("tasks"),
	}

	for i, path := range paths {
		if path == "" {
			continue
		}

		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}

		defer func() { _ = file.Close() }()

		readers[i] = file
	}

	dataset, err := ingestion.LoadDataSet(readers[0], readers[1], readers[2])
	if err != nil {
		return nil, err
	}

	if rulesPath := command.String("rules"); rulesPath != "" {
		ruleList, err := loadRules(rulesPath)
		if err != nil {
			return nil, err
		}

		dataset.Rules = ruleList
	}

	return dataset, nil
}

// loadRules reads a rules.json document, accepting either the exported
// config shape or a bare array.
func loadRules(path string) ([]models.Rule, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var config export.RuleConfig
	if err := json.Unmarshal(payload, &config); err == nil && config.Rules != nil {
		return config.Rules, nil
	}

	var ruleList []models.Rule
	if err := json.Unmarshal(payload, &ruleList); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	return ruleList, nil
}
