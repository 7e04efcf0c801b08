// Package main provides the offline TidyGrid CLI for validating and
// exporting spreadsheet data without a running server.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "tidygrid",
		Usage:                 "Validate and export resource planning spreadsheets",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			ValidateCommand(),
			ExportCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
