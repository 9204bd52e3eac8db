package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/output"
	"github.com/repolens/repolens/internal/progress"
)

func smellsCmd() *cli.Command {
	return &cli.Command{
		Name:      "smells",
		Usage:     "Detect structural code smells",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "sensitivity",
				Aliases: []string{"s"},
				Usage:   "Detection sensitivity: low, medium, or high",
			},
		},
		Action: runSmellsCmd,
	}
}

func runSmellsCmd(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}

	repoPath, cleanup, err := resolveRepoPath(c, getRepoPath(c))
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := progress.NewSpinner("Detecting smells...")
	result, err := svc.DetectSmells(context.Background(), repoPath, c.String("sensitivity"))
	spinner.Finish()
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	rows := make([][]string, 0, len(result.Findings))
	for _, f := range result.Findings {
		severity := string(f.Severity)
		if formatter.Colored() {
			severity = output.SeverityColor(severity, severity)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", f.Path, f.StartLine),
			string(f.Kind),
			severity,
			f.Description,
		})
	}

	table := output.NewTable(
		fmt.Sprintf("Code Smells (sensitivity %s)", result.Sensitivity),
		[]string{"Location", "Kind", "Severity", "Description"},
		rows,
		[]string{
			fmt.Sprintf("Files: %d", result.FilesAnalyzed),
			"",
			"",
			fmt.Sprintf("Findings: %d", result.TotalSmells),
		},
		result,
	)
	return formatter.Output(table)
}
