package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/output"
	"github.com/repolens/repolens/internal/progress"
)

func contributorsCmd() *cli.Command {
	return &cli.Command{
		Name:      "contributors",
		Usage:     "Aggregate per-author commit statistics",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "since",
				Usage: "Time window such as 30d, 6m, 1y, or all",
				Value: "all",
			},
		},
		Action: runContributorsCmd,
	}
}

func runContributorsCmd(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}

	repoPath, cleanup, err := resolveRepoPath(c, getRepoPath(c))
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := progress.NewSpinner("Reading git history...")
	result, err := svc.AnalyzeContributors(context.Background(), repoPath, c.String("since"))
	spinner.Finish()
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	rows := make([][]string, 0, len(result.Contributors))
	for _, stat := range result.Contributors {
		rows = append(rows, []string{
			stat.Name,
			stat.Email,
			strconv.Itoa(stat.Commits),
			fmt.Sprintf("%.1f%%", stat.OwnershipPercent),
			fmt.Sprintf("+%d/-%d", stat.LinesAdded, stat.LinesRemoved),
			strconv.Itoa(stat.FilesTouched),
		})
	}

	table := output.NewTable(
		fmt.Sprintf("Contributors (%s)", result.TimeRange),
		[]string{"Name", "Email", "Commits", "Ownership", "Churn", "Files"},
		rows,
		[]string{
			fmt.Sprintf("Contributors: %d", result.TotalContributors),
			"",
			fmt.Sprintf("%d", result.TotalCommits),
			"", "", "",
		},
		result,
	)
	return formatter.Output(table)
}
