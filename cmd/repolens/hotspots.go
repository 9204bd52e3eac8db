package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/output"
	"github.com/repolens/repolens/internal/progress"
)

func hotspotsCmd() *cli.Command {
	return &cli.Command{
		Name:      "hotspots",
		Usage:     "Rank files by change frequency and code risk",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Minimum normalized change frequency (0.0-1.0, clamped)",
			},
		},
		Action: runHotspotsCmd,
	}
}

func runHotspotsCmd(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}

	repoPath, cleanup, err := resolveRepoPath(c, getRepoPath(c))
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := progress.NewSpinner("Ranking hotspots...")
	result, err := svc.GetHotspots(context.Background(), repoPath, c.Float64("threshold"))
	spinner.Finish()
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	rows := make([][]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		risk := fmt.Sprintf("%.2f", e.RiskScore)
		if formatter.Colored() {
			switch {
			case e.RiskScore >= 0.8:
				risk = color.RedString(risk)
			case e.RiskScore >= 0.5:
				risk = color.YellowString(risk)
			}
		}
		rows = append(rows, []string{
			e.Path,
			strconv.Itoa(e.Commits),
			fmt.Sprintf("%.2f", e.ChangeFrequency),
			risk,
		})
	}

	table := output.NewTable(
		fmt.Sprintf("Hotspots (threshold %.2f)", result.Threshold),
		[]string{"Path", "Commits", "Frequency", "Risk"},
		rows,
		[]string{fmt.Sprintf("Files analyzed: %d", result.FilesAnalyzed), "", "", ""},
		result,
	)
	return formatter.Output(table)
}
