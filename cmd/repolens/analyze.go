package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/progress"
	"github.com/repolens/repolens/internal/service"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Run the full analysis pipeline over a repository",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "branch",
				Usage: "Branch to analyze (defaults to main)",
			},
			&cli.IntFlag{
				Name:  "depth",
				Usage: "Number of commits to walk (0 uses the configured default)",
			},
			&cli.StringSliceFlag{
				Name:  "facet",
				Usage: "Facet to compute: metrics, smells, contributors, hotspots (repeatable, default all)",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}

	repoPath, cleanup, err := resolveRepoPath(c, getRepoPath(c))
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := progress.NewSpinner("Analyzing repository...")
	snap, err := svc.AnalyzeRepository(context.Background(), service.AnalyzeRequest{
		RepoPath:   repoPath,
		Branch:     c.String("branch"),
		Depth:      c.Int("depth"),
		Facets:     c.StringSlice("facet"),
		OnProgress: spinner.Tick,
	})
	spinner.Finish()
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	rep, err := svc.GenerateReport(snap.ID, string(formatter.Format()), nil)
	if err != nil {
		return err
	}

	if _, err := formatter.Writer().Write([]byte(rep.Content)); err != nil {
		return err
	}
	if snap.Partial {
		formatter.Warning("analysis completed with %d warning(s)", len(snap.Warnings))
	}
	return nil
}
