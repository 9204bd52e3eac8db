package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/progress"
	"github.com/repolens/repolens/internal/service"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Analyze a repository and render selected report sections",
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
				Name:  "section",
				Usage: "Section to include: repository_info, code_metrics, code_smells, contributors, hotspots (repeatable, default all)",
			},
		},
		Action: runReportCmd,
	}
}

func runReportCmd(c *cli.Context) error {
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

	rep, err := svc.GenerateReport(snap.ID, string(formatter.Format()), c.StringSlice("section"))
	if err != nil {
		return err
	}

	_, err = formatter.Writer().Write([]byte(rep.Content))
	return err
}
