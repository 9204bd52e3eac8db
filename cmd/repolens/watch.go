package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/service"
	"github.com/repolens/repolens/internal/watch"
	"github.com/repolens/repolens/pkg/analyzer/smells"
	"github.com/repolens/repolens/pkg/models"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Aliases:   []string{"w"},
		Usage:     "Watch a repository and re-analyze files as they change",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: 500 * time.Millisecond,
				Usage: "How long a file must stay quiet before re-analysis",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	root := getRepoPath(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	w, err := watch.New(root, cfg, c.Duration("debounce"), func(path string) {
		reportChangedFile(svc, root, path)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	color.Cyan("Watching %s for changes, Ctrl+C to stop", root)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	fmt.Println()
	return nil
}

// reportChangedFile prints fresh metrics and smell findings for one
// changed file.
func reportChangedFile(svc *service.Service, root, path string) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	color.Yellow("\n%s changed", rel)

	ctx := context.Background()

	result, err := svc.GetCodeMetrics(ctx, path, nil)
	if err != nil {
		color.Red("  metrics: %v", err)
		return
	}
	for _, m := range result.Metrics {
		if m.Kind == models.MetricLinesOfCode {
			fmt.Printf("  %-22s %.0f\n", m.Kind, m.Value)
			continue
		}
		fmt.Printf("  %-22s %.2f\n", m.Kind, m.Value)
	}

	text, err := os.ReadFile(path)
	if err != nil {
		color.Red("  smells: %v", err)
		return
	}
	smellResult, err := smells.New().Analyze(ctx, []models.FileFact{
		{Path: rel, Text: string(text), Size: int64(len(text))},
	})
	if err != nil {
		color.Red("  smells: %v", err)
		return
	}
	if len(smellResult.Findings) == 0 {
		color.Green("  no smells")
		return
	}
	for _, f := range smellResult.Findings {
		fmt.Printf("  %s:%d %s (%s)\n", f.Kind, f.StartLine, f.Description, f.Severity)
	}
}
