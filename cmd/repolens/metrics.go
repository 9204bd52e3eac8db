package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/output"
	"github.com/repolens/repolens/pkg/models"
)

func metricsCmd() *cli.Command {
	return &cli.Command{
		Name:      "metrics",
		Aliases:   []string{"m"},
		Usage:     "Compute code metrics for a single file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "type",
				Usage: "Metric to return: lines_of_code, cyclomatic_complexity, maintainability_index, technical_debt (repeatable, default all)",
			},
		},
		Action: runMetricsCmd,
	}
}

func runMetricsCmd(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("metrics requires a file path argument")
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}

	result, err := svc.GetCodeMetrics(context.Background(), c.Args().First(), c.StringSlice("type"))
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	rows := make([][]string, 0, len(result.Metrics))
	for _, m := range result.Metrics {
		value := fmt.Sprintf("%.2f", m.Value)
		if m.Kind == models.MetricLinesOfCode {
			value = fmt.Sprintf("%.0f", m.Value)
		}
		rows = append(rows, []string{string(m.Kind), value})
	}

	table := output.NewTable(
		fmt.Sprintf("Metrics for %s", result.Path),
		[]string{"Metric", "Value"},
		rows,
		nil,
		result,
	)
	return formatter.Output(table)
}
