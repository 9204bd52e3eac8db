package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/mcpserver"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the analysis
operations as tools LLMs can invoke. Snapshots created by
analyze_repository stay addressable for generate_report as long as the
server is running.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "repolens": {
        "command": "repolens",
        "args": ["serve"]
      }
    }
  }

Available tools:
  - analyze_repository    Full pipeline, returns an analysis_id
  - get_code_metrics      Metrics for a single file
  - detect_smells         Structural code smells
  - analyze_contributors  Per-author commit statistics
  - get_hotspots          Churn plus complexity ranking
  - generate_report       Render a stored snapshot`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the MCP server manifest (server.json) and exit",
			},
		},
		Action: runServeCmd,
	}
}

func runServeCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		raw, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}
	return mcpserver.NewServer(svc, version).Run(context.Background())
}
