package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/output"
	"github.com/repolens/repolens/internal/remote"
	"github.com/repolens/repolens/internal/service"
	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/models"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:    "repolens",
		Usage:   "Repository analysis for metrics, smells, contributors, and hotspots",
		Version: version,
		Description: `Repolens walks a git repository and reports code quality metrics,
structural code smells, contributor statistics, and change hotspots.

Supports: Go, Rust, Python, TypeScript, JavaScript, Java, C, C++, Ruby, PHP`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"REPOLENS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, or markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the analysis snapshot cache",
			},
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			metricsCmd(),
			smellsCmd(),
			contributorsCmd(),
			hotspotsCmd(),
			reportCmd(),
			watchCmd(),
			serveCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// getRepoPath returns the first positional arg, defaulting to ".".
func getRepoPath(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

// resolveRepoPath clones remote references (owner/repo shorthand or git
// URLs) into a temp directory. The returned cleanup must always be
// called; for local paths it is a no-op.
func resolveRepoPath(c *cli.Context, path string) (string, func(), error) {
	src := remote.Parse(path)
	if src == nil {
		return path, func() {}, nil
	}

	var progress io.Writer = io.Discard
	if c.Bool("verbose") {
		progress = os.Stderr
	}
	fmt.Fprintf(os.Stderr, "Cloning %s ...\n", src.URL)
	if err := src.Clone(c.Context, progress); err != nil {
		return "", nil, err
	}
	return src.CloneDir, src.Cleanup, nil
}

// loadConfig honors the --config flag, falling back to discovery.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault(), nil
}

// newService builds the shared service with logging wired to --verbose.
func newService(c *cli.Context) (*service.Service, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if c.Bool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return service.New(cfg, service.WithLogger(log)), nil
}

// newFormatter builds the output formatter from the global flags.
func newFormatter(c *cli.Context) (*output.Formatter, error) {
	format, err := models.ParseReportFormat(c.String("format"))
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format, c.String("output"), true)
}
