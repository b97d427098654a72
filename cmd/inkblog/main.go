package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/eringen/inkblog"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "inkblog",
		Usage:   "File-based blog engine: serve, browse and search Markdown posts",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (yaml, toml or jsonc)",
				Sources: cli.EnvVars("INKBLOG_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			browseCommand(),
			searchCommand(),
			feedCommand(),
			newCommand(),
			initCommand(),
			mcpCommand(),
			{
				Name:  "version",
				Usage: "Print the inkblog version",
				Action: func(_ context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "inkblog %s\n", version)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig reads the config named by --config and installs the JSON logger
// at the configured level, writing to w.
func loadConfig(cmd *cli.Command, w io.Writer) (inkblog.Config, *slog.Logger, error) {
	cfg, err := inkblog.LoadConfig(cmd.String("config"))
	if err != nil {
		return inkblog.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
