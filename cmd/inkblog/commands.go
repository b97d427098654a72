package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/natefinch/atomic"
	"github.com/urfave/cli/v3"

	"github.com/eringen/inkblog"
	"github.com/eringen/inkblog/content"
	"github.com/eringen/inkblog/mcpserver"
	"github.com/eringen/inkblog/scaffold"
	"github.com/eringen/inkblog/search"
	"github.com/eringen/inkblog/tui"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the blog over HTTP",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := loadConfig(cmd, os.Stderr)
			if err != nil {
				return err
			}
			app := inkblog.New(cfg, inkblog.WithLogger(logger))
			defer app.Close()
			if err := app.Start(ctx); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func browseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse posts in the terminal",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// The terminal belongs to the UI; logs are dropped.
			cfg, logger, err := loadConfig(cmd, io.Discard)
			if err != nil {
				return err
			}
			store, err := inkblog.OpenStore(cfg.Views)
			if err != nil {
				return fmt.Errorf("init view store: %w", err)
			}
			defer store.Close()

			lib := inkblog.NewLibrary(cfg.Content.Dir, cfg.Search.Threshold, logger)
			m, err := tui.New(lib, store, tui.Options{
				Title:     cfg.Site.Name,
				PageSize:  cfg.Paging.PageSize,
				LoadDelay: cfg.Paging.LoadDelay.Std(),
				Timeout:   cfg.Views.Timeout.Std(),
			})
			if err != nil {
				return fmt.Errorf("load content: %w", err)
			}
			defer m.Close()

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			p := tui.NewProgram(ctx, m)
			if cfg.Content.WatchEnabled() {
				go func() {
					_ = content.Watch(ctx, lib.Dir(), logger, func() {
						if err := lib.Reload(); err == nil {
							p.Send(tui.ContentChangedMsg{})
						}
					})
				}()
			}
			_, err = p.Run()
			return err
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search published posts",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results",
				Value:   search.PageLimit,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return errors.New("usage: inkblog search <query>")
			}
			cfg, logger, err := loadConfig(cmd, os.Stderr)
			if err != nil {
				return err
			}
			ix, err := inkblog.NewLibrary(cfg.Content.Dir, cfg.Search.Threshold, logger).Index()
			if err != nil {
				return err
			}
			results := search.Top(ix.Search(query), int(cmd.Int("limit")))
			out := cmd.Root().Writer
			if len(results) == 0 {
				fmt.Fprintf(out, "no posts match %q\n", query)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCORE\tTITLE\tURL")
			for _, r := range results {
				fmt.Fprintf(tw, "%.2f\t%s\t%s\n", r.Score, r.Item.Title, inkblog.BuildURL(cfg.Site.URL, r.Item.URL))
			}
			return tw.Flush()
		},
	}
}

func feedCommand() *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Export the RSS feed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the feed to this file instead of stdout",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := loadConfig(cmd, os.Stderr)
			if err != nil {
				return err
			}
			set, err := inkblog.NewLibrary(cfg.Content.Dir, cfg.Search.Threshold, logger).Content()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := inkblog.WriteFeed(&buf, cfg.Site, set.Published(), time.Now()); err != nil {
				return err
			}
			path := cmd.String("output")
			if path == "" {
				_, err := cmd.Root().Writer.Write(buf.Bytes())
				return err
			}
			if err := atomic.WriteFile(path, &buf); err != nil {
				return fmt.Errorf("write feed: %w", err)
			}
			logger.Info("feed written", slog.String("path", path), slog.Int("items", len(set.Published())))
			return nil
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a post skeleton in the content directory",
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Tag (repeatable)"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Post description"},
			&cli.BoolFlag{Name: "draft", Usage: "Create the post unpublished"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			title := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(title) == "" {
				return errors.New("usage: inkblog new <title>")
			}
			cfg, _, err := loadConfig(cmd, os.Stderr)
			if err != nil {
				return err
			}
			path, err := scaffold.NewPost(cfg.Content.Dir, scaffold.PostData{
				Title:       title,
				Description: cmd.String("description"),
				Author:      cfg.Site.Author,
				Tags:        cmd.StringSlice("tag"),
				Published:   !cmd.Bool("draft"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "created %s\n", path)
			return nil
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Create a new site directory with a config and a first post",
		ArgsUsage: "<dir>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				return errors.New("usage: inkblog init <dir>")
			}
			out := cmd.Root().Writer
			fmt.Fprintf(out, "Creating new inkblog site: %s\n\n", dir)
			if err := scaffold.NewSite(dir, scaffold.SiteData{}, out); err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Done! Next steps:")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  cd %s\n", dir)
			fmt.Fprintln(out, "  cp .env.example .env")
			fmt.Fprintln(out, "  inkblog serve")
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the posts as MCP tools over stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// stdout carries the protocol; logs go to stderr.
			cfg, logger, err := loadConfig(cmd, os.Stderr)
			if err != nil {
				return err
			}
			lib := inkblog.NewLibrary(cfg.Content.Dir, cfg.Search.Threshold, logger)
			if _, _, err := lib.Snapshot(); err != nil {
				return fmt.Errorf("load content: %w", err)
			}
			if cfg.Content.WatchEnabled() {
				go func() {
					_ = content.Watch(ctx, lib.Dir(), logger, func() { lib.Invalidate() })
				}()
			}
			return mcpserver.New(lib, cfg.Site.URL, version).ServeStdio()
		},
	}
}
