package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/lox/airquality/internal/api"
	"github.com/lox/airquality/internal/config"
	"github.com/lox/airquality/internal/ingest"
	"github.com/lox/airquality/internal/session"
)

type CLI struct {
	config.Globals
	config.Source

	Serve ServeCmd `cmd:"" default:"withargs" help:"Serve the air quality dashboard."`
	Check CheckCmd `cmd:"" help:"Load the station data, print a summary and exit."`
}

type ServeCmd struct {
	config.Server
}

func (c *ServeCmd) Run(ctx context.Context, cli *CLI, logger *slog.Logger) error {
	sessions := session.NewManager(ingest.NewLoader(logger), cli.Met(), logger)
	if path := cli.Source.Path(); path != "" {
		if _, err := sessions.LoadDefault(path); err != nil {
			// The dashboard can still load a folder from the browser.
			logger.Error("initial load failed", "source", path, "error", err)
		}
	} else {
		logger.Info("no data source configured, waiting for a folder to be loaded")
	}

	srv := api.NewServer(sessions, c.Listen, c.CacheTTL, logger)
	return srv.Run(ctx)
}

type CheckCmd struct{}

func (c *CheckCmd) Run(cli *CLI, logger *slog.Logger) error {
	path := cli.Source.Path()
	if path == "" {
		return errors.New("--data-dir or --archive is required")
	}

	sessions := session.NewManager(ingest.NewLoader(logger), cli.Met(), logger)
	sess, err := sessions.LoadDefault(path)
	if err != nil {
		return err
	}

	fmt.Printf("source:   %s\n", sess.Source)
	fmt.Printf("files:    %d\n", len(sess.Files))
	for _, f := range sess.Files {
		fmt.Printf("  %-40s %s rows\n", f.Name, humanize.Comma(int64(f.Rows)))
	}
	fmt.Printf("rows:     %s raw, %s complete\n", humanize.Comma(int64(sess.RawRows)), humanize.Comma(int64(len(sess.Records))))
	fmt.Printf("stations: %d\n", len(sess.Stations))
	if first, last, ok := sess.YearSpan(); ok {
		fmt.Printf("years:    %d-%d\n", first, last)
	}
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("airquality"),
		kong.Description("Explore hourly air quality and weather data from monitoring stations."),
		kong.UsageOnError(),
	)

	logger, err := config.NewLogger(os.Stderr, cli.LogLevel, cli.LogFormat)
	kctx.FatalIfErrorf(err)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(&cli, logger)
	stop()
	kctx.FatalIfErrorf(err)
}
