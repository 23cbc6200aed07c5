// Command reelist collects the video IDs of a public profile and writes a
// JSON report to stdout. Logs go to stderr so the report stays pipeable.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/use-agent/reelist/config"
	"github.com/use-agent/reelist/models"
	"github.com/use-agent/reelist/tiktok"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	username := flag.String("user", cfg.Scrape.Username, "target profile handle, without the leading @")
	maxVideos := flag.Int("max", cfg.Scrape.MaxVideos, "maximum number of unique video IDs to collect")
	fetchMode := flag.String("mode", cfg.Scrape.FetchMode, "pagination fetch path: browser or http")
	delayMin := flag.Duration("delay-min", cfg.Scrape.DelayMin, "minimum pause between page fetches")
	delayMax := flag.Duration("delay-max", cfg.Scrape.DelayMax, "maximum pause between page fetches")
	timeout := flag.Duration("nav-timeout", cfg.Scrape.NavTimeout, "profile navigation timeout")
	screenshot := flag.String("screenshot", cfg.Scrape.ScreenshotPath, "diagnostic screenshot path on failure, empty to disable")
	headful := flag.Bool("headful", false, "run the browser with a visible window")
	logLevel := flag.String("log-level", cfg.Log.Level, "log level: debug, info, warn, error")
	flag.Parse()

	cfg.Scrape.Username = *username
	cfg.Scrape.MaxVideos = *maxVideos
	cfg.Scrape.FetchMode = *fetchMode
	cfg.Scrape.DelayMin = *delayMin
	cfg.Scrape.DelayMax = *delayMax
	cfg.Scrape.NavTimeout = *timeout
	cfg.Scrape.ScreenshotPath = *screenshot
	cfg.Log.Level = *logLevel
	if *headful {
		cfg.Browser.Headless = false
	}

	initLogger(cfg.Log)

	if cfg.Scrape.Username == "" {
		fmt.Fprintln(os.Stderr, "usage: reelist -user <handle> [-max N] [-mode browser|http]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	resp, err := tiktok.NewScraper(cfg).CollectVideos(ctx, cfg.Scrape)
	if err != nil {
		report := failureReport(cfg.Scrape.Username, err, start)
		writeJSON(report)
		os.Exit(1)
	}

	writeJSON(resp)
}

// failureReport shapes an error into the same JSON envelope a successful run
// produces, so consumers only parse one format.
func failureReport(username string, err error, start time.Time) *models.VideoListResponse {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}
	return &models.VideoListResponse{
		Success:  false,
		Username: username,
		Error:    scrapeErr.ToDetail(),
		Timing: models.TimingInfo{
			TotalMs: time.Since(start).Milliseconds(),
		},
	}
}

func writeJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("failed to encode report", "error", err)
	}
}

// initLogger configures slog. The CLI logs to stderr: stdout carries the
// JSON report.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
