package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ev-station-map/internal/config"
	"ev-station-map/internal/geo"
	"ev-station-map/internal/logging"
	"ev-station-map/internal/tui"
	"ev-station-map/internal/viewer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadViewerConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	// the terminal belongs to the map, so logs go to a file
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.LogFile).Msg("cannot open log file")
	}
	defer logFile.Close()
	logger := logging.SetupWriter(logFile, cfg.LogLevel, "json")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, err := viewer.NewFetcher(cfg.APIURL)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create station fetcher")
	}

	var notifier tui.Notifier
	ctrl := viewer.NewController(ctx, fetcher, viewer.ViewportState{
		Latitude:  cfg.StartLat,
		Longitude: cfg.StartLon,
		Zoom:      cfg.StartZoom,
	}, viewer.Options{
		Debounce: cfg.Debounce,
		MinZoom:  cfg.MinZoom,
		OnChange: notifier.Notify,
		Logger:   logger,
	})
	defer ctrl.Close()

	tiles := geo.NewTileSource(cfg.TileURL, cfg.TileAttribution)
	p := tea.NewProgram(tui.New(ctx, ctrl, tiles, cfg.ExportFile),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	notifier.Attach(p)

	logger.Info().Str("api_url", cfg.APIURL).Msg("viewer started")
	if _, err := p.Run(); err != nil {
		ctrl.ReportError("renderer", err)
		// the screen is gone, so the record goes to stderr as well as the log
		fmt.Fprintln(os.Stderr, ctrl.Diagnostics())
		log.Fatal().Err(err).Str("diagnostics", ctrl.Diagnostics()).Msg("viewer exited with error")
	}
	logger.Info().Msg("viewer stopped")
}
