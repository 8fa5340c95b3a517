package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ev-station-map/docs"
	"ev-station-map/internal/config"
	"ev-station-map/internal/handler"
	"ev-station-map/internal/logging"
	"ev-station-map/internal/observability"
	"ev-station-map/internal/repository"
	"ev-station-map/internal/service"
	"ev-station-map/internal/tomtom"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := logging.Setup(config.LogLevel, config.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, config.TracingEnabled, "ev-station-map", os.Stdout, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot init tracing")
	}
	defer observability.ShutdownWithTimeout(shutdownTracing, logger)

	metrics, err := observability.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot register metrics")
	}

	client, err := tomtom.NewClient(config.TomTomBaseURL, config.TomTomAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create TomTom client")
	}
	logger.Info().Str("base_url", config.TomTomBaseURL).Msg("TomTom client ready")

	// Initialize layers
	var source service.StationSource
	switch config.StationSource {
	case "postgis":
		conn, err := pgxpool.New(ctx, config.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer conn.Close()
		source = repository.NewRepository(conn)
	default:
		source = service.NewTomTomSource(client, metrics, logger.With().Str("component", "search").Logger())
	}
	logger.Info().Str("source", config.StationSource).Msg("station source selected")

	stationService := service.NewStationService(source, logger)
	availabilityService := service.NewAvailabilityService(client)

	stationHandler := handler.NewStationHandler(stationService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)

	r := setupRouter(stationHandler, availabilityHandler, metrics)

	srv := &http.Server{
		Addr:    config.ServerAddress,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", config.ServerAddress).Msg("http listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
		return
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}

func setupRouter(stations *handler.StationHandler, availability *handler.AvailabilityHandler, metrics *observability.Collector) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metrics.GinMiddleware(), handler.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/api/ev-stations", stations.SearchStations)
	r.GET("/api/ev-stations/availability/:id", availability.Availability)

	return r
}
