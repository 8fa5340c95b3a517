package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	SourceTomTom  = "tomtom"
	SourcePostGIS = "postgis"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variable.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS" validate:"required"`
	StationSource string `mapstructure:"STATION_SOURCE" validate:"oneof=tomtom postgis"`
	DBSource      string `mapstructure:"DB_SOURCE" validate:"required_if=StationSource postgis"`

	TomTomAPIKey  string `mapstructure:"TOMTOM_API_KEY" validate:"required_if=StationSource tomtom"`
	TomTomBaseURL string `mapstructure:"TOMTOM_BASE_URL" validate:"required,url"`

	LogLevel       string `mapstructure:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
	LogFormat      string `mapstructure:"LOG_FORMAT" validate:"oneof=console json"`
	TracingEnabled bool   `mapstructure:"TRACING_ENABLED"`

	Viewer ViewerConfig `mapstructure:",squash"`
}

// ViewerConfig holds the settings of the terminal map viewer.
type ViewerConfig struct {
	APIURL          string        `mapstructure:"VIEWER_API_URL" validate:"required,url"`
	TileURL         string        `mapstructure:"VIEWER_TILE_URL" validate:"required"`
	TileAttribution string        `mapstructure:"VIEWER_TILE_ATTRIBUTION" validate:"required"`
	Debounce        time.Duration `mapstructure:"VIEWER_DEBOUNCE" validate:"gt=0"`
	MinZoom         float64       `mapstructure:"VIEWER_MIN_ZOOM" validate:"gt=0"`
	StartLat        float64       `mapstructure:"VIEWER_START_LAT"`
	StartLon        float64       `mapstructure:"VIEWER_START_LON"`
	StartZoom       float64       `mapstructure:"VIEWER_START_ZOOM" validate:"gte=0"`
	LogFile         string        `mapstructure:"VIEWER_LOG_FILE" validate:"required"`
	ExportFile      string        `mapstructure:"VIEWER_EXPORT_FILE" validate:"required"`
	LogLevel        string        `mapstructure:"VIEWER_LOG_LEVEL" validate:"oneof=trace debug info warn error"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8002")
	v.SetDefault("STATION_SOURCE", SourceTomTom)
	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("TOMTOM_API_KEY", "")
	v.SetDefault("TOMTOM_BASE_URL", "https://api.tomtom.com")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("TRACING_ENABLED", false)

	v.SetDefault("VIEWER_API_URL", "http://localhost:8002")
	v.SetDefault("VIEWER_TILE_URL", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("VIEWER_TILE_ATTRIBUTION", "© OpenStreetMap contributors")
	v.SetDefault("VIEWER_DEBOUNCE", "500ms")
	v.SetDefault("VIEWER_MIN_ZOOM", 9)
	v.SetDefault("VIEWER_START_LAT", 35.6812)
	v.SetDefault("VIEWER_START_LON", 139.7671)
	v.SetDefault("VIEWER_START_ZOOM", 11)
	v.SetDefault("VIEWER_LOG_FILE", "viewer.log")
	v.SetDefault("VIEWER_EXPORT_FILE", "stations.geojson")
	v.SetDefault("VIEWER_LOG_LEVEL", "info")
}

// LoadConfig reads configuration from app.env in path, overridden by environment variables.
// A missing file is not an error; defaults and the environment still apply.
func LoadConfig(path string) (config Config, err error) {
	config, err = load(path)
	if err != nil {
		return config, err
	}

	if err = validator.New().Struct(config); err != nil {
		return config, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return config, nil
}

// LoadViewerConfig is LoadConfig for the viewer, which does not need backend credentials.
func LoadViewerConfig(path string) (ViewerConfig, error) {
	config, err := load(path)
	if err != nil {
		return ViewerConfig{}, err
	}

	if err := validator.New().Struct(config.Viewer); err != nil {
		return ViewerConfig{}, fmt.Errorf("config: invalid viewer configuration: %w", err)
	}

	return config.Viewer, nil
}

func load(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}

	return config, nil
}
