package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all report settings, populated from environment variables.
type Config struct {
	HistoricCSV     string
	NearTermCSV     string
	OutputDir       string
	WorkbookEnabled bool

	TopN        int
	DecadeStart int
	CenterLon   float64
	CenterLat   float64

	// Trend subject; nil means pick the location automatically.
	TrendLon *float64
	TrendLat *float64

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka publishing of annotated observations (enabled when brokers are set).
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	topN, err := parsePositiveInt("REPORT_TOP_N", 5)
	if err != nil {
		return nil, err
	}
	decadeStart, err := parseInt("REPORT_DECADE_START", 1980)
	if err != nil {
		return nil, err
	}
	centerLon, err := parseFloat("REPORT_CENTER_LONGITUDE", -110.0098)
	if err != nil {
		return nil, err
	}
	centerLat, err := parseFloat("REPORT_CENTER_LATITUDE", 37.59964)
	if err != nil {
		return nil, err
	}
	trendLon, trendLat, err := parseTrendSite()
	if err != nil {
		return nil, err
	}
	workbook, err := parseBool("REPORT_WORKBOOK_ENABLED", true)
	if err != nil {
		return nil, err
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		HistoricCSV:     sharedcfg.EnvOrDefault("REPORT_HISTORIC_CSV", "data/NABR_historic.csv"),
		NearTermCSV:     sharedcfg.EnvOrDefault("REPORT_NEARTERM_CSV", "data/nearterm_data_2020-2024.csv"),
		OutputDir:       sharedcfg.EnvOrDefault("REPORT_OUTPUT_DIR", "site"),
		WorkbookEnabled: workbook,

		TopN:        topN,
		DecadeStart: decadeStart,
		CenterLon:   centerLon,
		CenterLat:   centerLat,
		TrendLon:    trendLon,
		TrendLat:    trendLat,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:   brokers,
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "nabr-annotated-observations"),
		KafkaEnabled:   len(brokers) > 0,
	}

	if cfg.HistoricCSV == "" {
		return nil, errors.New("REPORT_HISTORIC_CSV is required")
	}
	if cfg.NearTermCSV == "" {
		return nil, errors.New("REPORT_NEARTERM_CSV is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("REPORT_OUTPUT_DIR is required")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseTrendSite() (*float64, *float64, error) {
	lonStr, latStr := os.Getenv("TREND_LONGITUDE"), os.Getenv("TREND_LATITUDE")
	if lonStr == "" && latStr == "" {
		return nil, nil, nil
	}
	if lonStr == "" || latStr == "" {
		return nil, nil, errors.New("TREND_LONGITUDE and TREND_LATITUDE must be set together")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid TREND_LONGITUDE: %w", err)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid TREND_LATITUDE: %w", err)
	}
	return &lon, &lat, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	n, err := parseInt(key, def)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return n, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
