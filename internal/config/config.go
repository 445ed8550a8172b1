// Package config содержит логику чтения конфигурации сервиса скидочных акций.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса скидочных акций.
type Config struct {
	RunAddress     string `env:"RUN_ADDRESS"`
	InitialRecords int    `env:"INITIAL_RECORDS"`
	ExportPrefix   string `env:"EXPORT_PREFIX"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{InitialRecords: -1}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envInitialRecords := cfg.InitialRecords
	envExportPrefix := cfg.ExportPrefix

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.IntVar(&cfg.InitialRecords, "n", 1000, "number of records generated at startup")
	flag.StringVar(&cfg.ExportPrefix, "p", "discounts", "filename prefix for CSV exports")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envInitialRecords >= 0 {
		cfg.InitialRecords = envInitialRecords
	}
	if envExportPrefix != "" {
		cfg.ExportPrefix = envExportPrefix
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.InitialRecords < 0 {
		cfg.InitialRecords = 0
	}
	if cfg.ExportPrefix == "" {
		cfg.ExportPrefix = "discounts"
	}

	return cfg, nil
}
