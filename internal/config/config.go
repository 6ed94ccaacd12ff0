package config

import (
    "strings"
    "time"

    "github.com/spf13/viper"
)

// Pricing source kinds selectable via PRICING_SOURCE.
const (
    SourceStatic   = "static"
    SourceCSV      = "csv"
    SourcePostgres = "postgres"
)

type Config struct {
    Port          string
    DatabaseURL   string
    PricingSource string
    PricingCSV    []string
    LoadTimeout   time.Duration
    LogLevel      string
}

// Load reads configuration from the environment with sane defaults. With the
// default static source the process needs no external services at all.
func Load() Config {
    v := viper.New()
    v.AutomaticEnv()
    v.SetDefault("PORT", "8080")
    v.SetDefault("PRICING_SOURCE", SourceStatic)
    v.SetDefault("LOAD_TIMEOUT", "10s")
    v.SetDefault("LOG_LEVEL", "info")

    var csvs []string
    for _, p := range strings.Split(v.GetString("PRICING_CSV"), ",") {
        if p = strings.TrimSpace(p); p != "" {
            csvs = append(csvs, p)
        }
    }

    return Config{
        Port:          v.GetString("PORT"),
        DatabaseURL:   v.GetString("DATABASE_URL"),
        PricingSource: strings.ToLower(v.GetString("PRICING_SOURCE")),
        PricingCSV:    csvs,
        LoadTimeout:   v.GetDuration("LOAD_TIMEOUT"),
        LogLevel:      v.GetString("LOG_LEVEL"),
    }
}
