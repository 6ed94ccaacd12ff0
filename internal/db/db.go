package db

import (
    "context"
    "errors"
    "time"

    "github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
    if databaseURL == "" {
        return nil, errors.New("DATABASE_URL is not set")
    }
    cfg, err := pgxpool.ParseConfig(databaseURL)
    if err != nil {
        return nil, err
    }
    // Quotes never touch the database; connections are used only for the
    // startup snapshot load and rare administrative imports.
    cfg.MaxConns = 3
    cfg.MinConns = 0
    cfg.MaxConnLifetime = 30 * time.Minute
    cfg.MaxConnIdleTime = time.Minute
    cfg.HealthCheckPeriod = time.Minute
    // Safe runtime params
    cfg.ConnConfig.RuntimeParams["application_name"] = "tarifdz-api"
    cfg.ConnConfig.RuntimeParams["search_path"] = "public"
    cfg.ConnConfig.RuntimeParams["client_encoding"] = "UTF8"
    cfg.ConnConfig.RuntimeParams["timezone"] = "UTC"
    // The bulk tariff insert is the longest statement this service runs;
    // give it headroom. These may be ignored depending on server configuration.
    cfg.ConnConfig.RuntimeParams["statement_timeout"] = "15000"                      // 15s
    cfg.ConnConfig.RuntimeParams["idle_in_transaction_session_timeout"] = "10000"    // 10s

    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil {
        return nil, err
    }
    return pool, nil
}