package main

import (
    "context"
    "net/http"
    "os"
    "strings"
    "time"

    "tarifdz/internal/config"
    "tarifdz/internal/db"
    "tarifdz/internal/directory"
    "tarifdz/internal/logger"
    "tarifdz/internal/pricing"
    "tarifdz/internal/server"
    "tarifdz/internal/store"
)

func main() {
    cfg := config.Load()
    logger.Init(cfg.LogLevel)
    defer logger.Sync()

    ctx := context.Background()
    dir := directory.New()
    tbl := pricing.NewTable()

    var importer server.Importer
    switch cfg.PricingSource {
    case config.SourcePostgres:
        importer = loadFromPostgres(ctx, cfg, dir, tbl)
    case config.SourceCSV:
        loadFromCSV(ctx, cfg, dir, tbl)
    default:
        report, err := tbl.Load(ctx, dir, pricing.DefaultSource(dir))
        logger.Fatal(ctx, err)
        logger.Infof(ctx, "loaded built-in pricing: %d tariffs", report.Imported)
    }

    h := server.NewWithStore(dir, tbl, importer)
    srv := &http.Server{
        Addr:              ":" + cfg.Port,
        Handler:           h,
        ReadTimeout:       10 * time.Second,
        ReadHeaderTimeout: 10 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    logger.Infof(ctx, "api listening on :%s (PRICING_SOURCE=%s)", cfg.Port, cfg.PricingSource)
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        logger.Error(ctx, "server error: "+err.Error())
        os.Exit(1)
    }
}

func loadFromCSV(ctx context.Context, cfg config.Config, dir *directory.Directory, tbl *pricing.Table) {
    if len(cfg.PricingCSV) == 0 {
        logger.Error(ctx, "PRICING_CSV not set. Export a comma-separated list of CSV paths.")
        os.Exit(1)
    }
    loadCtx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
    defer cancel()
    sources := make([]pricing.Source, len(cfg.PricingCSV))
    for i, path := range cfg.PricingCSV {
        sources[i] = pricing.CSVSource{Path: path}
    }
    report, err := tbl.Load(loadCtx, dir, sources...)
    logger.Fatal(ctx, err)
    logger.Infof(ctx, "loaded csv pricing: %d imported, %d skipped", report.Imported, report.Skipped)
    for reason, n := range report.Reasons {
        logger.Warnf(ctx, "skipped %d rows: %s", n, reason)
    }
}

// loadFromPostgres seeds the schema with the built-in tariffs on first run,
// then serves whatever the table holds. Imports go through the returned store
// so the database and the in-memory snapshot stay in step.
func loadFromPostgres(ctx context.Context, cfg config.Config, dir *directory.Directory, tbl *pricing.Table) server.Importer {
    if strings.TrimSpace(cfg.DatabaseURL) == "" {
        logger.Error(ctx, "DATABASE_URL not set. Please export DATABASE_URL before running.")
        os.Exit(1)
    }
    connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()
    pool, err := db.NewPool(connCtx, cfg.DatabaseURL)
    logger.Fatal(ctx, err)
    // Verify connectivity proactively
    logger.Fatal(ctx, pool.Ping(connCtx))

    st := store.New(pool)
    logger.Fatal(ctx, st.EnsureSchema(connCtx))
    logger.Fatal(ctx, st.SeedIfEmpty(connCtx, pricing.DefaultEntries(dir)))

    loadCtx, loadCancel := context.WithTimeout(ctx, cfg.LoadTimeout)
    defer loadCancel()
    entries, err := st.ActiveEntries(loadCtx)
    logger.Fatal(ctx, err)
    tbl.Swap(entries)
    logger.Infof(ctx, "loaded postgres pricing: %d tariffs", len(entries))
    return st
}
