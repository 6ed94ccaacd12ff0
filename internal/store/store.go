// Package store persists carrier tariffs in Postgres. The in-memory table in
// internal/pricing stays the read path; this store is the durable snapshot the
// table loads from and the target of administrative bulk imports.
package store

import (
    "context"
    "errors"
    "fmt"
    "time"

    sq "github.com/Masterminds/squirrel"
    "github.com/cenkalti/backoff/v4"
    "github.com/jackc/pgx/v5/pgconn"
    "github.com/jackc/pgx/v5/pgxpool"

    "tarifdz/internal/logger"
    "tarifdz/internal/pricing"
)

const tablePricingEntries = "pricing_entries"

var pricingColumns = []string{
    "carrier", "wilaya_code", "wilaya_name", "commune", "zone",
    "home_price", "office_price",
    "cod_fee_percent", "cod_fee_fixed", "overweight_fee", "overweight_threshold_kg",
    "status",
}

// builder returns a squirrel builder with Postgres placeholders.
func builder() sq.StatementBuilderType {
    return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

type Store struct {
    pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
    return &Store{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS pricing_entries (
    id                      BIGSERIAL PRIMARY KEY,
    carrier                 TEXT        NOT NULL,
    wilaya_code             INT         NOT NULL,
    wilaya_name             TEXT        NOT NULL,
    commune                 TEXT        NOT NULL,
    zone                    INT         NOT NULL,
    home_price              BIGINT      NOT NULL,
    office_price            BIGINT      NOT NULL,
    cod_fee_percent         DOUBLE PRECISION NOT NULL DEFAULT 0,
    cod_fee_fixed           BIGINT      NOT NULL DEFAULT 0,
    overweight_fee          BIGINT      NOT NULL DEFAULT 0,
    overweight_threshold_kg DOUBLE PRECISION NOT NULL DEFAULT 5,
    status                  TEXT        NOT NULL DEFAULT 'active',
    created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS pricing_entries_lookup_idx
    ON pricing_entries (carrier, wilaya_code, commune)
    WHERE status = 'active';
`

// EnsureSchema creates the pricing table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
    if _, err := s.pool.Exec(ctx, schema); err != nil {
        return fmt.Errorf("ensure schema: %w", err)
    }
    return nil
}

// SeedIfEmpty inserts the given entries when the store holds no active rows.
// Used at startup so a fresh database immediately serves the default tariffs.
func (s *Store) SeedIfEmpty(ctx context.Context, entries []pricing.Entry) error {
    var count int
    err := s.pool.QueryRow(ctx,
        `SELECT COUNT(*) FROM pricing_entries WHERE status = 'active'`).Scan(&count)
    if err != nil {
        return fmt.Errorf("count entries: %w", err)
    }
    if count > 0 {
        return nil
    }
    logger.Infof(ctx, "seeding %d default tariff entries", len(entries))
    return s.insert(ctx, s.pool, entries)
}

// ActiveEntries loads the current active snapshot, retrying transient failures
// with a short constant backoff, bounded by ctx.
func (s *Store) ActiveEntries(ctx context.Context) ([]pricing.Entry, error) {
    var entries []pricing.Entry
    op := func() error {
        var err error
        entries, err = s.selectActive(ctx)
        if err != nil {
            if ctx.Err() != nil {
                return backoff.Permanent(err)
            }
            return err
        }
        return nil
    }
    err := backoff.Retry(op, backoff.WithContext(
        backoff.WithMaxRetries(backoff.NewConstantBackOff(200*time.Millisecond), 5),
        ctx,
    ))
    if err != nil {
        if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
            return nil, fmt.Errorf("%w: %v", pricing.ErrLoadTimeout, err)
        }
        return nil, err
    }
    return entries, nil
}

func (s *Store) selectActive(ctx context.Context) ([]pricing.Entry, error) {
    query := builder().Select(pricingColumns...).
        From(tablePricingEntries).
        Where(sq.Eq{"status": string(pricing.StatusActive)}).
        OrderBy("carrier, wilaya_code, commune")

    sql, args, err := query.ToSql()
    if err != nil {
        return nil, err
    }
    rows, err := s.pool.Query(ctx, sql, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []pricing.Entry
    for rows.Next() {
        var e pricing.Entry
        var status string
        err := rows.Scan(
            &e.Carrier, &e.WilayaCode, &e.WilayaName, &e.Commune, &e.Zone,
            &e.Price.Home, &e.Price.Office,
            &e.Price.Supplements.CODFeePercent, &e.Price.Supplements.CODFeeFixed,
            &e.Price.Supplements.OverweightFee, &e.Price.Supplements.OverweightThresholdKg,
            &status,
        )
        if err != nil {
            return nil, err
        }
        e.Status = pricing.Status(status)
        out = append(out, e)
    }
    return out, rows.Err()
}

// ReplaceAll swaps all tariffs of one carrier in a single transaction: old
// rows flip to inactive, the new rows insert as active. Readers of the store
// see either the old or the new generation, never both active at once.
func (s *Store) ReplaceAll(ctx context.Context, carrier string, entries []pricing.Entry) error {
    tx, err := s.pool.Begin(ctx)
    if err != nil {
        return fmt.Errorf("begin: %w", err)
    }
    defer func() { _ = tx.Rollback(ctx) }()

    deactivate := builder().Update(tablePricingEntries).
        Set("status", string(pricing.StatusInactive)).
        Set("updated_at", time.Now().UTC()).
        Where(sq.Eq{"carrier": carrier, "status": string(pricing.StatusActive)})
    sql, args, err := deactivate.ToSql()
    if err != nil {
        return err
    }
    if _, err := tx.Exec(ctx, sql, args...); err != nil {
        return fmt.Errorf("deactivate old entries: %w", err)
    }

    if err := s.insert(ctx, tx, entries); err != nil {
        return fmt.Errorf("insert new entries: %w", err)
    }
    return tx.Commit(ctx)
}

// pgxExecutor is satisfied by both *pgxpool.Pool and pgx.Tx, so inserts work
// standalone (seeding) and inside the replace transaction.
type pgxExecutor interface {
    Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// insert batch-inserts entries through either the pool or a transaction.
func (s *Store) insert(ctx context.Context, ex pgxExecutor, entries []pricing.Entry) error {
    if len(entries) == 0 {
        return nil
    }
    query := builder().Insert(tablePricingEntries).Columns(pricingColumns...)
    for _, e := range entries {
        query = query.Values(
            e.Carrier, e.WilayaCode, e.WilayaName, e.Commune, e.Zone,
            e.Price.Home, e.Price.Office,
            e.Price.Supplements.CODFeePercent, e.Price.Supplements.CODFeeFixed,
            e.Price.Supplements.OverweightFee, e.Price.Supplements.OverweightThresholdKg,
            string(e.Status),
        )
    }
    sql, args, err := query.ToSql()
    if err != nil {
        return err
    }
    if _, err := ex.Exec(ctx, sql, args...); err != nil {
        return err
    }
    return nil
}
