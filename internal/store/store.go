// Package store owns transactional access to the persisted movie catalog in
// Postgres. Connection acquisition retries transient failures through the
// shared retry policy; schema management is strictly additive.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
	"reelsync/internal/logging"
	"reelsync/internal/retry"
)

// ErrConnect marks connection-acquisition exhaustion. It is fatal to the run.
var ErrConnect = errors.New("store connect failed")

// Batch is the transactional handle the reconciler drives. All row writes of
// one reconciliation batch happen on a single Batch and become visible only
// at Commit.
type Batch interface {
	ExistsByKey(ctx context.Context, imdbID string) (bool, error)
	Insert(ctx context.Context, record catalog.Record) error
	Update(ctx context.Context, record catalog.Record) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Gateway provides catalog table access over a pgx connection pool.
type Gateway struct {
	pool   *pgxpool.Pool
	table  tableRef
	logger *slog.Logger
}

// Open acquires a connection pool, retrying transient connectivity failures
// with the configured fixed delay before giving up with ErrConnect.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldComponent, "store"))

	policy := retry.Fixed(cfg.Database.ConnectAttempts, time.Duration(cfg.Database.ConnectDelay)*time.Second)
	var pool *pgxpool.Pool
	err := policy.Do(ctx, func(ctx context.Context) error {
		candidate, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return err
		}
		if err := candidate.Ping(ctx); err != nil {
			candidate.Close()
			logger.Warn("database unreachable, will retry",
				logging.String("host", cfg.Database.Host),
				logging.Error(err))
			return err
		}
		pool = candidate
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	logger.Info("database connected",
		logging.String("host", cfg.Database.Host),
		logging.String("database", cfg.Database.Name))
	return &Gateway{
		pool:   pool,
		table:  tableRef{schema: cfg.Database.Schema, table: cfg.Database.Table},
		logger: logger,
	}, nil
}

// Close releases the connection pool.
func (g *Gateway) Close() {
	if g.pool != nil {
		g.pool.Close()
	}
}

// Begin opens a reconciliation batch transaction.
func (g *Gateway) Begin(ctx context.Context) (Batch, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	return &pgxBatch{tx: tx, table: g.table}, nil
}

// DeleteByKey removes the row for the given imdb id. Deleting an absent key
// is a no-op.
func (g *Gateway) DeleteByKey(ctx context.Context, imdbID string) error {
	tag, err := g.pool.Exec(ctx, g.table.deleteSQL(), imdbID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", imdbID, err)
	}
	if tag.RowsAffected() > 0 {
		g.logger.Info("retracted catalog row", logging.String(logging.FieldKey, imdbID))
	}
	return nil
}

type pgxBatch struct {
	tx    pgx.Tx
	table tableRef
}

func (b *pgxBatch) ExistsByKey(ctx context.Context, imdbID string) (bool, error) {
	var exists bool
	err := b.tx.QueryRow(ctx, b.table.existsSQL(), imdbID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", imdbID, err)
	}
	return exists, nil
}

func (b *pgxBatch) Insert(ctx context.Context, record catalog.Record) error {
	if _, err := b.tx.Exec(ctx, b.table.insertSQL(), recordArgs(record)...); err != nil {
		return fmt.Errorf("insert %s: %w", record.IMDBID, err)
	}
	return nil
}

func (b *pgxBatch) Update(ctx context.Context, record catalog.Record) error {
	if _, err := b.tx.Exec(ctx, b.table.updateSQL(), recordArgs(record)...); err != nil {
		return fmt.Errorf("update %s: %w", record.IMDBID, err)
	}
	return nil
}

func (b *pgxBatch) Commit(ctx context.Context) error {
	if err := b.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (b *pgxBatch) Rollback(ctx context.Context) error {
	err := b.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
