// Package reconcile applies the idempotent upsert protocol that keeps catalog
// rows in sync with normalized records, and performs the compensating
// retraction the trailer materializer relies on.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"reelsync/internal/catalog"
	"reelsync/internal/logging"
	"reelsync/internal/store"
)

// Store is the catalog persistence surface the reconciler drives.
type Store interface {
	Begin(ctx context.Context) (store.Batch, error)
	DeleteByKey(ctx context.Context, imdbID string) error
}

// Result reports the outcome of one reconciliation batch.
type Result struct {
	Inserted int
	Updated  int
	Total    int
}

// Reconciler upserts record batches keyed on imdb_id. Retractions are
// serialized through an internal mutex so concurrent materializer workers
// never race a delete against a commit.
type Reconciler struct {
	store  Store
	logger *slog.Logger

	mu sync.Mutex
}

// New constructs a Reconciler.
func New(st Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{
		store:  st,
		logger: logger.With(logging.String(logging.FieldComponent, "reconciler")),
	}
}

// Apply upserts the batch inside a single transaction: existing keys are
// updated in place, absent keys inserted. The batch commits once at the end;
// any mid-batch failure rolls the whole batch back.
func (r *Reconciler) Apply(ctx context.Context, records []catalog.Record) (Result, error) {
	result := Result{Total: len(records)}
	if len(records) == 0 {
		return result, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	batch, err := r.store.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = batch.Rollback(ctx) }()

	for _, record := range records {
		exists, err := batch.ExistsByKey(ctx, record.IMDBID)
		if err != nil {
			return Result{}, fmt.Errorf("reconcile %s: %w", record.IMDBID, err)
		}
		if exists {
			if err := batch.Update(ctx, record); err != nil {
				return Result{}, fmt.Errorf("reconcile %s: %w", record.IMDBID, err)
			}
			result.Updated++
			continue
		}
		if err := batch.Insert(ctx, record); err != nil {
			return Result{}, fmt.Errorf("reconcile %s: %w", record.IMDBID, err)
		}
		result.Inserted++
	}

	if err := batch.Commit(ctx); err != nil {
		return Result{}, err
	}

	r.logger.Info("batch reconciled",
		logging.Int("inserted", result.Inserted),
		logging.Int("updated", result.Updated),
		logging.Int("total", result.Total))
	return result, nil
}

// Retract deletes the row for the given key. Retracting an absent key is a
// no-op. Safe for concurrent use.
func (r *Reconciler) Retract(ctx context.Context, imdbID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.DeleteByKey(ctx, imdbID)
}
