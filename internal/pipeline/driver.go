package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
	"reelsync/internal/logging"
	"reelsync/internal/reconcile"
	"reelsync/internal/tmdb"
	"reelsync/internal/trailer"
)

// Applier persists a normalized batch and reports what changed.
type Applier interface {
	Apply(ctx context.Context, records []catalog.Record) (reconcile.Result, error)
}

// Trailers materializes trailer assets for a persisted batch.
type Trailers interface {
	Run(ctx context.Context, records []catalog.Record) []trailer.Fault
}

// Summary aggregates the outcome of one run across every list and page.
type Summary struct {
	Pages    int
	Inserted int
	Updated  int
	Total    int
	Skipped  int
	Faults   []trailer.Fault
	Elapsed  time.Duration
}

// Driver owns one end-to-end catalog run. A file lock serializes runs so two
// invocations never race on the same database and trailer directory.
type Driver struct {
	cfg      *config.Config
	api      tmdb.API
	applier  Applier
	trailers Trailers
	logger   *slog.Logger
	lock     *flock.Flock
}

// New constructs a Driver. trailers may be nil when materialization is
// disabled.
func New(cfg *config.Config, api tmdb.API, applier Applier, trailers Trailers, logger *slog.Logger) (*Driver, error) {
	if cfg == nil || api == nil || applier == nil {
		return nil, errors.New("pipeline requires config, api client, and applier")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Driver{
		cfg:      cfg,
		api:      api,
		applier:  applier,
		trailers: trailers,
		logger:   logger.With(logging.String(logging.FieldComponent, "pipeline")),
		lock:     flock.New(cfg.LockPath()),
	}, nil
}

// Run executes the full pipeline and returns its summary. Page-level fetch
// failures are logged and skipped; a reconciliation failure aborts the run
// because later pages would observe a store in an unknown state.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	ok, err := d.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another reelsync run is already in progress")
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("release run lock", logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := d.logger.With(logging.String(logging.FieldRunID, runID))

	start := time.Now()
	logger.Info("run started",
		logging.Int("lists", len(d.cfg.TMDB.Lists)),
		logging.Int("pages_per_list", d.cfg.TMDB.Pages))

	genres, err := d.api.GenreIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch genre index: %w", err)
	}

	normalizer := catalog.NewNormalizer()
	summary := &Summary{}
	seen := make(map[int64]struct{})

	for _, list := range d.cfg.TMDB.Lists {
		for page := 1; page <= d.cfg.TMDB.Pages; page++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pageStart := time.Now()
			pageLogger := logger.With(
				logging.String(logging.FieldList, list),
				logging.Int(logging.FieldPage, page))

			resp, err := d.api.ListMovies(ctx, list, page)
			if err != nil {
				pageLogger.Warn("list page fetch failed", logging.Error(err))
				continue
			}

			records := d.collect(ctx, pageLogger, normalizer, resp.Results, genres, seen, summary)
			result, err := d.applier.Apply(ctx, records)
			if err != nil {
				return nil, fmt.Errorf("reconcile %s page %d: %w", list, page, err)
			}
			summary.Pages++
			summary.Inserted += result.Inserted
			summary.Updated += result.Updated
			summary.Total += result.Total

			if d.trailers != nil && d.cfg.Trailers.Enabled {
				summary.Faults = append(summary.Faults, d.trailers.Run(ctx, records)...)
			}

			pageLogger.Info("page reconciled",
				logging.Int("inserted", result.Inserted),
				logging.Int("updated", result.Updated),
				logging.Int("records", result.Total),
				logging.Duration("elapsed", time.Since(pageStart)))
		}
	}

	summary.Elapsed = time.Since(start)
	logger.Info("run finished",
		logging.Int("inserted", summary.Inserted),
		logging.Int("updated", summary.Updated),
		logging.Int("records", summary.Total),
		logging.Int("skipped", summary.Skipped),
		logging.Int("trailer_faults", len(summary.Faults)),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

// collect fetches and normalizes every movie on one list page. Movies already
// handled earlier in the run are skipped so overlapping listings do not
// refetch or double-count.
func (d *Driver) collect(ctx context.Context, logger *slog.Logger, normalizer *catalog.Normalizer, items []tmdb.ListItem, genres map[int64]string, seen map[int64]struct{}, summary *Summary) []catalog.Record {
	records := make([]catalog.Record, 0, len(items))
	for _, item := range items {
		if _, done := seen[item.ID]; done {
			continue
		}
		seen[item.ID] = struct{}{}

		record, ok := d.fetchRecord(ctx, logger, normalizer, item.ID, genres)
		if !ok {
			summary.Skipped++
			continue
		}
		records = append(records, record)
	}
	return records
}

func (d *Driver) fetchRecord(ctx context.Context, logger *slog.Logger, normalizer *catalog.Normalizer, movieID int64, genres map[int64]string) (catalog.Record, bool) {
	detail, err := d.api.MovieDetails(ctx, movieID)
	if err != nil {
		logger.Warn("movie detail fetch failed", logging.Int64("tmdb_id", movieID), logging.Error(err))
		return catalog.Record{}, false
	}
	images, err := d.api.MovieImages(ctx, movieID)
	if err != nil {
		logger.Warn("movie images fetch failed", logging.Int64("tmdb_id", movieID), logging.Error(err))
		return catalog.Record{}, false
	}
	releases, err := d.api.MovieReleaseDates(ctx, movieID)
	if err != nil {
		logger.Warn("movie release dates fetch failed", logging.Int64("tmdb_id", movieID), logging.Error(err))
		return catalog.Record{}, false
	}

	record, ok := normalizer.Normalize(detail, images, releases, genres)
	if !ok {
		logger.Debug("record rejected as incomplete",
			logging.Int64("tmdb_id", movieID),
			logging.String("title", detail.Title))
		return catalog.Record{}, false
	}
	return record, true
}
