package trailer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"reelsync/internal/catalog"
	"reelsync/internal/fileutil"
	"reelsync/internal/logging"
)

// Retractor removes a catalog row to compensate for a failed materialization.
type Retractor interface {
	Retract(ctx context.Context, imdbID string) error
}

// Fault records one failed materialization for the end-of-run report.
type Fault struct {
	Title string
	URL   string
	Err   error
}

// Materializer runs the download → transcode → install state machine for each
// record in a batch. Failures are isolated per record: the record is retracted
// and the batch continues.
type Materializer struct {
	resolver    Resolver
	encoder     Encoder
	retractor   Retractor
	trailersDir string
	tempDir     string
	workers     int
	logger      *slog.Logger
}

// New constructs a Materializer.
func New(resolver Resolver, encoder Encoder, retractor Retractor, trailersDir, tempDir string, workers int, logger *slog.Logger) *Materializer {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Materializer{
		resolver:    resolver,
		encoder:     encoder,
		retractor:   retractor,
		trailersDir: trailersDir,
		tempDir:     tempDir,
		workers:     workers,
		logger:      logger.With(logging.String(logging.FieldComponent, "materializer")),
	}
}

// FinalPath returns the installed asset location for a record key.
func (m *Materializer) FinalPath(imdbID string) string {
	return filepath.Join(m.trailersDir, imdbID+".mp4")
}

// Run materializes every record's trailer asset using a bounded worker pool
// and returns the faults encountered. The scratch directory is purged and
// removed once the batch is done.
func (m *Materializer) Run(ctx context.Context, records []catalog.Record) []Fault {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(m.trailersDir, 0o755); err != nil {
		m.logger.Error("create trailers dir", logging.Error(err))
		return []Fault{{Err: err}}
	}
	if err := os.MkdirAll(m.tempDir, 0o755); err != nil {
		m.logger.Error("create temp dir", logging.Error(err))
		return []Fault{{Err: err}}
	}

	bar := newProgressBar(len(records))

	var (
		mu     sync.Mutex
		faults []Fault
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(m.workers)
	for _, record := range records {
		record := record
		group.Go(func() error {
			defer func() { _ = bar.Add(1) }()
			if err := m.materialize(groupCtx, record); err != nil {
				m.logger.Warn("materialization failed",
					logging.String(logging.FieldKey, record.IMDBID),
					logging.String("title", record.Title),
					logging.Error(err))
				if retractErr := m.retractor.Retract(groupCtx, record.IMDBID); retractErr != nil {
					err = fmt.Errorf("%w (retraction also failed: %v)", err, retractErr)
				}
				mu.Lock()
				faults = append(faults, Fault{Title: record.Title, URL: record.TrailerURL, Err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = group.Wait()
	_ = bar.Finish()

	if err := fileutil.PurgeDir(m.tempDir); err != nil {
		m.logger.Warn("purge temp dir", logging.Error(err))
	}
	_ = os.Remove(m.tempDir)

	return faults
}

// materialize drives the per-record state machine. Step order matters: the
// raw download is removed as soon as the encoder has run, whatever its exit
// status, and the final path is only ever written by the rename.
func (m *Materializer) materialize(ctx context.Context, record catalog.Record) error {
	if record.TrailerURL == "" {
		return nil
	}

	finalPath := m.FinalPath(record.IMDBID)
	if fileutil.FileExists(finalPath) {
		m.logger.Debug("trailer already installed", logging.String(logging.FieldKey, record.IMDBID))
		return nil
	}

	rawPath := filepath.Join(m.tempDir, record.IMDBID+".source.mp4")
	encodedPath := filepath.Join(m.tempDir, record.IMDBID+".mp4")
	defer m.cleanup(rawPath, encodedPath)

	info, err := m.resolver.Fetch(ctx, record.TrailerURL, rawPath)
	if err != nil {
		return fmt.Errorf("resolve stream: %w", err)
	}
	m.logger.Debug("stream downloaded",
		logging.String(logging.FieldKey, record.IMDBID),
		logging.Int("height", info.Height))

	encodeErr := m.encoder.Transcode(ctx, rawPath, encodedPath, info.Height)
	if err := fileutil.RemoveIfExists(rawPath); err != nil {
		m.logger.Warn("remove raw download", logging.Error(err))
	}
	if encodeErr != nil {
		return fmt.Errorf("transcode: %w", encodeErr)
	}

	if err := os.Rename(encodedPath, finalPath); err != nil {
		return fmt.Errorf("install: %w", err)
	}
	m.logger.Info("trailer installed",
		logging.String(logging.FieldKey, record.IMDBID),
		logging.String("path", finalPath))
	return nil
}

// cleanup purges this record's scratch artifacts. Scoped per key so
// concurrent workers never touch each other's files.
func (m *Materializer) cleanup(paths ...string) {
	for _, path := range paths {
		if err := fileutil.RemoveIfExists(path); err != nil {
			m.logger.Warn("cleanup temp file", logging.String("path", path), logging.Error(err))
		}
	}
}

func newProgressBar(total int) *progressbar.ProgressBar {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("trailers"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
