package trailer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"reelsync/internal/catalog"
	"reelsync/internal/trailer"
)

type fakeResolver struct {
	mu     sync.Mutex
	height int
	err    error
	calls  []string
}

func (r *fakeResolver) Fetch(_ context.Context, watchURL, destPath string) (trailer.StreamInfo, error) {
	r.mu.Lock()
	r.calls = append(r.calls, watchURL)
	r.mu.Unlock()
	if r.err != nil {
		return trailer.StreamInfo{}, r.err
	}
	if err := os.WriteFile(destPath, []byte("raw-video"), 0o644); err != nil {
		return trailer.StreamInfo{}, err
	}
	return trailer.StreamInfo{Height: r.height, Size: 9}, nil
}

type fakeEncoder struct {
	mu      sync.Mutex
	err     error
	heights []int
}

func (e *fakeEncoder) Transcode(_ context.Context, inputPath, outputPath string, sourceHeight int) error {
	e.mu.Lock()
	e.heights = append(e.heights, sourceHeight)
	e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, append([]byte("encoded:"), data...), 0o644)
}

type fakeRetractor struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (r *fakeRetractor) Retract(_ context.Context, imdbID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, imdbID)
	return r.err
}

type fixture struct {
	materializer *trailer.Materializer
	resolver     *fakeResolver
	encoder      *fakeEncoder
	retractor    *fakeRetractor
	trailersDir  string
	tempDir      string
}

func newFixture(t *testing.T, workers int) *fixture {
	t.Helper()
	base := t.TempDir()
	fx := &fixture{
		resolver:    &fakeResolver{height: 1080},
		encoder:     &fakeEncoder{},
		retractor:   &fakeRetractor{},
		trailersDir: filepath.Join(base, "trailers"),
		tempDir:     filepath.Join(base, "temp"),
	}
	fx.materializer = trailer.New(fx.resolver, fx.encoder, fx.retractor, fx.trailersDir, fx.tempDir, workers, nil)
	return fx
}

func trailerRecord(key string) catalog.Record {
	return catalog.Record{
		IMDBID:     key,
		Title:      "Movie " + key,
		TrailerURL: "https://www.youtube.com/watch?v=" + key,
	}
}

func TestRunInstallsFinalAssetAndCleansTemp(t *testing.T) {
	fx := newFixture(t, 1)
	faults := fx.materializer.Run(context.Background(), []catalog.Record{trailerRecord("tt1")})
	if len(faults) != 0 {
		t.Fatalf("unexpected faults: %+v", faults)
	}

	finalPath := filepath.Join(fx.trailersDir, "tt1.mp4")
	data, err := os.ReadFile(finalPath)
	if err != nil {
		t.Fatalf("final asset missing: %v", err)
	}
	if string(data) != "encoded:raw-video" {
		t.Fatalf("final asset is not the transcoded output: %q", data)
	}
	if _, err := os.Stat(fx.tempDir); !os.IsNotExist(err) {
		t.Fatalf("temp dir should be removed after the batch, stat err=%v", err)
	}
	if len(fx.retractor.keys) != 0 {
		t.Fatalf("no retraction expected on success: %v", fx.retractor.keys)
	}
}

func TestRunSkipsAlreadyInstalledAssets(t *testing.T) {
	fx := newFixture(t, 1)
	if err := os.MkdirAll(fx.trailersDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	finalPath := filepath.Join(fx.trailersDir, "tt1.mp4")
	if err := os.WriteFile(finalPath, []byte("existing"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	faults := fx.materializer.Run(context.Background(), []catalog.Record{trailerRecord("tt1")})
	if len(faults) != 0 {
		t.Fatalf("unexpected faults: %+v", faults)
	}
	if len(fx.resolver.calls) != 0 {
		t.Fatalf("resolver must not run for installed assets: %v", fx.resolver.calls)
	}
	data, _ := os.ReadFile(finalPath)
	if string(data) != "existing" {
		t.Fatalf("installed asset must not be rewritten: %q", data)
	}
}

func TestRunResolveFailureRetractsRecord(t *testing.T) {
	fx := newFixture(t, 1)
	fx.resolver.err = errors.New("video unavailable")

	faults := fx.materializer.Run(context.Background(), []catalog.Record{trailerRecord("tt1")})
	if len(faults) != 1 {
		t.Fatalf("expected one fault, got %+v", faults)
	}
	fault := faults[0]
	if fault.Title != "Movie tt1" || fault.URL != "https://www.youtube.com/watch?v=tt1" {
		t.Fatalf("fault misses record identity: %+v", fault)
	}
	if !errors.Is(fault.Err, fx.resolver.err) {
		t.Fatalf("fault should wrap the resolve error: %v", fault.Err)
	}
	if len(fx.retractor.keys) != 1 || fx.retractor.keys[0] != "tt1" {
		t.Fatalf("expected retraction of tt1, got %v", fx.retractor.keys)
	}
	if _, err := os.Stat(filepath.Join(fx.trailersDir, "tt1.mp4")); !os.IsNotExist(err) {
		t.Fatal("no final file may exist after a failed materialization")
	}
}

func TestRunTranscodeFailureRemovesRawAndRetracts(t *testing.T) {
	fx := newFixture(t, 1)
	fx.encoder.err = errors.New("encoder exploded")

	faults := fx.materializer.Run(context.Background(), []catalog.Record{trailerRecord("tt1")})
	if len(faults) != 1 {
		t.Fatalf("expected one fault, got %+v", faults)
	}
	if len(fx.retractor.keys) != 1 {
		t.Fatalf("expected retraction, got %v", fx.retractor.keys)
	}
	if _, err := os.Stat(fx.tempDir); !os.IsNotExist(err) {
		t.Fatalf("temp dir should be gone, stat err=%v", err)
	}
}

func TestRunFailureIsolationAcrossRecords(t *testing.T) {
	fx := newFixture(t, 2)
	fx.resolver.err = nil

	records := []catalog.Record{trailerRecord("tt1"), trailerRecord("tt2"), trailerRecord("tt3")}
	// Fail only tt2 by pre-installing tt1 and failing the resolver once it
	// sees tt2's URL.
	failing := &urlSelectiveResolver{inner: fx.resolver, failURL: "https://www.youtube.com/watch?v=tt2"}
	materializer := trailer.New(failing, fx.encoder, fx.retractor, fx.trailersDir, fx.tempDir, 2, nil)

	faults := materializer.Run(context.Background(), records)
	if len(faults) != 1 {
		t.Fatalf("expected a single fault, got %+v", faults)
	}
	for _, key := range []string{"tt1", "tt3"} {
		if _, err := os.Stat(filepath.Join(fx.trailersDir, key+".mp4")); err != nil {
			t.Fatalf("record %s should have materialized: %v", key, err)
		}
	}
	if len(fx.retractor.keys) != 1 || fx.retractor.keys[0] != "tt2" {
		t.Fatalf("only tt2 should be retracted: %v", fx.retractor.keys)
	}
}

type urlSelectiveResolver struct {
	inner   *fakeResolver
	failURL string
}

func (r *urlSelectiveResolver) Fetch(ctx context.Context, watchURL, destPath string) (trailer.StreamInfo, error) {
	if watchURL == r.failURL {
		return trailer.StreamInfo{}, errors.New("region locked")
	}
	return r.inner.Fetch(ctx, watchURL, destPath)
}

func TestRunRetractionFailureIsReportedInFault(t *testing.T) {
	fx := newFixture(t, 1)
	fx.resolver.err = errors.New("gone")
	fx.retractor.err = errors.New("db down")

	faults := fx.materializer.Run(context.Background(), []catalog.Record{trailerRecord("tt1")})
	if len(faults) != 1 {
		t.Fatalf("expected one fault, got %+v", faults)
	}
	if got := faults[0].Err.Error(); !strings.Contains(got, "retraction also failed") {
		t.Fatalf("fault should mention failed retraction: %q", got)
	}
}

func TestRunPassesSourceHeightToEncoder(t *testing.T) {
	fx := newFixture(t, 1)
	fx.resolver.height = 2160

	if faults := fx.materializer.Run(context.Background(), []catalog.Record{trailerRecord("tt1")}); len(faults) != 0 {
		t.Fatalf("unexpected faults: %+v", faults)
	}
	if len(fx.encoder.heights) != 1 || fx.encoder.heights[0] != 2160 {
		t.Fatalf("encoder did not receive source height: %v", fx.encoder.heights)
	}
}
