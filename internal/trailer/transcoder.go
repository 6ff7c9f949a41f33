package trailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

var commandContext = exec.CommandContext

// Encoder produces a compressed copy of a downloaded stream.
type Encoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string, sourceHeight int) error
}

// FFmpeg invokes the ffmpeg binary: video re-encoded to x264 at a fixed
// quality preset, audio passed through unchanged. Sources at or above the
// scale threshold are downscaled to 1920x1080.
type FFmpeg struct {
	Binary         string
	Preset         string
	CRF            int
	ScaleThreshold int
	Timeout        time.Duration
}

var _ Encoder = (*FFmpeg)(nil)

// Transcode runs the encoder, bounded by the configured timeout. On timeout
// the child process is killed; the partial output is the caller's to discard.
func (f *FFmpeg) Transcode(ctx context.Context, inputPath, outputPath string, sourceHeight int) error {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	cmd := commandContext(ctx, f.Binary, f.args(inputPath, outputPath, sourceHeight)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("transcode timed out after %s", f.Timeout)
	}
	detail := bytes.TrimSpace(stderr.Bytes())
	if len(detail) > 0 {
		return fmt.Errorf("%s: %w: %s", f.Binary, err, detail)
	}
	return fmt.Errorf("%s: %w", f.Binary, err)
}

func (f *FFmpeg) args(inputPath, outputPath string, sourceHeight int) []string {
	args := []string{"-i", inputPath}
	if f.ScaleThreshold > 0 && sourceHeight >= f.ScaleThreshold {
		args = append(args, "-vf", "scale=1920:1080")
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", f.Preset,
		"-crf", strconv.Itoa(f.CRF),
		"-c:a", "copy",
		"-hide_banner", "-loglevel", "error",
		"-y", outputPath,
	)
	return args
}
