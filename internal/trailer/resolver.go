package trailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kkdai/youtube/v2"
)

// StreamInfo describes the progressive stream a resolver picked.
type StreamInfo struct {
	Height int
	Size   int64
}

// Resolver resolves a watch-page URL to a progressive (muxed audio+video)
// stream and downloads it to destPath. Any resolution failure is
// unrecoverable for the record.
type Resolver interface {
	Fetch(ctx context.Context, watchURL, destPath string) (StreamInfo, error)
}

// YouTubeResolver resolves trailer streams through the YouTube player API.
type YouTubeResolver struct {
	client youtube.Client
}

var _ Resolver = (*YouTubeResolver)(nil)

// NewYouTubeResolver constructs a YouTubeResolver.
func NewYouTubeResolver() *YouTubeResolver {
	return &YouTubeResolver{}
}

// Fetch picks the highest-resolution progressive mp4 stream and streams it to
// destPath.
func (r *YouTubeResolver) Fetch(ctx context.Context, watchURL, destPath string) (StreamInfo, error) {
	video, err := r.client.GetVideoContext(ctx, watchURL)
	if err != nil {
		return StreamInfo{}, fmt.Errorf("resolve %s: %w", watchURL, err)
	}

	// Progressive streams carry both audio and video in one file.
	candidates := video.Formats.Type("video/mp4").WithAudioChannels()
	if len(candidates) == 0 {
		return StreamInfo{}, errors.New("no progressive mp4 stream available")
	}
	best := candidates[0]
	for _, format := range candidates[1:] {
		if format.Height > best.Height {
			best = format
		}
	}

	stream, size, err := r.client.GetStreamContext(ctx, video, &best)
	if err != nil {
		return StreamInfo{}, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return StreamInfo{}, fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, stream); err != nil {
		return StreamInfo{}, fmt.Errorf("download stream: %w", err)
	}
	if err := out.Close(); err != nil {
		return StreamInfo{}, fmt.Errorf("finish download: %w", err)
	}

	return StreamInfo{Height: best.Height, Size: size}, nil
}
