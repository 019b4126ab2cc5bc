package service

import (
	"bytes"
	"context"
	"image"
	"io"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"promptstore-backend/internal/domains/prompt/model"
)

// maxImageBytes caps how much of a remote image is read for ratio detection.
const maxImageBytes = 10 * 1024 * 1024

// RatioDetector infers a discrete aspect-ratio bucket for an image reference.
// Detection is best-effort: every failure path resolves to the default bucket,
// never to an error, so a broken image can never block a row.
type RatioDetector struct {
	client *http.Client
}

// NewRatioDetector creates a detector with the given per-image fetch timeout.
func NewRatioDetector(timeout time.Duration) *RatioDetector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RatioDetector{
		client: &http.Client{Timeout: timeout},
	}
}

// DetectFromURL loads the image at url and maps its intrinsic dimensions to
// the nearest bucket. Unreachable, oversized or corrupt images yield the
// default bucket.
func (d *RatioDetector) DetectFromURL(ctx context.Context, url string) string {
	if url == "" {
		return model.DefaultRatio
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Debug().Str("url", url).Err(err).Msg("ratio detection: invalid url")
		return model.DefaultRatio
	}

	resp, err := d.client.Do(req)
	if err != nil {
		log.Debug().Str("url", url).Err(err).Msg("ratio detection: fetch failed")
		return model.DefaultRatio
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("ratio detection: bad status")
		return model.DefaultRatio
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		log.Debug().Str("url", url).Err(err).Msg("ratio detection: read failed")
		return model.DefaultRatio
	}

	return d.DetectFromBytes(data)
}

// DetectFromBytes maps an in-memory image (the edit-modal upload path) to a
// bucket. DecodeConfig reads only the header; the full decode via imaging is
// the fallback for files with unusual headers.
func (d *RatioDetector) DetectFromBytes(data []byte) string {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		return model.NearestRatioBucket(cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		log.Debug().Err(err).Msg("ratio detection: not a decodable image")
		return model.DefaultRatio
	}
	bounds := img.Bounds()
	return model.NearestRatioBucket(bounds.Dx(), bounds.Dy())
}
