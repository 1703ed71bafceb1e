package lod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-gallery/internal/assets"
)

// BakeOptions configures offline tier generation.
type BakeOptions struct {
	Tiers  []Tier
	OutDir string
	// Prefix is prepended to the written file names in the returned URLs,
	// so the catalogue can point at wherever OutDir is served from.
	Prefix      string
	JPEGQuality int
	Workers     int
}

// BakeJob is one image to pre-scale.
type BakeJob struct {
	Key string
	URL string
}

// Bake decodes one image and writes a downscaled copy per tier. JPEG sources
// stay JPEG; everything else is written as PNG. It returns tier -> URL.
func Bake(ctx context.Context, src assets.Loader, job BakeJob, opts BakeOptions) (map[int]string, error) {
	data, err := src.Load(ctx, job.URL)
	if err != nil {
		return nil, &TransferError{URL: job.URL, Err: err}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{URL: job.URL, Err: err}
	}

	ext := ".png"
	if format == "jpeg" {
		ext = ".jpg"
	}
	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = 90
	}

	out := make(map[int]string, len(opts.Tiers))
	for _, tier := range opts.Tiers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scaled := Fit(img, int(tier))

		var buf bytes.Buffer
		if ext == ".jpg" {
			err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality})
		} else {
			err = png.Encode(&buf, scaled)
		}
		if err != nil {
			return nil, fmt.Errorf("encoding %s at %d: %w", job.Key, tier, err)
		}

		name := fmt.Sprintf("%s_%d%s", job.Key, tier, ext)
		if err := os.WriteFile(filepath.Join(opts.OutDir, name), buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		out[int(tier)] = path.Join(opts.Prefix, name)
	}
	return out, nil
}

// BakeAll runs Bake for every job on a bounded number of workers and stops
// at the first failure.
func BakeAll(ctx context.Context, src assets.Loader, jobs []BakeJob, opts BakeOptions) (map[string]map[int]string, error) {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", opts.OutDir, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Workers))

	var mu sync.Mutex
	results := make(map[string]map[int]string, len(jobs))
	for _, job := range jobs {
		g.Go(func() error {
			urls, err := Bake(ctx, src, job, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Key, err)
			}
			mu.Lock()
			results[job.Key] = urls
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
