package lod

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	_ "image/gif"  // register gif decoder
	_ "image/jpeg" // register jpeg decoder
	_ "image/png"  // register png decoder

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register bmp decoder
	_ "golang.org/x/image/webp" // register webp decoder

	"github.com/Faultbox/midgard-gallery/internal/assets"
)

// ImageFetcher loads an artwork image and scales it to a tier.
type ImageFetcher struct {
	Source assets.Loader
	// URL is the full-size image, used for every tier without its own URL.
	URL string
	// TierURLs holds pre-scaled variants keyed by tier.
	TierURLs map[Tier]string
}

// URLFor returns the location fetched for tier.
func (f *ImageFetcher) URLFor(tier Tier) string {
	if u, ok := f.TierURLs[tier]; ok && u != "" {
		return u
	}
	return f.URL
}

// Fetch implements Fetcher.
func (f *ImageFetcher) Fetch(ctx context.Context, tier Tier) (*image.RGBA, error) {
	url := f.URLFor(tier)
	if url == "" {
		return nil, &TransferError{Tier: tier, Err: errors.New("no image url")}
	}

	data, err := f.Source.Load(ctx, url)
	if err != nil {
		return nil, &TransferError{Tier: tier, URL: url, Err: err}
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Tier: tier, URL: url, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &TransferError{Tier: tier, URL: url, Err: err}
	}
	return Fit(src, int(tier)), nil
}

// Fit converts img to RGBA, downscaling so neither side exceeds limit while
// keeping the aspect ratio. Smaller images are never upscaled.
func Fit(img image.Image, limit int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if limit > 0 && (w > limit || h > limit) {
		if w >= h {
			h = max(1, h*limit/w)
			w = limit
		} else {
			w = max(1, w*limit/h)
			h = limit
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Placeholder returns a size×size image filled with c. Used while nothing
// better is resident.
func Placeholder(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}
