package lod

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestBake(t *testing.T) {
	dir := t.TempDir()
	src := mapLoader{
		"images/1.JPG": encodeJPEG(t, 800, 400),
		"images/2.png": encodePNG(t, 300, 600),
	}
	opts := BakeOptions{Tiers: []Tier{128, 256}, OutDir: dir, Prefix: "lods", Workers: 2}

	got, err := BakeAll(context.Background(), src, []BakeJob{
		{Key: "1", URL: "images/1.JPG"},
		{Key: "2", URL: "images/2.png"},
	}, opts)
	if err != nil {
		t.Fatalf("BakeAll() error = %v", err)
	}

	tests := []struct {
		key    string
		tier   int
		url    string
		wantW  int
		wantH  int
		isJPEG bool
	}{
		{"1", 128, "lods/1_128.jpg", 128, 64, true},
		{"1", 256, "lods/1_256.jpg", 256, 128, true},
		{"2", 128, "lods/2_128.png", 64, 128, false},
		{"2", 256, "lods/2_256.png", 128, 256, false},
	}
	for _, tt := range tests {
		if u := got[tt.key][tt.tier]; u != tt.url {
			t.Errorf("url[%s][%d] = %q, want %q", tt.key, tt.tier, u, tt.url)
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, filepath.Base(tt.url)))
		if err != nil {
			t.Errorf("reading %s: %v", tt.url, err)
			continue
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Errorf("decoding %s: %v", tt.url, err)
			continue
		}
		if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
			t.Errorf("%s size = %dx%d, want %dx%d", tt.url, cfg.Width, cfg.Height, tt.wantW, tt.wantH)
		}
		if (format == "jpeg") != tt.isJPEG {
			t.Errorf("%s format = %s", tt.url, format)
		}
	}
}

func TestBakeErrors(t *testing.T) {
	src := mapLoader{"bad.png": []byte("nope")}
	opts := BakeOptions{Tiers: []Tier{64}, OutDir: t.TempDir()}

	_, err := Bake(context.Background(), src, BakeJob{Key: "x", URL: "missing.png"}, opts)
	var te *TransferError
	if !errors.As(err, &te) {
		t.Errorf("missing source error = %v, want TransferError", err)
	}

	_, err = BakeAll(context.Background(), src, []BakeJob{{Key: "y", URL: "bad.png"}}, opts)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Errorf("bad source error = %v, want DecodeError", err)
	}
}
