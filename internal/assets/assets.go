// Package assets loads gallery data and image bytes from disk or HTTP and
// keeps recently used files in memory.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gallery/internal/logger"
)

// ErrNotFound is returned when a path does not exist in the source.
var ErrNotFound = errors.New("assets: not found")

// Loader is what consumers need from a Source.
type Loader interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

// Options configures a Source.
type Options struct {
	// Root is a directory or an http(s) base URL. Relative paths passed to
	// Load are resolved against it.
	Root string
	// CacheBytes bounds the in-memory cache. Zero disables caching.
	CacheBytes int64
	Timeout    time.Duration
	Client     *http.Client
	Logger     *zap.Logger
}

// Source resolves asset paths against a local directory or a remote base
// URL. It is safe for concurrent use.
type Source struct {
	root    string
	base    *url.URL
	client  *http.Client
	timeout time.Duration
	cache   *Cache
	log     *zap.Logger
}

// NewSource creates a source.
func NewSource(opts Options) (*Source, error) {
	s := &Source{
		root:    opts.Root,
		client:  opts.Client,
		timeout: opts.Timeout,
		log:     logger.Or(opts.Logger, "assets"),
	}
	if s.root == "" {
		s.root = "."
	}
	if isRemote(s.root) {
		u, err := url.Parse(strings.TrimSuffix(s.root, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing asset root %s: %w", s.root, err)
		}
		s.base = u
	}
	if s.client == nil {
		s.client = http.DefaultClient
	}
	if opts.CacheBytes > 0 {
		s.cache = NewCache(opts.CacheBytes)
	}
	return s, nil
}

// Load returns the bytes at path. Absolute URLs are fetched as-is; other
// paths are resolved against the root.
func (s *Source) Load(ctx context.Context, path string) ([]byte, error) {
	key := s.Resolve(path)
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			return data, nil
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		data []byte
		err  error
	)
	if isRemote(key) {
		data, err = s.fetch(ctx, key)
	} else {
		data, err = s.read(ctx, key)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, data)
	}
	s.log.Debug("loaded", zap.String("path", key), zap.Int("bytes", len(data)))
	return data, nil
}

// Resolve returns the location Load would read for path.
func (s *Source) Resolve(path string) string {
	if isRemote(path) {
		return path
	}
	if s.base != nil {
		ref, err := url.Parse(strings.TrimPrefix(filepath.ToSlash(path), "/"))
		if err != nil {
			return s.base.String() + path
		}
		return s.base.ResolveReference(ref).String()
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.root, filepath.FromSlash(path))
}

// CacheStats returns cache hits and misses, or zeros when caching is off.
func (s *Source) CacheStats() (hits, misses int) {
	if s.cache == nil {
		return 0, 0
	}
	return s.cache.Stats()
}

func (s *Source) read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (s *Source) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetching %s: status %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", rawURL, err)
	}
	return data, nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
