// Package catalog loads the list of artworks shown in the gallery.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/midgard-gallery/internal/assets"
	"github.com/Faultbox/midgard-gallery/internal/logger"
)

// ErrEmpty is returned when the artwork list parses but holds no entries.
var ErrEmpty = errors.New("catalog: empty artwork list")

// ID is an artwork identifier. The JSON source may use numbers or strings.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("catalog: id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Entry describes one artwork.
type Entry struct {
	ID          ID             `json:"id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"titulo"`
	Author      string         `json:"autor"`
	Role        string         `json:"rol"`
	Technique   string         `json:"tecnica"`
	Size        string         `json:"tamano"`
	Description string         `json:"descripcion"`
	Image       string         `json:"imagen"`
	LODs        map[int]string `json:"lods,omitempty"` // tier -> pre-scaled image
}

// Key returns the identifier used for picking and lookups.
func (e Entry) Key() string {
	if e.ID != "" {
		return string(e.ID)
	}
	return e.Slug
}

// Catalog is a parsed artwork list with id and slug indexes.
type Catalog struct {
	List   []Entry
	byID   map[string]int
	bySlug map[string]int
	dups   []string
}

// New indexes entries. Entries without id get their position (1-based).
// When an id or slug repeats, lookups resolve to the first entry carrying it
// and the repeat is reported by Duplicates.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		List:   entries,
		byID:   make(map[string]int, len(entries)),
		bySlug: make(map[string]int, len(entries)),
	}
	for i := range c.List {
		e := &c.List[i]
		if e.ID == "" && e.Slug == "" {
			e.ID = ID(strconv.Itoa(i + 1))
		}
		if e.ID != "" {
			c.index(c.byID, "id", string(e.ID), i)
		}
		if e.Slug != "" {
			c.index(c.bySlug, "slug", e.Slug, i)
		}
	}
	return c
}

func (c *Catalog) index(m map[string]int, kind, key string, i int) {
	if first, ok := m[key]; ok {
		c.dups = append(c.dups, fmt.Sprintf("%s %q at %d (first at %d)", kind, key, i+1, first+1))
		return
	}
	m[key] = i
}

// Duplicates describes every repeated id or slug, in list order.
func (c *Catalog) Duplicates() []string { return c.dups }

// Parse decodes a JSON array of entries.
func Parse(data []byte) (*Catalog, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing artwork list: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	return New(entries), nil
}

// Encode writes the list as indented JSON in the format Parse reads.
func (c *Catalog) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c.List); err != nil {
		return fmt.Errorf("encoding artwork list: %w", err)
	}
	return nil
}

// ByID looks up an entry by id.
func (c *Catalog) ByID(id string) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.List[i], true
}

// BySlug looks up an entry by slug.
func (c *Catalog) BySlug(slug string) (Entry, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Entry{}, false
	}
	return c.List[i], true
}

// Lookup finds an entry by id, then by slug.
func (c *Catalog) Lookup(key string) (Entry, bool) {
	if e, ok := c.ByID(key); ok {
		return e, true
	}
	return c.BySlug(key)
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.List) }

// Fallback returns the built-in two-artwork list used when the data file
// cannot be loaded.
func Fallback() *Catalog {
	return New([]Entry{
		{
			ID:          "1",
			Slug:        "obra-1",
			Title:       "Obra 1 — \"Inicio\"",
			Image:       "images/1.JPG",
			Description: "Descripción detallada de la obra 1. Haga clic fuera de la imagen para volver.",
		},
		{
			ID:          "2",
			Slug:        "obra-2",
			Title:       "Obra 2 — \"Centro\"",
			Image:       "images/2.JPG",
			Description: "Descripción detallada de la obra 2. Haga clic fuera de la imagen para volver.",
		},
	})
}

// Loader fetches and caches the catalog. Concurrent loads share one fetch.
type Loader struct {
	src  assets.Loader
	path string
	log  *zap.Logger

	group  singleflight.Group
	mu     sync.Mutex
	cached *Catalog
}

// NewLoader creates a loader reading path from src.
func NewLoader(src assets.Loader, path string, log *zap.Logger) *Loader {
	return &Loader{src: src, path: path, log: logger.Or(log, "catalog")}
}

// Load returns the cached catalog or fetches and parses it. Failures are not
// cached.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	l.mu.Lock()
	if l.cached != nil {
		c := l.cached
		l.mu.Unlock()
		return c, nil
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do(l.path, func() (any, error) {
		l.mu.Lock()
		c := l.cached
		l.mu.Unlock()
		if c != nil {
			return c, nil
		}

		data, err := l.src.Load(ctx, l.path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.path, err)
		}
		c, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.path, err)
		}
		l.mu.Lock()
		l.cached = c
		l.mu.Unlock()
		l.log.Info("artworks loaded", zap.String("path", l.path), zap.Int("count", c.Len()))
		for _, d := range c.Duplicates() {
			l.log.Warn("duplicate artwork key", zap.String("path", l.path), zap.String("key", d))
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

// LoadOrFallback returns the loaded catalog, or the built-in fallback after
// logging why loading failed.
func (l *Loader) LoadOrFallback(ctx context.Context) *Catalog {
	c, err := l.Load(ctx)
	if err != nil {
		l.log.Warn("using fallback artworks", zap.Error(err))
		return Fallback()
	}
	return c
}

// Reset drops the cached catalog so the next Load fetches again.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}
