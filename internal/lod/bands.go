// Package lod implements distance-driven texture level of detail.
//
// A Cache holds the resident textures of one asset at a fixed set of
// resolution tiers. Requests for a tier that is already resident resolve at
// once, requests for a tier that is loading join the pending Future, and
// anything else starts exactly one fetch. Fetch and decode run on worker
// goroutines; upload and every map mutation happen on the render goroutine
// when the Scheduler drains its queue, so the cache needs no locking.
package lod

import (
	"fmt"
	"math"
	"sort"
)

// Tier is a texture resolution level, expressed as the longest edge in pixels.
type Tier int

// Band maps every distance up to and including MaxDistance to Tier.
// The final band of a table may use MaxDistance = +Inf (or 0 when built
// from configuration) to cover everything beyond.
type Band struct {
	MaxDistance float32
	Tier        Tier
}

// Bands is an ordered distance to tier table.
//
// The table is data: it may be monotonic (closer is always sharper) or not
// (a very close band falling back to a lower tier). Both are honoured as
// configured.
type Bands []Band

// NewBands validates a table. A trailing band with MaxDistance <= 0 is
// treated as unbounded.
func NewBands(rows ...Band) (Bands, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("lod: empty band table")
	}
	out := make(Bands, len(rows))
	copy(out, rows)
	last := len(out) - 1
	if out[last].MaxDistance <= 0 {
		out[last].MaxDistance = float32(math.Inf(1))
	}
	for i, b := range out {
		if b.Tier <= 0 {
			return nil, fmt.Errorf("lod: band %d has invalid tier %d", i, b.Tier)
		}
		if b.MaxDistance <= 0 {
			return nil, fmt.Errorf("lod: band %d is unbounded but not last", i)
		}
		if i > 0 && b.MaxDistance <= out[i-1].MaxDistance {
			return nil, fmt.Errorf("lod: band %d max distance %v does not increase", i, b.MaxDistance)
		}
	}
	return out, nil
}

// ArtworkBands is the default table: sharper the closer the viewer stands.
func ArtworkBands() Bands {
	return Bands{
		{MaxDistance: 5, Tier: 2048},
		{MaxDistance: 15, Tier: 1024},
		{MaxDistance: float32(math.Inf(1)), Tier: 512},
	}
}

// CloseupBands peaks at mid range and falls back to the low tier both when
// the viewer is pressed against the frame and when far away.
func CloseupBands() Bands {
	return Bands{
		{MaxDistance: 1, Tier: 512},
		{MaxDistance: 6, Tier: 1024},
		{MaxDistance: float32(math.Inf(1)), Tier: 512},
	}
}

// Pick returns the tier for distance d. Distances beyond a bounded final
// band use the final band's tier.
func (b Bands) Pick(d float32) Tier {
	for _, band := range b {
		if d <= band.MaxDistance {
			return band.Tier
		}
	}
	return b[len(b)-1].Tier
}

// Monotonic reports whether tiers never increase as distance grows.
func (b Bands) Monotonic() bool {
	for i := 1; i < len(b); i++ {
		if b[i].Tier > b[i-1].Tier {
			return false
		}
	}
	return true
}

// Tiers returns the distinct tiers referenced by the table, ascending.
func (b Bands) Tiers() []Tier {
	seen := make(map[Tier]bool)
	var out []Tier
	for _, band := range b {
		if !seen[band.Tier] {
			seen[band.Tier] = true
			out = append(out, band.Tier)
		}
	}
	sortTiers(out)
	return out
}

func sortTiers(t []Tier) {
	sort.Slice(t, func(i, j int) bool { return t[i] < t[j] })
}
