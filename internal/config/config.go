// Package config handles gallery configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Gallery  GalleryConfig  `yaml:"gallery"`
	Camera   CameraConfig   `yaml:"camera"`
	LOD      LODConfig      `yaml:"lod"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOV        float32 `yaml:"fov"` // vertical, degrees

	SunLongitude  float32 `yaml:"sun_longitude"` // degrees around Y from +Z
	SunLatitude   float32 `yaml:"sun_latitude"`  // degrees above the horizon
	Ambient       float32 `yaml:"ambient"`
	ScreenshotDir string  `yaml:"screenshot_dir"`
}

// GalleryConfig holds room dimensions and artwork placement.
type GalleryConfig struct {
	HalfWidth      float32 `yaml:"half_width"`
	Length         float32 `yaml:"length"`
	WallHeight     float32 `yaml:"wall_height"`
	WallClearance  float32 `yaml:"wall_clearance"` // walkable distance kept from side walls
	EndMargin      float32 `yaml:"end_margin"`     // walkable distance kept from end walls
	ArtworkSpacing float32 `yaml:"artwork_spacing"`
	ArtworkHeight  float32 `yaml:"artwork_height"`
	WallInset      float32 `yaml:"wall_inset"`
	ColumnSpacing  float32 `yaml:"column_spacing"`
}

// CameraConfig holds first-person movement settings.
type CameraConfig struct {
	EyeHeight   float32 `yaml:"eye_height"`
	Speed       float32 `yaml:"speed"` // units per second
	Sensitivity float32 `yaml:"sensitivity"`
	StartZ      float32 `yaml:"start_z"`
}

// Band is one row of the distance to tier table.
// MaxDistance 0 marks the unbounded final band.
type Band struct {
	MaxDistance float32 `yaml:"max_distance"`
	Tier        int     `yaml:"tier"`
}

// LODConfig holds texture quality settings.
type LODConfig struct {
	Tiers              []int  `yaml:"tiers"`
	Bands              []Band `yaml:"bands"`
	Policy             string `yaml:"policy"` // keep-active | keep-all
	MaxConcurrentLoads int    `yaml:"max_concurrent_loads"`
	PreloadNext        bool   `yaml:"preload_next"` // fetch the tier above the one shown
}

// ViewerConfig holds detail view settings.
type ViewerConfig struct {
	MaxZoom    float32 `yaml:"max_zoom"`
	ZoomStep   float32 `yaml:"zoom_step"`
	WheelStep  float32 `yaml:"wheel_step"`
	DetailTier int     `yaml:"detail_tier"`
}

// DataConfig holds artwork data locations.
type DataConfig struct {
	Artworks     string        `yaml:"artworks"`   // file path or http(s) URL of the artwork list
	AssetRoot    string        `yaml:"asset_root"` // base directory or URL for relative image paths
	CacheMB      int           `yaml:"cache_mb"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Policy names accepted by LODConfig.Policy.
const (
	PolicyKeepActive = "keep-active"
	PolicyKeepAll    = "keep-all"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
			FOV:    75,

			SunLongitude:  56,
			SunLatitude:   70,
			Ambient:       0.5,
			ScreenshotDir: "screenshots",
		},
		Gallery: GalleryConfig{
			HalfWidth:      5,
			Length:         100,
			WallHeight:     5,
			WallClearance:  0.4,
			EndMargin:      5,
			ArtworkSpacing: 12,
			ArtworkHeight:  2.2,
			WallInset:      0.05,
			ColumnSpacing:  12,
		},
		Camera: CameraConfig{
			EyeHeight:   1.6,
			Speed:       3,
			Sensitivity: 0.002,
			StartZ:      20,
		},
		LOD: LODConfig{
			Tiers: []int{512, 1024, 2048},
			Bands: []Band{
				{MaxDistance: 5, Tier: 2048},
				{MaxDistance: 15, Tier: 1024},
				{Tier: 512},
			},
			Policy:             PolicyKeepActive,
			MaxConcurrentLoads: 4,
			PreloadNext:        true,
		},
		Viewer: ViewerConfig{
			MaxZoom:    3,
			ZoomStep:   0.25,
			WheelStep:  0.25,
			DetailTier: 2048,
		},
		Data: DataConfig{
			Artworks:     "data/obras.json",
			AssetRoot:    ".",
			CacheMB:      64,
			FetchTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the settings the core depends on.
func (c *Config) Validate() error {
	var errs []error

	if len(c.LOD.Tiers) == 0 {
		errs = append(errs, errors.New("lod.tiers must not be empty"))
	}
	tiers := make(map[int]bool, len(c.LOD.Tiers))
	for _, t := range c.LOD.Tiers {
		if t <= 0 {
			errs = append(errs, fmt.Errorf("lod.tiers: invalid tier %d", t))
		}
		tiers[t] = true
	}
	if len(c.LOD.Bands) == 0 {
		errs = append(errs, errors.New("lod.bands must not be empty"))
	}
	for i, b := range c.LOD.Bands {
		if !tiers[b.Tier] {
			errs = append(errs, fmt.Errorf("lod.bands[%d]: tier %d is not a configured tier", i, b.Tier))
		}
		last := i == len(c.LOD.Bands)-1
		if !last && b.MaxDistance <= 0 {
			errs = append(errs, fmt.Errorf("lod.bands[%d]: only the last band may be unbounded", i))
		}
		if i > 0 && !last && b.MaxDistance <= c.LOD.Bands[i-1].MaxDistance {
			errs = append(errs, fmt.Errorf("lod.bands[%d]: max_distance must increase", i))
		}
	}
	if c.LOD.Policy != PolicyKeepActive && c.LOD.Policy != PolicyKeepAll {
		errs = append(errs, fmt.Errorf("lod.policy: unknown policy %q", c.LOD.Policy))
	}
	if c.Viewer.MaxZoom < 1 {
		errs = append(errs, fmt.Errorf("viewer.max_zoom must be >= 1, got %v", c.Viewer.MaxZoom))
	}
	if c.Viewer.ZoomStep <= 0 || c.Viewer.WheelStep <= 0 {
		errs = append(errs, errors.New("viewer zoom steps must be positive"))
	}
	if c.Graphics.Ambient < 0 || c.Graphics.Ambient > 1 {
		errs = append(errs, fmt.Errorf("graphics.ambient must be in [0, 1], got %v", c.Graphics.Ambient))
	}
	if c.Gallery.HalfWidth <= c.Gallery.WallClearance {
		errs = append(errs, errors.New("gallery.half_width must exceed wall_clearance"))
	}
	if c.Gallery.Length/2 <= c.Gallery.EndMargin {
		errs = append(errs, errors.New("gallery.length/2 must exceed end_margin"))
	}

	return errors.Join(errs...)
}
