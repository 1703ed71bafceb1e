package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagArtworks   = flag.String("artworks", "", "Artwork list file or URL")
	flagAssets     = flag.String("assets", "", "Base directory or URL for artwork images")
	flagLODPolicy  = flag.String("lod-policy", "", "Texture eviction policy (keep-active, keep-all)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagArtworks != "" {
		cfg.Data.Artworks = *flagArtworks
	}
	if *flagAssets != "" {
		cfg.Data.AssetRoot = *flagAssets
	}
	if *flagLODPolicy != "" {
		cfg.LOD.Policy = *flagLODPolicy
	}
}
