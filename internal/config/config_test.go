package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Camera.EyeHeight != 1.6 {
		t.Errorf("expected eye height 1.6, got %v", cfg.Camera.EyeHeight)
	}
	if got := len(cfg.LOD.Tiers); got != 3 {
		t.Errorf("expected 3 tiers, got %d", got)
	}
	if cfg.LOD.Policy != PolicyKeepActive {
		t.Errorf("expected policy %q, got %q", PolicyKeepActive, cfg.LOD.Policy)
	}
	if !cfg.LOD.PreloadNext {
		t.Error("expected preload_next on by default")
	}
	if cfg.Viewer.MaxZoom != 3 {
		t.Errorf("expected max zoom 3, got %v", cfg.Viewer.MaxZoom)
	}
	if cfg.Viewer.ZoomStep != 0.25 {
		t.Errorf("expected zoom step 0.25, got %v", cfg.Viewer.ZoomStep)
	}
	if cfg.Data.FetchTimeout != 15*time.Second {
		t.Errorf("expected fetch timeout 15s, got %v", cfg.Data.FetchTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true

camera:
  speed: 5

lod:
  tiers: [512, 1024]
  bands:
    - max_distance: 1
      tier: 512
    - max_distance: 6
      tier: 1024
    - tier: 512
  policy: keep-all

viewer:
  max_zoom: 6

data:
  artworks: "https://example.com/data/obras.json"
  fetch_timeout: 5s

logging:
  level: "debug"
  log_file: "gallery.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || !cfg.Graphics.Fullscreen {
		t.Errorf("graphics not loaded: %+v", cfg.Graphics)
	}
	if cfg.Graphics.FOV != 75 {
		t.Errorf("expected untouched fov 75, got %v", cfg.Graphics.FOV)
	}
	if cfg.Camera.Speed != 5 {
		t.Errorf("expected speed 5, got %v", cfg.Camera.Speed)
	}
	if len(cfg.LOD.Tiers) != 2 {
		t.Errorf("expected tiers to be replaced, got %v", cfg.LOD.Tiers)
	}
	if len(cfg.LOD.Bands) != 3 || cfg.LOD.Bands[0].MaxDistance != 1 || cfg.LOD.Bands[2].Tier != 512 {
		t.Errorf("unexpected bands %+v", cfg.LOD.Bands)
	}
	if cfg.LOD.Policy != PolicyKeepAll {
		t.Errorf("expected keep-all, got %s", cfg.LOD.Policy)
	}
	if cfg.Viewer.MaxZoom != 6 {
		t.Errorf("expected max zoom 6, got %v", cfg.Viewer.MaxZoom)
	}
	if cfg.Data.FetchTimeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Data.FetchTimeout)
	}
	if cfg.Logging.LogFile != "gallery.log" {
		t.Errorf("expected log file 'gallery.log', got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown band tier",
			mutate:  func(c *Config) { c.LOD.Bands[0].Tier = 4096 },
			wantErr: "not a configured tier",
		},
		{
			name:    "unbounded middle band",
			mutate:  func(c *Config) { c.LOD.Bands[1].MaxDistance = 0 },
			wantErr: "only the last band",
		},
		{
			name:    "decreasing bands",
			mutate:  func(c *Config) { c.LOD.Bands[1].MaxDistance = 2 },
			wantErr: "must increase",
		},
		{
			name:    "unknown policy",
			mutate:  func(c *Config) { c.LOD.Policy = "lru" },
			wantErr: "unknown policy",
		},
		{
			name:    "max zoom below one",
			mutate:  func(c *Config) { c.Viewer.MaxZoom = 0.5 },
			wantErr: "max_zoom",
		},
		{
			name:    "no tiers",
			mutate:  func(c *Config) { c.LOD.Tiers = nil },
			wantErr: "lod.tiers must not be empty",
		},
		{
			name:    "end margin too large",
			mutate:  func(c *Config) { c.Gallery.EndMargin = 60 },
			wantErr: "end_margin",
		},
		{
			name:    "ambient out of range",
			mutate:  func(c *Config) { c.Graphics.Ambient = 1.5 },
			wantErr: "graphics.ambient",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "artworks flag",
			setup: func() { *flagArtworks = "http://localhost:3000/data/obras.json" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Data.Artworks != "http://localhost:3000/data/obras.json" {
					t.Errorf("expected artworks URL from flag, got %s", cfg.Data.Artworks)
				}
			},
			teardown: func() { *flagArtworks = "" },
		},
		{
			name:  "lod policy flag",
			setup: func() { *flagLODPolicy = PolicyKeepAll },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.LOD.Policy != PolicyKeepAll {
					t.Errorf("expected keep-all, got %s", cfg.LOD.Policy)
				}
			},
			teardown: func() { *flagLODPolicy = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.LOD.Policy = PolicyKeepAll
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.LOD.Policy != PolicyKeepAll {
		t.Errorf("expected saved policy to survive, got %s", loaded.LOD.Policy)
	}
	if len(loaded.LOD.Bands) != len(cfg.LOD.Bands) {
		t.Errorf("expected %d bands, got %d", len(cfg.LOD.Bands), len(loaded.LOD.Bands))
	}
}
