package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server Server `yaml:"server"`
	Log    Log    `yaml:"log"`
	Story  Story  `yaml:"story"`
	DB     DB     `yaml:"db"`
	Map    Map    `yaml:"map"`
	Relay  Relay  `yaml:"relay"`
	Tracks Tracks `yaml:"tracks"`
}

// Server holds HTTP server settings.
type Server struct {
	Address string `yaml:"address"`
	// FrontendDir is the directory served as the narrative frontend.
	// Empty disables static serving.
	FrontendDir string `yaml:"frontend_dir"`
}

// Log holds logging settings.
type Log struct {
	Server LogSettings `yaml:"server"`
	Events LogSettings `yaml:"events"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// Story holds choreography settings.
type Story struct {
	// Path is the choreography JSON file, an array indexed by slide number.
	Path string `yaml:"path"`
}

// DB holds database settings.
type DB struct {
	Path string `yaml:"path"`
}

// Map holds settings for map directives.
type Map struct {
	// AnimationDuration is the goTo animation length for scroll-linked
	// viewpoint updates.
	AnimationDuration Duration `yaml:"animation_duration"`
}

// Relay holds WebSocket relay settings.
type Relay struct {
	// AllowedOrigins restricts upgrade requests. Empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// SendBuffer is the per-client outbound message buffer.
	SendBuffer int `yaml:"send_buffer"`
}

// Tracks holds track store settings.
type Tracks struct {
	// DensityResolution is the H3 resolution for density summaries.
	DensityResolution int `yaml:"density_resolution"`
	// DefaultLimit caps observations returned per window query.
	DefaultLimit int `yaml:"default_limit"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: Server{
			Address:     "localhost:1931",
			FrontendDir: "",
		},
		Log: Log{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path:  "./logs/events.log",
				Level: "INFO",
			},
		},
		Story: Story{
			Path: "./configs/story.json",
		},
		DB: DB{
			Path: "./data/storymap.db",
		},
		Map: Map{
			AnimationDuration: Duration(1000 * time.Millisecond),
		},
		Relay: Relay{
			SendBuffer: 32,
		},
		Tracks: Tracks{
			DensityResolution: 5,
			DefaultLimit:      500,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Scrolly Story Animations Configuration
# --------------------------------------
# Supported Duration units: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	// Inject a comment for the level fields so the options are discoverable.
	reLevel := regexp.MustCompile(`(?m)^(\s+)level:`)
	data = reLevel.ReplaceAll(data, []byte("${1}# Options: DEBUG, INFO, WARN, ERROR\n${1}level:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
