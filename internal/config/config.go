// Package config loads, validates and persists the generator configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/loteria-tools/tablero/internal/boardgen"
	"github.com/loteria-tools/tablero/internal/catalog"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "TABLERO_CONFIG"

// Config represents the application configuration.
type Config struct {
	// Catalogue and frequency plan
	Catalog CatalogConfig `toml:"catalog"`

	// Board geometry and retry budget
	Boards BoardsConfig `toml:"boards"`

	// Export defaults
	Export ExportConfig `toml:"export"`

	// Database settings
	Storage StorageConfig `toml:"storage"`

	// Config watching settings
	Watch WatchConfig `toml:"watch"`
}

// CatalogConfig lists the items and the tiers that assign their target
// counts. Tier bounds are 1-based and inclusive, matching how the printed
// catalogue is numbered.
type CatalogConfig struct {
	Items []string     `toml:"items"` // Ordered catalogue labels
	Tiers []TierConfig `toml:"tiers"` // Frequency tiers over the items
}

// TierConfig is one frequency tier in the config file.
type TierConfig struct {
	First int `toml:"first"` // 1-based inclusive start
	Last  int `toml:"last"`  // 1-based inclusive end
	Count int `toml:"count"` // Occurrences per item in the range
}

// BoardsConfig contains board geometry and the allocator's retry budget.
type BoardsConfig struct {
	Count       int `toml:"count"`        // Number of boards
	Size        int `toml:"size"`         // Cells per board
	Rows        int `toml:"rows"`         // Printed grid rows
	Columns     int `toml:"columns"`      // Printed grid columns
	MaxAttempts int `toml:"max_attempts"` // Allocation attempts before giving up
}

// ExportConfig contains export defaults.
type ExportConfig struct {
	GameName   string `toml:"game_name"`   // Name recorded in export documents
	OutputDir  string `toml:"output_dir"`  // Directory for generated files ("" = working dir)
	PrettyJSON bool   `toml:"pretty_json"` // Indent JSON exports
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path        string `toml:"path"`         // SQLite file ("" = default location)
	AutoMigrate bool   `toml:"auto_migrate"` // Apply pending migrations on open
}

// WatchConfig contains settings for the config watcher.
type WatchConfig struct {
	PollInterval string `toml:"poll_interval"` // Fallback polling interval (e.g., "2s")
	MinInterval  string `toml:"min_interval"`  // Floor between regenerations (e.g., "1s")
}

// DefaultConfig returns the reference game setup: the built-in catalogue,
// 15 boards of 16 cells printed 4x4, and a 1000-attempt budget.
func DefaultConfig() *Config {
	items := catalog.ReferenceItems()
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = string(item)
	}

	tiers := make([]TierConfig, 0, 2)
	for _, tier := range catalog.ReferenceTiers() {
		tiers = append(tiers, TierConfig{
			First: tier.First + 1,
			Last:  tier.Last,
			Count: tier.Count,
		})
	}

	return &Config{
		Catalog: CatalogConfig{
			Items: labels,
			Tiers: tiers,
		},
		Boards: BoardsConfig{
			Count:       15,
			Size:        16,
			Rows:        4,
			Columns:     4,
			MaxAttempts: 1000,
		},
		Export: ExportConfig{
			GameName:   "Lotería Barranquilla",
			OutputDir:  "",
			PrettyJSON: true,
		},
		Storage: StorageConfig{
			Path:        "",
			AutoMigrate: true,
		},
		Watch: WatchConfig{
			PollInterval: "2s",
			MinInterval:  "1s",
		},
	}
}

// configPath returns the path to the configuration file, honoring the
// TABLERO_CONFIG override.
func configPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".tablero")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Path returns the location of the configuration file, honoring the
// TABLERO_CONFIG override. The containing directory is created on demand.
func Path() (string, error) {
	return configPath()
}

// Load loads the configuration from the default location. Returns the
// default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	return LoadFile(path)
}

// LoadFile loads the configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to the default location.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo saves the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values. It checks both field-level
// constraints and the cross-field ones the allocator relies on, so a config
// that passes here will not be rejected later for setup reasons.
func (c *Config) Validate() error {
	if c.Boards.Count <= 0 {
		return fmt.Errorf("board count must be positive: %d", c.Boards.Count)
	}
	if c.Boards.Size <= 0 {
		return fmt.Errorf("board size must be positive: %d", c.Boards.Size)
	}
	if c.Boards.Rows <= 0 || c.Boards.Columns <= 0 {
		return fmt.Errorf("grid must be positive: %dx%d", c.Boards.Rows, c.Boards.Columns)
	}
	if c.Boards.Rows*c.Boards.Columns != c.Boards.Size {
		return fmt.Errorf("grid %dx%d does not hold %d items", c.Boards.Rows, c.Boards.Columns, c.Boards.Size)
	}
	if c.Boards.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive: %d", c.Boards.MaxAttempts)
	}

	cat, err := c.BuildCatalog()
	if err != nil {
		return err
	}
	if want := c.Boards.Count * c.Boards.Size; cat.PoolSize() != want {
		return fmt.Errorf("catalogue provides %d tokens, %d boards of %d cells need %d",
			cat.PoolSize(), c.Boards.Count, c.Boards.Size, want)
	}

	if c.Export.GameName == "" {
		return fmt.Errorf("export game name cannot be empty")
	}

	if _, err := time.ParseDuration(c.Watch.PollInterval); err != nil {
		return fmt.Errorf("invalid poll interval %q: %w", c.Watch.PollInterval, err)
	}
	if _, err := time.ParseDuration(c.Watch.MinInterval); err != nil {
		return fmt.Errorf("invalid min interval %q: %w", c.Watch.MinInterval, err)
	}

	return nil
}

// BuildCatalog converts the config's 1-based inclusive tier bounds into a
// validated catalogue.
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	items := make([]catalog.Item, len(c.Catalog.Items))
	for i, label := range c.Catalog.Items {
		items[i] = catalog.Item(label)
	}

	tiers := make([]catalog.Tier, len(c.Catalog.Tiers))
	for i, tier := range c.Catalog.Tiers {
		tiers[i] = catalog.Tier{
			First: tier.First - 1,
			Last:  tier.Last,
			Count: tier.Count,
		}
	}

	return catalog.New(items, tiers)
}

// Params returns the allocator parameters described by the config.
func (c *Config) Params() boardgen.Params {
	return boardgen.Params{
		BoardCount:  c.Boards.Count,
		BoardSize:   c.Boards.Size,
		MaxAttempts: c.Boards.MaxAttempts,
	}
}

// GetPollInterval returns the watch poll interval as a duration.
func (c *Config) GetPollInterval() (time.Duration, error) {
	return time.ParseDuration(c.Watch.PollInterval)
}

// GetMinInterval returns the watch regeneration floor as a duration.
func (c *Config) GetMinInterval() (time.Duration, error) {
	return time.ParseDuration(c.Watch.MinInterval)
}
