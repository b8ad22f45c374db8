package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"srcmerge/internal/errors"
	"srcmerge/internal/output"
	"srcmerge/internal/source"
	"srcmerge/internal/tokens"

	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration: which tree to load, where merges go,
// how tokens are counted and how the UI looks.
type Config struct {
	Source struct {
		Path          string   `yaml:"path"`                 // Directory to load
		Extensions    []string `yaml:"extensions,omitempty"` // Extension allow-list, empty allows all
		Exclude       []string `yaml:"exclude"`              // Glob patterns to skip
		IncludeHidden bool     `yaml:"include_hidden"`       // Keep dot files and directories
		IncludeBinary bool     `yaml:"include_binary"`       // Keep files that are not text
		MaxFileSize   int64    `yaml:"max_file_size"`        // Skip larger files, 0 disables
	} `yaml:"source"`
	Output struct {
		Path        string `yaml:"path"`        // Merged file path
		Destination string `yaml:"destination"` // file, clipboard, or file_and_clipboard
	} `yaml:"output"`
	Tokens struct {
		Encoding string `yaml:"encoding"` // tiktoken encoding or model, or "whitespace"
	} `yaml:"tokens"`
	Watch struct {
		Enabled    bool `yaml:"enabled"`     // Reload when the source changes
		DebounceMS int  `yaml:"debounce_ms"` // Quiet period before a reload
	} `yaml:"watch"`
	Logging struct {
		File  string `yaml:"file"`  // Log file, empty uses the cache directory
		Debug bool   `yaml:"debug"` // Enable debug logging
		JSON  bool   `yaml:"json"`  // Write JSON lines
	} `yaml:"logging"`
	Theme Theme `yaml:"theme"`
}

// DefaultPath returns ~/.config/srcmerge/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "srcmerge", "config.yaml"), nil
}

// DefaultLogPath returns the log file used when none is configured.
func DefaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "srcmerge", "srcmerge.log")
}

// LoadConfig reads the file at DefaultPath.
func LoadConfig() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(configPath)
}

// LoadConfigFile reads path over the defaults. A missing file is not an
// error and yields the defaults unchanged.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Fields missing from the file keep their defaults. Theme colors are
	// cleared so a theme name alone picks that theme's palette.
	cfg.Theme.Colors = Colors{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.fillTheme()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// defaultConfig loads the current directory, writes merged.md and counts
// with the default encoding.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Source.Path = "."
	cfg.Source.Exclude = append([]string(nil), source.DefaultExcludes...)
	cfg.Source.MaxFileSize = 1 << 20 // 1 MiB

	cfg.Output.Path = "merged.md"
	cfg.Output.Destination = output.File.String()

	cfg.Tokens.Encoding = tokens.DefaultEncoding

	cfg.Watch.Enabled = true
	cfg.Watch.DebounceMS = 300

	cfg.ApplyTheme("default")

	return cfg
}

// SaveConfig writes cfg as YAML, creating missing parent directories.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := output.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects unknown destinations, encodings and themes as well as
// malformed exclude patterns.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	if _, err := output.ParseDestination(c.Output.Destination); err != nil {
		return err
	}

	if err := c.Filter().Validate(); err != nil {
		return err
	}

	if c.Source.MaxFileSize < 0 {
		return errors.NewConfigError("max file size must be >= 0", "source.max_file_size", errors.InvalidConfig, nil)
	}

	if c.Watch.DebounceMS < 0 {
		return errors.NewConfigError("debounce must be >= 0 ms", "watch.debounce_ms", errors.InvalidConfig, nil)
	}

	if !knownTheme(c.Theme.Name) {
		return errors.NewConfigError("unknown theme", c.Theme.Name, errors.InvalidConfig, nil)
	}

	return nil
}

// Filter returns the source filter described by the config.
func (c *Config) Filter() source.FilterConfig {
	return source.FilterConfig{
		Extensions:    c.Source.Extensions,
		Exclude:       c.Source.Exclude,
		IncludeHidden: c.Source.IncludeHidden,
		IncludeBinary: c.Source.IncludeBinary,
		MaxFileSize:   c.Source.MaxFileSize,
	}
}

// Destination parses Output.Destination. Invalid values fall back to File;
// Validate reports them.
func (c *Config) Destination() output.Destination {
	d, err := output.ParseDestination(c.Output.Destination)
	if err != nil {
		return output.File
	}
	return d
}

// Debounce returns the watcher quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// LogFile returns the configured log file or the default one.
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return source.ExpandHome(c.Logging.File)
	}
	return DefaultLogPath()
}

// NewTestConfig is New with the whitespace counter and watching off.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Source.Path = ""
	cfg.Source.MaxFileSize = 0
	cfg.Tokens.Encoding = tokens.WhitespaceEncoding
	cfg.Watch.Enabled = false
	return cfg
}

// New returns the defaults.
func New() *Config {
	return defaultConfig()
}
