package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// LibraryConfig contains metadata about the library of books
type LibraryConfig struct {
	Title       string   `toml:"title"`
	Authors     []string `toml:"authors"`
	Description string   `toml:"description"`
	Language    string   `toml:"language"`
	Content     string   `toml:"content"` // Content root directory, defaults to "data"
}

// DefaultLibraryConfig returns a library config with defaults
func DefaultLibraryConfig() LibraryConfig {
	return LibraryConfig{
		Title:       "My Library",
		Authors:     []string{},
		Description: "",
		Language:    "en",
		Content:     "data",
	}
}

// BuildConfig contains build settings
type BuildConfig struct {
	BuildDir       string   `toml:"build-dir"`
	ExtraWatchDirs []string `toml:"extra-watch-dirs"`
}

// DefaultBuildConfig returns a build config with defaults
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		BuildDir:       "docs",
		ExtraWatchDirs: []string{},
	}
}

// HtmlConfig contains HTML output settings
type HtmlConfig struct {
	HighlightStyle string `toml:"highlight-style"`
	FeedEnabled    bool   `toml:"feed"`
}

// DefaultHtmlConfig returns HTML config with defaults
func DefaultHtmlConfig() HtmlConfig {
	return HtmlConfig{
		HighlightStyle: "dracula",
		FeedEnabled:    true,
	}
}

// Config is the top-level configuration
type Config struct {
	Library LibraryConfig          `toml:"library"`
	Build   BuildConfig            `toml:"build"`
	Html    HtmlConfig             `toml:"html"`
	Output  map[string]interface{} `toml:"output"`
	raw     map[string]interface{} // Raw TOML values
}

// NewDefaultConfig returns a config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Library: DefaultLibraryConfig(),
		Build:   DefaultBuildConfig(),
		Html:    DefaultHtmlConfig(),
		Output:  make(map[string]interface{}),
		raw:     make(map[string]interface{}),
	}
}

// LoadFromFile loads configuration from a library.toml file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadFromString(string(data))
}

// LoadFromString loads configuration from a TOML string
func LoadFromString(content string) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := toml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := toml.Unmarshal([]byte(content), &cfg.raw); err != nil {
		return nil, fmt.Errorf("failed to parse raw config: %w", err)
	}

	cfg.UpdateFromEnv()
	return cfg, nil
}

// UpdateFromEnv updates config from environment variables
// Variables starting with BOOKS_ are used
// BOOKS_FOO_BAR -> foo-bar
// BOOKS_FOO__BAR -> foo.bar
func (c *Config) UpdateFromEnv() {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "BOOKS_") {
			continue
		}

		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimPrefix(parts[0], "BOOKS_")
		value := parts[1]

		configKey := strings.ToLower(key)
		configKey = strings.ReplaceAll(configKey, "__", ".")
		configKey = strings.ReplaceAll(configKey, "_", "-")

		c.Set(configKey, value)
	}
}

// Set sets a configuration value using dot notation (e.g., "library.title", "build.build-dir")
func (c *Config) Set(key, value string) {
	parts := strings.Split(key, ".")

	switch parts[0] {
	case "library":
		if len(parts) >= 2 {
			c.setLibraryValue(parts[1], value)
		}
	case "build":
		if len(parts) >= 2 {
			c.setBuildValue(parts[1], value)
		}
	case "html":
		if len(parts) >= 2 {
			c.setHtmlValue(parts[1], value)
		}
	case "output":
		if len(parts) >= 2 {
			c.Output[parts[1]] = value
		}
	default:
		c.setRawValue(parts, value)
	}
}

func (c *Config) setLibraryValue(key, value string) {
	switch strings.ToLower(key) {
	case "title":
		c.Library.Title = value
	case "authors":
		c.Library.Authors = []string{value}
	case "description":
		c.Library.Description = value
	case "language":
		c.Library.Language = value
	case "content":
		c.Library.Content = value
	}
}

func (c *Config) setBuildValue(key, value string) {
	switch strings.ToLower(key) {
	case "build-dir":
		c.Build.BuildDir = value
	}
}

func (c *Config) setHtmlValue(key, value string) {
	switch strings.ToLower(key) {
	case "highlight-style":
		c.Html.HighlightStyle = value
	case "feed":
		c.Html.FeedEnabled = strings.ToLower(value) == "true"
	}
}

func (c *Config) setRawValue(parts []string, value string) {
	current := c.raw
	for i, part := range parts[:len(parts)-1] {
		if current[part] == nil {
			current[part] = make(map[string]interface{})
		}
		if m, ok := current[part].(map[string]interface{}); ok {
			current = m
		} else if i == len(parts)-2 {
			current[part] = map[string]interface{}{}
			if m, ok := current[part].(map[string]interface{}); ok {
				current = m
			}
		}
	}

	if len(parts) > 0 {
		current[parts[len(parts)-1]] = value
	}
}

// Get retrieves a value from the config using dot notation
func (c *Config) Get(key string) (interface{}, bool) {
	parts := strings.Split(key, ".")

	if parts[0] == "output" && len(parts) > 1 {
		val, ok := c.Output[parts[1]]
		return val, ok
	}

	current := c.raw
	for _, part := range parts {
		if v, ok := current[part]; ok {
			if m, isMap := v.(map[string]interface{}); isMap {
				current = m
			} else {
				return v, true
			}
		} else {
			return nil, false
		}
	}

	return current, true
}

// GetString retrieves a string value from config
func (c *Config) GetString(key string, defaultVal string) string {
	val, ok := c.Get(key)
	if !ok {
		return defaultVal
	}
	if s, isStr := val.(string); isStr {
		return s
	}
	return defaultVal
}

// GetBool retrieves a bool value from config
func (c *Config) GetBool(key string, defaultVal bool) bool {
	val, ok := c.Get(key)
	if !ok {
		return defaultVal
	}
	if b, isBool := val.(bool); isBool {
		return b
	}
	return defaultVal
}
