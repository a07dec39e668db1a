// Package config loads wren.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/wren/pkg/frontend"
	"github.com/simonhull/wren/pkg/report"
)

// FileName is the config file looked up in the working directory.
const FileName = "wren.yaml"

// EnvPrefix prefixes environment overrides, e.g. WREN_THEME_STRICT=true.
const EnvPrefix = "WREN"

// Config represents wren.yaml.
type Config struct {
	Classpath    ClasspathConfig      `yaml:"classpath" mapstructure:"classpath"`
	Roots        []string             `yaml:"roots" mapstructure:"roots"`
	Annotations  frontend.Annotations `yaml:"annotations" mapstructure:"annotations"`
	SkipPrefixes []string             `yaml:"skip_prefixes" mapstructure:"skip_prefixes"`
	Theme        ThemeConfig          `yaml:"theme" mapstructure:"theme"`
	Packages     PackagesConfig       `yaml:"packages" mapstructure:"packages"`
	Output       OutputConfig         `yaml:"output" mapstructure:"output"`
	Workers      int                  `yaml:"workers" mapstructure:"workers"`
	LogLevel     string               `yaml:"log_level" mapstructure:"log_level"`
}

// ClasspathConfig lists where classes come from.
type ClasspathConfig struct {
	Entries  []string `yaml:"entries" mapstructure:"entries"`   // class directories and jars
	Catalogs []string `yaml:"catalogs" mapstructure:"catalogs"` // YAML class catalogs
}

// ThemeConfig holds theme selection settings.
type ThemeConfig struct {
	Default string `yaml:"default" mapstructure:"default"`
	Strict  bool   `yaml:"strict" mapstructure:"strict"`
}

// PackagesConfig holds npm package collection settings.
type PackagesConfig struct {
	Classpath bool `yaml:"classpath" mapstructure:"classpath"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Path   string `yaml:"path" mapstructure:"path"`
	Force  bool   `yaml:"force" mapstructure:"force"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Classpath: ClasspathConfig{
			Entries:  []string{"target/classes"},
			Catalogs: []string{},
		},
		Roots:        []string{},
		Annotations:  frontend.DefaultAnnotations(),
		SkipPrefixes: []string{},
		Output: OutputConfig{
			Format: string(report.FormatText),
		},
		LogLevel: "info",
	}
}

// LoadConfig reads the config file at path, or wren.yaml in the working
// directory when path is empty. A missing file yields the defaults.
// Relative paths read from a config file are taken relative to the
// directory holding it.
// Environment variables prefixed with WREN override file values.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		found = false
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if found {
		cfg.resolvePaths(filepath.Dir(v.ConfigFileUsed()))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolvePaths makes relative class path entries, catalogs and the output
// path relative to base, the directory holding the config file.
func (c *Config) resolvePaths(base string) {
	for i, entry := range c.Classpath.Entries {
		c.Classpath.Entries[i] = resolvePath(base, entry)
	}
	for i, catalog := range c.Classpath.Catalogs {
		c.Classpath.Catalogs[i] = resolvePath(base, catalog)
	}
	c.Output.Path = resolvePath(base, c.Output.Path)
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// setDefaults registers every key so environment overrides apply even when
// the file leaves the key out.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("classpath.entries", d.Classpath.Entries)
	v.SetDefault("classpath.catalogs", d.Classpath.Catalogs)
	v.SetDefault("roots", d.Roots)
	v.SetDefault("annotations.npm_package", d.Annotations.NpmPackage)
	v.SetDefault("annotations.js_module", d.Annotations.JsModule)
	v.SetDefault("annotations.html_import", d.Annotations.HtmlImport)
	v.SetDefault("annotations.javascript", d.Annotations.JavaScript)
	v.SetDefault("annotations.theme", d.Annotations.Theme)
	v.SetDefault("annotations.no_theme", d.Annotations.NoTheme)
	v.SetDefault("annotations.route", d.Annotations.Route)
	v.SetDefault("annotations.route_alias", d.Annotations.RouteAlias)
	v.SetDefault("annotations.parent_layout", d.Annotations.ParentLayout)
	v.SetDefault("annotations.theme_urls", d.Annotations.ThemeURLs)
	v.SetDefault("skip_prefixes", d.SkipPrefixes)
	v.SetDefault("theme.default", d.Theme.Default)
	v.SetDefault("theme.strict", d.Theme.Strict)
	v.SetDefault("packages.classpath", d.Packages.Classpath)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.force", d.Output.Force)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("log_level", d.LogLevel)
}

// Validate checks values that cannot be enforced by the file format.
func (c *Config) Validate() error {
	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// FrontendOptions converts the config to resolution options.
func (c *Config) FrontendOptions() frontend.Options {
	opts := frontend.Options{
		Roots:             c.Roots,
		Annotations:       c.Annotations,
		DefaultTheme:      c.Theme.Default,
		StrictTheme:       c.Theme.Strict,
		ClasspathPackages: c.Packages.Classpath,
	}
	if len(c.SkipPrefixes) > 0 {
		opts.SkipPrefixes = c.SkipPrefixes
	}
	return opts
}

// Marshal encodes the config as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// SaveConfig writes configuration to a YAML file.
func SaveConfig(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
