// Package config loads the command line configuration from wordtree.yaml
// and WORDTREE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tsawler/wordtree/docx"
	"github.com/tsawler/wordtree/export"
	"github.com/tsawler/wordtree/internal/logging"
)

// EnvPrefix prefixes every environment variable, e.g.
// WORDTREE_CONVERSION_DROP_UNKNOWN.
const EnvPrefix = "WORDTREE"

// Config is the complete configuration of the command line tool.
type Config struct {
	LogLevel   string           `mapstructure:"log_level"`
	Conversion ConversionConfig `mapstructure:"conversion"`
	Export     ExportConfig     `mapstructure:"export"`
}

// ConversionConfig mirrors docx.Options. Unset lists keep the library
// defaults.
type ConversionConfig struct {
	DropUnknown        bool     `mapstructure:"drop_unknown"`
	IgnoredElements    []string `mapstructure:"ignored_elements"`
	BoldStyleAliases   []string `mapstructure:"bold_style_aliases"`
	ItalicStyleAliases []string `mapstructure:"italic_style_aliases"`
}

// ExportConfig mirrors export.Config without the format, which is chosen
// by the command.
type ExportConfig struct {
	PrettyPrint     bool   `mapstructure:"pretty_print"`
	IncludeRaw      bool   `mapstructure:"include_raw"`
	IncludeHeaders  bool   `mapstructure:"include_headers"`
	IncludeNotes    bool   `mapstructure:"include_notes"`
	IncludeComments bool   `mapstructure:"include_comments"`
	Fragment        bool   `mapstructure:"fragment"`
	Title           string `mapstructure:"title"`
}

var listKeys = []string{
	"conversion.ignored_elements",
	"conversion.bold_style_aliases",
	"conversion.italic_style_aliases",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("conversion.drop_unknown", false)
	v.SetDefault("export.pretty_print", true)
	v.SetDefault("export.include_raw", false)
	v.SetDefault("export.include_headers", false)
	v.SetDefault("export.include_notes", true)
	v.SetDefault("export.include_comments", false)
	v.SetDefault("export.fragment", false)
	v.SetDefault("export.title", "")
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Export: ExportConfig{
			PrettyPrint:  true,
			IncludeNotes: true,
		},
	}
}

// Load reads the configuration. An explicit path must exist; without one,
// wordtree.yaml is looked up in the working directory and in
// $HOME/.config/wordtree, and its absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range listKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wordtree")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "wordtree"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the loader cannot type-check.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	for _, name := range c.Conversion.IgnoredElements {
		if !strings.Contains(name, ":") {
			return fmt.Errorf("configuration validation failed: ignored element %q has no namespace prefix", name)
		}
	}
	return nil
}

// DocxOptions returns the conversion options.
func (c *Config) DocxOptions() []docx.Option {
	return []docx.Option{docx.WithOptions(docx.Options{
		DropUnknown:        c.Conversion.DropUnknown,
		IgnoredElements:    c.Conversion.IgnoredElements,
		BoldStyleAliases:   c.Conversion.BoldStyleAliases,
		ItalicStyleAliases: c.Conversion.ItalicStyleAliases,
	})}
}

// ExportConfig returns the renderer configuration for format.
func (c *Config) ExportConfig(format export.Format) export.Config {
	return export.Config{
		Format:          format,
		PrettyPrint:     c.Export.PrettyPrint,
		IncludeRaw:      c.Export.IncludeRaw,
		IncludeHeaders:  c.Export.IncludeHeaders,
		IncludeNotes:    c.Export.IncludeNotes,
		IncludeComments: c.Export.IncludeComments,
		Fragment:        c.Export.Fragment,
		Title:           c.Export.Title,
	}
}
