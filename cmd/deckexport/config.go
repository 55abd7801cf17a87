package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	deckexport "github.com/VantageDataChat/GoDeckExport"
)

// Config is the optional YAML configuration file. Command-line flags that
// are set explicitly take precedence over it.
type Config struct {
	OutDir        string   `yaml:"outDir"`
	Filename      string   `yaml:"filename"`
	Scale         float64  `yaml:"scale"`
	FontDirs      []string `yaml:"fontDirs"`
	RevealVersion string   `yaml:"revealVersion"`
	PageFormat    string   `yaml:"pageFormat"`
	BaseDir       string   `yaml:"baseDir"`
	Addr          string   `yaml:"addr"`
	Quiet         bool     `yaml:"quiet"`
}

func defaultConfig() *Config {
	d := deckexport.DefaultOptions()
	return &Config{
		OutDir:        ".",
		Scale:         d.Scale,
		RevealVersion: d.RevealVersion,
		PageFormat:    d.PageFormat,
		Addr:          "localhost:8080",
	}
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Scale <= 0 {
		return nil, fmt.Errorf("config %s: scale must be positive", path)
	}
	return cfg, nil
}

// merge copies every flag the user set on cmd into c.
func (c *Config) merge(cmd *cobra.Command) error {
	flags := cmd.Flags()
	var err error
	str := func(name string, dst *string) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	str("out", &c.OutDir)
	str("filename", &c.Filename)
	str("reveal-version", &c.RevealVersion)
	str("page-format", &c.PageFormat)
	str("base-dir", &c.BaseDir)
	str("addr", &c.Addr)
	if err == nil && flags.Changed("scale") {
		c.Scale, err = flags.GetFloat64("scale")
	}
	if err == nil && flags.Changed("font-dir") {
		var dirs []string
		dirs, err = flags.GetStringSlice("font-dir")
		c.FontDirs = append(c.FontDirs, dirs...)
	}
	if err == nil && flags.Changed("quiet") {
		c.Quiet, err = flags.GetBool("quiet")
	}
	if err != nil {
		return err
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", c.Scale)
	}
	return nil
}

// options builds exporter options. The font cache is shared by every
// exporter created from them.
func (c *Config) options(logger deckexport.Logger) *deckexport.Options {
	resolver := deckexport.NewResolver(nil)
	resolver.BaseDir = c.BaseDir
	return &deckexport.Options{
		Filename:      c.Filename,
		Scale:         c.Scale,
		FontDirs:      c.FontDirs,
		FontCache:     deckexport.NewFontCache(c.FontDirs...),
		Resolver:      resolver,
		Logger:        logger,
		RevealVersion: c.RevealVersion,
		PageFormat:    c.PageFormat,
	}
}
