// Package config loads mavenbuild settings from a TOML file, the environment
// and command-line flags.
//
// Precedence, highest first: flags bound through [Loader.BindFlags],
// MAVENBUILD_* environment variables, the config file, built-in defaults.
// The default file lives at $XDG_CONFIG_HOME/mavenbuild/config.toml
// (~/.config/mavenbuild/config.toml when XDG_CONFIG_HOME is unset) and can
// be moved with MAVENBUILD_CONFIG.
package config

import (
	"io"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mavenbuild/pkg/pipeline"
)

// DefaultListen is the address the HTTP adapter binds by default.
const DefaultListen = "127.0.0.1:8080"

// Config is the effective configuration of a run or server.
type Config struct {
	Root           string `mapstructure:"root" toml:"root,omitempty"`
	Destination    string `mapstructure:"destination" toml:"destination,omitempty"`
	Workers        int    `mapstructure:"workers" toml:"workers"`
	BufferSize     int    `mapstructure:"buffer_size" toml:"buffer_size"`
	BundledGroupID string `mapstructure:"bundled_group_id" toml:"bundled_group_id"`
	Newline        string `mapstructure:"newline" toml:"newline"`

	// Report is a path the JSON run report is written to. Empty disables it.
	Report string `mapstructure:"report" toml:"report,omitempty"`

	// Strict makes the CLI exit non-zero when any artifact failed.
	Strict bool `mapstructure:"strict" toml:"strict"`

	Listen string `mapstructure:"listen" toml:"listen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workers:        pipeline.DefaultWorkers,
		BufferSize:     pipeline.DefaultBufferSize,
		BundledGroupID: pipeline.DefaultBundledGroupID,
		Newline:        pipeline.DefaultNewline,
		Listen:         DefaultListen,
	}
}

// PipelineOptions converts the configuration into pipeline options.
// Runtime fields (filesystem, logger) are left for the caller.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Root:           c.Root,
		Destination:    c.Destination,
		Workers:        c.Workers,
		BufferSize:     c.BufferSize,
		BundledGroupID: c.BundledGroupID,
		Newline:        c.Newline,
	}
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
