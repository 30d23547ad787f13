package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appName   = "mavenbuild"
	envPrefix = "MAVENBUILD"
	fileName  = "config.toml"
)

// Dir returns the configuration directory using the XDG standard
// (~/.config/mavenbuild/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// File returns the config file path. MAVENBUILD_CONFIG takes precedence.
func File() (string, error) {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Loader merges defaults, the config file, the environment and flags.
type Loader struct {
	v    *viper.Viper
	used string
}

// NewLoader creates a loader seeded with the built-in defaults.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("root", d.Root)
	v.SetDefault("destination", d.Destination)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("buffer_size", d.BufferSize)
	v.SetDefault("bundled_group_id", d.BundledGroupID)
	v.SetDefault("newline", d.Newline)
	v.SetDefault("report", d.Report)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("listen", d.Listen)

	return &Loader{v: v}
}

// BindFlags binds command-line flags to config keys. Only flags the user
// set override lower-precedence sources. Keys use underscores while flags
// use hyphens.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !isKnown(key) {
			return
		}
		if bindErr := l.v.BindPFlag(key, f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return err
}

func isKnown(key string) bool {
	switch key {
	case "root", "destination", "workers", "buffer_size", "bundled_group_id",
		"newline", "report", "strict", "listen":
		return true
	}
	return false
}

// Load reads configuration from file, or from File() when file is empty.
// A missing file is not an error; defaults and the environment still apply.
func (l *Loader) Load(file string) (*Config, error) {
	if file == "" {
		var err error
		if file, err = File(); err != nil {
			return nil, fmt.Errorf("config file path: %w", err)
		}
	}

	l.v.SetConfigFile(file)
	l.v.SetConfigType("toml")
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		l.used = file
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Used returns the config file read by Load, or "" if none was found.
func (l *Loader) Used() string {
	return l.used
}

// Write encodes cfg as TOML at path on fsys. An existing file is only
// replaced when force is set.
func Write(fsys afero.Fs, path string, cfg *Config, force bool) error {
	if exists, err := afero.Exists(fsys, path); err != nil {
		return err
	} else if exists && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fsys, path, buf.Bytes(), 0o644)
}
