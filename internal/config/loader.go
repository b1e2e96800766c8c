// Package config loads lattice.yaml.
//
// Load builds one Config from three layers (highest precedence last):
//
//  1. Built-in defaults (see Default).
//  2. The YAML file, lattice.yaml unless another path is given. An optional
//     .env beside it is loaded into the process environment first.
//  3. Environment variables prefixed LATTICE_, where "__" maps to "."
//     (LATTICE_CONTENT__DIR sets content.dir).
//
// The result is validated with go-playground/validator.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "lattice.yaml"

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "LATTICE_"

var v = validator.New()

// Load reads the config at path. An empty path means DefaultFile in the
// working directory, which may be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	if path == "" {
		return load(DefaultFile, false)
	}
	return load(path, true)
}

// LoadDir reads DefaultFile from dir, falling back to defaults rooted at dir
// when the file is missing.
func LoadDir(dir string) (*Config, error) {
	return load(filepath.Join(dir, DefaultFile), false)
}

func load(path string, explicit bool) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}
	root := filepath.Dir(abs)

	// .env is optional.
	_ = godotenv.Load(filepath.Join(root, ".env"))

	k := koanf.New(".")

	var nodes declaredNodes
	if _, err := os.Stat(abs); err == nil {
		if err := k.Load(file.Provider(abs), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		if nodes, err = readDeclaredNodes(abs); err != nil {
			return nil, err
		}
	} else if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Root = root
	cfg.nodes = nodes
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LogFile returns the log file resolved against Root, or "" for Stderr.
func (c *Config) LogFile() string {
	if c.Log.File == "" || filepath.IsAbs(c.Log.File) || c.Root == "" {
		return c.Log.File
	}
	return filepath.Join(c.Root, c.Log.File)
}

// ContentDir returns the content directory resolved against Root.
func (c *Config) ContentDir() string {
	if filepath.IsAbs(c.Content.Dir) || c.Root == "" {
		return c.Content.Dir
	}
	return filepath.Join(c.Root, c.Content.Dir)
}
