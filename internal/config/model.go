package config

// Config is the typed form of lattice.yaml after environment overrides.
type Config struct {
	Content     Content               `koanf:"content"`
	Log         Log                   `koanf:"log"`
	Build       Build                 `koanf:"build"`
	Serve       Serve                 `koanf:"serve"`
	Portfolio   bool                  `koanf:"portfolio"`
	Definitions map[string]any        `koanf:"definitions"`
	Collections map[string]Collection `koanf:"collections" validate:"dive"`

	// Root is the directory holding the config file (or the working
	// directory when there is none). It is filled by Load.
	Root string `koanf:"-"`

	// nodes holds the schemas as written in the file, in key order.
	nodes declaredNodes
}

// Content locates the content files.
type Content struct {
	Dir     string `koanf:"dir" validate:"required"`
	Backend string `koanf:"backend" validate:"oneof=fs loam"`
}

// Log holds logger tunables.
type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	File  string `koanf:"file"` // Rotated log file; empty logs to Stderr
}

// Build holds build tunables.
type Build struct {
	Concurrency int    `koanf:"concurrency" validate:"gte=0"`
	Out         string `koanf:"out"`
}

// Serve holds preview server tunables.
type Serve struct {
	Addr string `koanf:"addr" validate:"required,hostname_port"`
}

// Collection declares one collection. Patterns are doublestar globs relative
// to the content directory; Schema uses the type-string form. A collection
// without Schema must be registered in Go.
type Collection struct {
	Patterns []string       `koanf:"patterns" validate:"dive,required"`
	Schema   map[string]any `koanf:"schema"`
	Sort     string         `koanf:"sort"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Content:   Content{Dir: "content", Backend: "fs"},
		Log:       Log{Level: "info"},
		Build:     Build{Concurrency: 0},
		Serve:     Serve{Addr: "localhost:4321"},
		Portfolio: true,
	}
}
