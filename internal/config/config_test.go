package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "content", cfg.Content.Dir)
	assert.Equal(t, "fs", cfg.Content.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Portfolio)
	assert.True(t, filepath.IsAbs(cfg.ContentDir()))
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "content"), cfg.ContentDir())

	path := writeConfig(t, "content:\n  dir: pages\n")
	cfg, err = config.LoadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "pages"), cfg.ContentDir())
}

func TestLogFile(t *testing.T) {
	path := writeConfig(t, "log:\n  file: logs/lattice.log\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "logs", "lattice.log"), cfg.LogFile())

	cfg.Log.File = ""
	assert.Empty(t, cfg.LogFile())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
content:
  dir: site/content
  backend: loam
log:
  level: debug
build:
  concurrency: 4
portfolio: false
definitions:
  link: {label: string, url: string}
collections:
  talks:
    patterns: ["talks/*.md"]
    sort: date
    schema:
      title: string
      date: date
      venue: string?
      links: ["@link"]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "loam", cfg.Content.Backend)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "site", "content"), cfg.ContentDir())
	assert.Equal(t, 4, cfg.Build.Concurrency)
	assert.False(t, cfg.Portfolio)
	assert.Equal(t, "date", cfg.SortField("talks"))
	assert.Equal(t, map[string][]string{"talks": {"talks/*.md"}}, cfg.Patterns())

	reg := registry.New()
	require.NoError(t, cfg.Register(reg))

	obj, err := reg.Resolve("talks")
	require.NoError(t, err)

	rec, errs := schema.Validate(obj, map[string]any{
		"title": "Go at scale",
		"date":  "2024-05-02",
		"links": []any{map[string]any{"label": "slides", "url": "https://example.com"}},
	})
	require.Empty(t, errs)
	assert.True(t, schema.IsAbsent(rec.Value("venue")))
	assert.Equal(t, "slides", rec.Records("links")[0].Text("label"))
}

func TestRegister_KeepsDeclaredOrder(t *testing.T) {
	path := writeConfig(t, `
definitions:
  venue: {name: string, city: string}
collections:
  talks:
    schema:
      title: string
      date: date
      body: string
      venue: "@venue"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	reg := registry.New()
	require.NoError(t, cfg.Register(reg))
	obj, err := reg.Resolve("talks")
	require.NoError(t, err)

	var names []string
	for _, f := range obj.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"title", "date", "body", "venue"}, names)

	_, errs := schema.Validate(obj, map[string]any{"venue": map[string]any{}})
	var paths []string
	for _, e := range errs {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"title", "date", "body", "venue.name", "venue.city"}, paths)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "content:\n  dir: from-file\n")
	t.Setenv("LATTICE_CONTENT__DIR", "from-env")
	t.Setenv("LATTICE_BUILD__CONCURRENCY", "2")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Content.Dir)
	assert.Equal(t, 2, cfg.Build.Concurrency)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"BadBackend", "content:\n  backend: s3\n"},
		{"BadLevel", "log:\n  level: loud\n"},
		{"NegativeConcurrency", "build:\n  concurrency: -1\n"},
		{"EmptyPattern", "collections:\n  blog:\n    patterns: [\"\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestRegister_BadSchema(t *testing.T) {
	path := writeConfig(t, `
collections:
  broken:
    schema:
      title: strin
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Error(t, cfg.Register(registry.New()))
}

func TestRegister_DuplicateOfGoCollection(t *testing.T) {
	path := writeConfig(t, `
collections:
  blog:
    schema:
      title: string
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	reg := registry.New()
	require.NoError(t, reg.Register("blog", schema.Object(schema.F("title", schema.String()))))
	assert.ErrorIs(t, cfg.Register(reg), domain.ErrDuplicateCollection)
}
