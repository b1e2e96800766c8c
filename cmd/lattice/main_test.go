package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/testutils"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetContexts clears the context cobra stores on each command after a
// run, so the next run hands its own context down.
func resetContexts(t *testing.T) {
	t.Helper()
	var unset context.Context
	rootCmd.SetContext(unset)
	for _, c := range rootCmd.Commands() {
		c.SetContext(unset)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetContexts(t)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return buf.String(), err
}

func site(t *testing.T) string {
	return testutils.WriteContent(t, map[string]string{
		"lattice.yaml": "log:\n  level: error\n",
		"content/blog/old.md": "---\ntitle: Old post\ndate: 2023-03-01\n---\n# Old\n",
		"content/blog/new.md": "---\ntitle: New post\ndate: 2024-03-01\n---\n# New\n",
	})
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "lattice version "+strings.TrimSpace(lattice.Version)+"\n", out)
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "--dir", site(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Build succeeded")
}

func TestList(t *testing.T) {
	dir := site(t)

	out, err := execute(t, "list", "--dir", dir, "blog", "--sort", "date", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "new")
	assert.NotContains(t, out, "Old post")
}

func TestShow(t *testing.T) {
	out, err := execute(t, "show", "--dir", site(t), "blog", "old")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Old post"`)
}

func TestSchemaMermaid(t *testing.T) {
	out, err := execute(t, "schema", "--dir", site(t), "blog", "--mermaid")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
}

func TestValidate_InvalidPrintsEachErrorOnce(t *testing.T) {
	dir := testutils.WriteContent(t, map[string]string{
		"lattice.yaml":           "log:\n  level: error\n",
		"content/blog/broken.md": "---\ntitle: Broken\n---\n",
	})

	out, err := execute(t, "validate", "--dir", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidCollection)
	assert.Equal(t, 1, strings.Count(out, "blog/broken"))

	var stderr bytes.Buffer
	assert.Equal(t, 1, reportError(&stderr, err))
	assert.Empty(t, stderr.String())

	assert.Equal(t, 1, reportError(&stderr, errors.New("boom")))
	assert.Equal(t, "boom\n", stderr.String())
	assert.Equal(t, 0, reportError(&stderr, nil))
}

func TestRun_CancelledContextStopsBuild(t *testing.T) {
	var out, stderr bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"validate", "--dir", site(t)})
	resetContexts(t)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetContexts(t)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 1, run(ctx, &stderr))
	assert.Contains(t, stderr.String(), context.Canceled.Error())
	assert.NotContains(t, out.String(), "Build succeeded")
}
