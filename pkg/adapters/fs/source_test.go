package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/aretw0/lattice/internal/testutils"
	"github.com/aretw0/lattice/pkg/adapters/fs"
	"github.com/aretw0/lattice/pkg/domain"
	contract "github.com/aretw0/lattice/pkg/ports/tests"
	"github.com/aretw0/lattice/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, s *fs.Source, collection string) ([]domain.RawDocument, []error) {
	t.Helper()
	var docs []domain.RawDocument
	var errs []error
	for doc, err := range s.Documents(context.Background(), collection) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errs
}

func TestSource_Contract(t *testing.T) {
	dir := testutils.WriteContent(t, map[string]string{
		"blog/b-post.md":         "---\ntitle: B\n---\nBody B",
		"blog/a-post.md":         "---\ntitle: A\n---\nBody A",
		"blog/2024/nested.md":    "---\ntitle: Nested\n---\n",
		"experience/acme.yaml":   "company: Acme\n",
		"experience/globex.json": `{"company": "Globex"}`,
	})

	contract.DocumentSourceContractTest(t, fs.New(dir), map[string][]string{
		"blog":       {"2024/nested", "a-post", "b-post"},
		"experience": {"acme", "globex"},
	})
}

func TestSource_Markdown(t *testing.T) {
	dir := testutils.WriteContent(t, map[string]string{
		"blog/hello.md": "---\ntitle: Hello\npubDate: 2024-01-15\ntags: [go, web]\n---\n# Hello\n\nWorld\n",
	})

	docs, errs := collect(t, fs.New(dir), "blog")
	require.Empty(t, errs)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "blog", doc.Collection)
	assert.Equal(t, "hello", doc.ID)
	assert.Equal(t, "blog/hello.md", doc.Path)
	assert.Equal(t, "Hello", doc.Fields["title"])
	// Unquoted dates arrive as YAML timestamps; the schema keeps the calendar date.
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), doc.Fields["pubDate"])
	assert.Equal(t, []any{"go", "web"}, doc.Fields["tags"])
	assert.Contains(t, doc.Body, "# Hello")
	assert.Contains(t, doc.Body, "World")

	rec, verrs := schema.Validate(schema.Object(schema.F("pubDate", schema.Date())), doc.Fields)
	require.Empty(t, verrs)
	assert.Equal(t, schema.NewDate(2024, 1, 15), rec.Date("pubDate"))
}

func TestSource_MarkdownWithoutFrontMatter(t *testing.T) {
	dir := testutils.WriteContent(t, map[string]string{
		"notes/plain.md": "Just text\n",
	})

	docs, errs := collect(t, fs.New(dir), "notes")
	require.Empty(t, errs)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].Fields)
	assert.NotNil(t, docs[0].Fields)
	assert.Contains(t, docs[0].Body, "Just text")
}

func TestSource_SlugOverridesID(t *testing.T) {
	dir := testutils.WriteContent(t, map[string]string{
		"blog/2024-01-15-hello.md": "---\ntitle: Hello\nslug: hello-world\n---\n",
	})

	docs, errs := collect(t, fs.New(dir), "blog")
	require.Empty(t, errs)
	require.Len(t, docs, 1)
	assert.Equal(t, "hello-world", docs[0].ID)
}

func TestSource_ParseErrors(t *testing.T) {
	dir := testutils.WriteContent(t, map[string]string{
		"blog/bad-yaml.md": "---\ntitle: ok\ntags: [unclosed\n---\n",
		"blog/good.md":     "---\ntitle: Good\n---\n",
		"blog/list.yaml":   "- a\n- b\n",
		"blog/broken.json": "{\n  \"title\": \"x\",\n}",
	})

	docs, errs := collect(t, fs.New(dir), "blog")
	require.Len(t, docs, 1, "parse failures must not stop the remaining documents")
	assert.Equal(t, "good", docs[0].ID)
	require.Len(t, errs, 3)

	byDoc := make(map[string]*domain.DocumentParseError)
	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrDocumentParse)
		perr, ok := err.(*domain.DocumentParseError)
		require.True(t, ok, "expected *DocumentParseError, got %T", err)
		assert.Equal(t, "blog", perr.Collection)
		byDoc[perr.Document] = perr
	}

	require.Contains(t, byDoc, "bad-yaml")
	assert.Equal(t, "blog/bad-yaml.md", byDoc["bad-yaml"].Path)
	assert.Greater(t, byDoc["bad-yaml"].Line, 1, "front-matter lines start after the fence")

	require.Contains(t, byDoc, "list")
	assert.Equal(t, 1, byDoc["list"].Line)
	assert.Contains(t, byDoc["list"].Error(), "mapping")

	require.Contains(t, byDoc, "broken")
	assert.Equal(t, 3, byDoc["broken"].Line)
}

func TestSource_JSONNumbersKeepPrecision(t *testing.T) {
	dir := testutils.WriteContent(t, map[string]string{
		"projects/p.json": `{"stars": 12, "ratio": 0.5}`,
	})

	docs, errs := collect(t, fs.New(dir), "projects")
	require.Empty(t, errs)
	require.Len(t, docs, 1)
	assert.Equal(t, json.Number("12"), docs[0].Fields["stars"])
	assert.Equal(t, json.Number("0.5"), docs[0].Fields["ratio"])
}

func TestSource_ExplicitPatterns(t *testing.T) {
	fsys := fstest.MapFS{
		"content/posts/one.md":   {Data: []byte("---\ntitle: One\n---\n")},
		"content/posts/two.mdx":  {Data: []byte("---\ntitle: Two\n---\n")},
		"content/posts/skip.txt": {Data: []byte("ignored")},
		"data/skills.yaml":       {Data: []byte("languages: [Go]\n")},
	}

	s := fs.New("site",
		fs.WithFS(fsys),
		fs.WithCollection("blog", "content/posts/*"),
		fs.WithCollection("skills", "data/skills.yaml"),
	)

	names, err := s.Collections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"blog", "skills"}, names)

	docs, errs := collect(t, s, "blog")
	require.Empty(t, errs)
	require.Len(t, docs, 2)
	assert.Equal(t, "one", docs[0].ID)
	assert.Equal(t, "two", docs[1].ID)

	docs, errs = collect(t, s, "skills")
	require.Empty(t, errs)
	require.Len(t, docs, 1)
	assert.Equal(t, "skills", docs[0].ID)

	docs, _ = collect(t, s, "experience")
	assert.Empty(t, docs, "unmapped collections yield nothing once patterns are explicit")
}

func TestSource_HiddenDirectoriesAreNotCollections(t *testing.T) {
	dir := testutils.WriteContent(t, map[string]string{
		".git/config.yaml": "a: b\n",
		"blog/a.md":        "---\ntitle: A\n---\n",
	})

	names, err := fs.New(dir).Collections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"blog"}, names)
}

func TestSource_Watch(t *testing.T) {
	dir := testutils.WriteContent(t, map[string]string{
		"blog/a.md": "---\ntitle: A\n---\n",
	})
	fs.DebounceInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := fs.New(dir).Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "b.md"), []byte("---\ntitle: B\n---\n"), 0644))

	select {
	case changed := <-ch:
		assert.Equal(t, "blog/b.md", changed)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, time.Second, 10*time.Millisecond)
}
