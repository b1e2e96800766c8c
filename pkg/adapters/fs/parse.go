package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions the filesystem source understands.
var Extensions = []string{".md", ".mdx", ".markdown", ".yaml", ".yml", ".json"}

// parseError carries a 1-based position inside the parsed file.
type parseError struct {
	Line   int
	Column int
	Err    error
}

func (e *parseError) Error() string { return e.Err.Error() }
func (e *parseError) Unwrap() error { return e.Err }

var yamlLine = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

// parseFile splits a content file into its structured fields and its body.
// Markdown files carry fields in a leading front-matter block; YAML and JSON
// files are entirely structured data and have an empty body.
func parseFile(name string, data []byte) (map[string]any, string, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".mdx", ".markdown":
		return parseMarkdown(data)
	case ".yaml", ".yml":
		fields, err := parseYAML(data, 0)
		return fields, "", err
	case ".json":
		fields, err := parseJSON(data)
		return fields, "", err
	default:
		return nil, "", fmt.Errorf("unsupported file type %q", path.Ext(name))
	}
}

func parseMarkdown(data []byte) (map[string]any, string, error) {
	var fields map[string]any
	// The opening fence occupies line 1, so front-matter lines are offset by one.
	format := frontmatter.NewFormat("---", "---", func(raw []byte, v any) error {
		parsed, err := parseYAML(raw, 1)
		if err != nil {
			return err
		}
		*(v.(*map[string]any)) = parsed
		return nil
	})

	body, err := frontmatter.Parse(bytes.NewReader(data), &fields, format)
	if err != nil {
		var pe *parseError
		if errors.As(err, &pe) {
			return nil, "", pe
		}
		return nil, "", &parseError{Err: err}
	}
	if fields == nil {
		fields = make(map[string]any)
	}
	return fields, string(body), nil
}

func parseYAML(data []byte, lineOffset int) (map[string]any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			line, _ := strconv.Atoi(m[1])
			return nil, &parseError{Line: line + lineOffset, Err: errors.New(m[2])}
		}
		return nil, &parseError{Err: err}
	}

	fields := make(map[string]any)
	if root.Kind == 0 || len(root.Content) == 0 {
		return fields, nil
	}
	doc := root.Content[0]
	if doc.Kind == yaml.ScalarNode && doc.Tag == "!!null" {
		return fields, nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, &parseError{
			Line:   doc.Line + lineOffset,
			Column: doc.Column,
			Err:    fmt.Errorf("expected a mapping at the top level, got %s", nodeKind(doc)),
		}
	}
	if err := doc.Decode(&fields); err != nil {
		return nil, &parseError{Line: doc.Line + lineOffset, Err: err}
	}
	return fields, nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unsupported node"
	}
}

func parseJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return make(map[string]any), nil
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			line, col := position(data, syntaxErr.Offset)
			return nil, &parseError{Line: line, Column: col, Err: err}
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			line, col := position(data, typeErr.Offset)
			return nil, &parseError{Line: line, Column: col, Err: fmt.Errorf("expected an object at the top level, got %s", typeErr.Value)}
		}
		return nil, &parseError{Err: err}
	}
	if fields == nil {
		fields = make(map[string]any)
	}
	return fields, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
