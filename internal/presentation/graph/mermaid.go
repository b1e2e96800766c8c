package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/lattice/pkg/schema"
)

// Collection is a named schema to draw.
type Collection struct {
	Name   string
	Schema *schema.ObjectType
}

// Overlay contains build results to visualize on the diagram.
type Overlay struct {
	Failed []string // Collections that failed validation
}

// GenerateMermaid produces a Mermaid flowchart describing collection schemas.
// It applies semantic styling:
// - Collection: [[Subroutine]] listing its scalar fields
// - Nested object: [Rectangle], linked by the field name ("[]" for arrays)
// - Definition reference: ((Circle)), linked with a dotted arrow
// Failed collections from the overlay are highlighted.
func GenerateMermaid(collections []Collection, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	refs := make(map[string]bool)
	for _, c := range collections {
		id := sanitizeMermaidID(c.Name)
		writeObject(&sb, id, c.Name, c.Schema, "[[", "]]", refs)
	}

	for _, name := range slices.Sorted(maps.Keys(refs)) {
		fmt.Fprintf(&sb, "    %s((\"@%s\"))\n", refID(name), name)
	}

	if overlay != nil && len(overlay.Failed) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef failed fill:#fee2e2,stroke:#b91c1c,stroke-width:2px,color:#000;\n")
		seen := make(map[string]bool)
		for _, name := range overlay.Failed {
			id := sanitizeMermaidID(name)
			if !seen[id] && id != "" {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s failed;\n", id)
			}
		}
	}

	return sb.String()
}

func writeObject(sb *strings.Builder, id, title string, obj *schema.ObjectType, opener, closer string, refs map[string]bool) {
	var lines []string
	type child struct {
		id, label string
		obj       *schema.ObjectType
	}
	var children []child
	var links []string

	for _, f := range obj.Fields() {
		inner, label := unwrapArray(f.Type, f.Name)
		switch t := inner.(type) {
		case *schema.ObjectType:
			childID := id + "_" + sanitizeMermaidID(f.Name)
			children = append(children, child{id: childID, label: label, obj: t})
		case *schema.RefType:
			refs[t.RefName()] = true
			links = append(links, fmt.Sprintf("    %s -. \"%s\" .-> %s\n", id, label, refID(t.RefName())))
		default:
			lines = append(lines, escape(f.Name+": "+schema.Describe(f.Type)))
		}
	}

	label := title
	if len(lines) > 0 {
		label += "<br/>" + strings.Join(lines, "<br/>")
	}
	fmt.Fprintf(sb, "    %s%s\"%s\"%s\n", id, opener, label, closer)

	for _, c := range children {
		writeObject(sb, c.id, c.label, c.obj, "[", "]", refs)
		fmt.Fprintf(sb, "    %s -- \"%s\" --> %s\n", id, c.label, c.id)
	}
	for _, l := range links {
		sb.WriteString(l)
	}
}

// unwrapArray strips wrappers and arrays, marking arrays in the label.
// A reference stays a reference so the diagram can link it.
func unwrapArray(t schema.Type, name string) (schema.Type, string) {
	for {
		switch tt := t.(type) {
		case *schema.OptionalType:
			t = tt.Inner()
		case *schema.DefaultType:
			t = tt.Inner()
		case *schema.ArrayType:
			name += "[]"
			t = tt.Elem()
		default:
			return t, name
		}
	}
}

func refID(name string) string {
	return "def_" + sanitizeMermaidID(name)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
