package registry

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/schema"
)

// frame is one step of the DFS: either an object (keyed by pointer) or a
// reference (keyed by definition name).
type frame struct {
	key   any
	label string
}

// checker walks a schema depth-first, binding references and rejecting
// declarations that could never validate.
type checker struct {
	collection string
	defs       map[string]schema.Type
	active     map[schema.Type]bool
	refs       map[string]bool
	trail      []frame
}

func (c *checker) walk(t schema.Type, path string) error {
	switch tt := t.(type) {
	case *schema.ObjectType:
		if c.active[tt] {
			return c.cycle(tt, labelFor(path))
		}
		// DFS Cycle Detection: Mark
		c.active[tt] = true
		c.trail = append(c.trail, frame{key: tt, label: labelFor(path)})
		defer func() {
			// Backtrack
			delete(c.active, tt)
			c.trail = c.trail[:len(c.trail)-1]
		}()

		seen := make(map[string]bool)
		for _, f := range tt.Fields() {
			fieldPath := joinPath(path, f.Name)
			if f.Name == "" {
				return c.invalid(path, "empty field name")
			}
			if seen[f.Name] {
				return c.invalid(fieldPath, "duplicate field name")
			}
			seen[f.Name] = true
			if f.Type == nil {
				return c.invalid(fieldPath, "field type is nil")
			}
			if err := c.walk(f.Type, fieldPath); err != nil {
				return err
			}
		}
		return nil

	case *schema.ArrayType:
		if tt.Elem() == nil {
			return c.invalid(path, "array element type is nil")
		}
		return c.walk(tt.Elem(), path+"[]")

	case *schema.OptionalType:
		if tt.Inner() == nil {
			return c.invalid(path, "optional type is nil")
		}
		return c.walk(tt.Inner(), path)

	case *schema.DefaultType:
		if tt.Inner() == nil {
			return c.invalid(path, "default type is nil")
		}
		if err := c.walk(tt.Inner(), path); err != nil {
			return err
		}
		if _, errs := schema.ValidateValue(tt.Inner(), tt.Value()); len(errs) > 0 {
			return c.invalid(path, fmt.Sprintf("default %v does not match %s", tt.Value(), tt.Inner().Name()))
		}
		return nil

	case *schema.EnumType:
		if len(tt.Values()) == 0 {
			return c.invalid(path, "enum has no values")
		}
		return nil

	case *schema.RefType:
		name := tt.RefName()
		target, ok := c.defs[name]
		if !ok {
			return c.invalid(path, fmt.Sprintf("unknown definition %q", name))
		}
		if c.refs == nil {
			c.refs = make(map[string]bool)
		}
		if c.refs[name] {
			return c.cycle(name, "@"+name)
		}
		c.refs[name] = true
		c.trail = append(c.trail, frame{key: name, label: "@" + name})
		defer func() {
			delete(c.refs, name)
			c.trail = c.trail[:len(c.trail)-1]
		}()

		tt.Bind(target)
		return c.walk(target, path)

	default:
		return nil
	}
}

func (c *checker) cycle(key any, label string) error {
	chain := []string{label}
	for i, f := range c.trail {
		if f.key == key {
			chain = make([]string, 0, len(c.trail)-i+1)
			for _, g := range c.trail[i:] {
				chain = append(chain, g.label)
			}
			chain = append(chain, label)
			break
		}
	}
	return &domain.SchemaCycleError{Collection: c.collection, Chain: chain}
}

func (c *checker) invalid(path, reason string) error {
	return &domain.SchemaError{Collection: c.collection, Path: strings.TrimSuffix(path, "[]"), Reason: reason}
}

func labelFor(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
