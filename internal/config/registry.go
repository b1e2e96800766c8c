package config

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
	"gopkg.in/yaml.v3"
)

// declaredNodes keeps the schema parts of the config file as YAML nodes.
// koanf decodes mappings into Go maps, which lose the declared field order.
type declaredNodes struct {
	Definitions map[string]yaml.Node `yaml:"definitions"`
	Collections map[string]struct {
		Schema yaml.Node `yaml:"schema"`
	} `yaml:"collections"`
}

func readDeclaredNodes(path string) (declaredNodes, error) {
	var nodes declaredNodes
	data, err := os.ReadFile(path)
	if err != nil {
		return nodes, err
	}
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nodes, fmt.Errorf("failed to read schemas from %s: %w", path, err)
	}
	return nodes, nil
}

func (c *Config) definition(name string) (schema.Type, error) {
	if n, ok := c.nodes.Definitions[name]; ok && n.Kind != 0 {
		return schema.ParseNode(&n)
	}
	return schema.ParseSpec(c.Definitions[name])
}

func (c *Config) collectionSchema(name string) (*schema.ObjectType, error) {
	if col, ok := c.nodes.Collections[name]; ok && col.Schema.Kind != 0 {
		return schema.ParseObjectNode(&col.Schema)
	}
	return schema.ParseObject(c.Collections[name].Schema)
}

// Register adds the definitions and schema-bearing collections of c to reg,
// in name order. Definitions come first so collections can reference them.
// Fields keep the order written in the config file.
func (c *Config) Register(reg *registry.Registry) error {
	for _, name := range slices.Sorted(maps.Keys(c.Definitions)) {
		t, err := c.definition(name)
		if err != nil {
			return fmt.Errorf("definition %q: %w", name, err)
		}
		if err := reg.Define(name, t); err != nil {
			return err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(c.Collections)) {
		if c.Collections[name].Schema == nil {
			continue
		}
		obj, err := c.collectionSchema(name)
		if err != nil {
			return fmt.Errorf("collection %q: %w", name, err)
		}
		if err := reg.Register(name, obj); err != nil {
			return err
		}
	}
	return nil
}

// Patterns returns the collections that declare explicit patterns.
func (c *Config) Patterns() map[string][]string {
	out := make(map[string][]string)
	for name, col := range c.Collections {
		if len(col.Patterns) > 0 {
			out[name] = col.Patterns
		}
	}
	return out
}

// SortField returns the configured default sort field of a collection.
func (c *Config) SortField(collection string) string {
	return c.Collections[collection].Sort
}
