// Package site declares the content collections of the portfolio website
// and typed accessors over a built store.
package site

import (
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
)

// Collection names.
const (
	BlogCollection       = "blog"
	ExperienceCollection = "experience"
	SkillsCollection     = "skills"
	ProjectsCollection   = "projects"
)

// Project categories.
var Categories = []string{"automation", "testing", "development"}

func role() *schema.ObjectType {
	return schema.Object(
		schema.F("company", schema.String()),
		schema.F("role", schema.String()),
		schema.F("period", schema.String()),
	)
}

// BlogSchema describes a blog post's front matter.
func BlogSchema() *schema.ObjectType {
	return schema.Object(
		schema.F("title", schema.String()),
		schema.F("date", schema.Date()),
		schema.F("author", schema.Optional(schema.String())),
		schema.F("tags", schema.Optional(schema.ArrayOf(schema.String()))),
		schema.F("excerpt", schema.Optional(schema.String())),
	)
}

// ExperienceSchema describes the work history page.
func ExperienceSchema() *schema.ObjectType {
	return schema.Object(
		schema.F("title", schema.String()),
		schema.F("experiences", schema.ArrayOf(role())),
		schema.F("education", role()),
	)
}

// SkillsSchema describes the technical skills page.
func SkillsSchema() *schema.ObjectType {
	return schema.Object(
		schema.F("title", schema.String()),
		schema.F("skills", schema.ArrayOf(schema.Object(
			schema.F("category", schema.String()),
			schema.F("items", schema.ArrayOf(schema.String())),
		))),
	)
}

// ProjectSchema describes a portfolio project.
func ProjectSchema() *schema.ObjectType {
	return schema.Object(
		schema.F("title", schema.String()),
		schema.F("description", schema.String()),
		schema.F("image", schema.Object(
			schema.F("url", schema.String()),
			schema.F("alt", schema.String()),
		)),
		schema.F("technologies", schema.ArrayOf(schema.String())),
		schema.F("github", schema.Optional(schema.String())),
		schema.F("demo", schema.Optional(schema.String())),
		schema.F("featured", schema.WithDefault(schema.Bool(), false)),
		schema.F("completed", schema.Date()),
		schema.F("category", schema.EnumOf(Categories...)),
	)
}

// Register adds the portfolio collections to reg.
func Register(reg *registry.Registry) error {
	for _, c := range []struct {
		name   string
		schema *schema.ObjectType
	}{
		{BlogCollection, BlogSchema()},
		{ExperienceCollection, ExperienceSchema()},
		{SkillsCollection, SkillsSchema()},
		{ProjectsCollection, ProjectSchema()},
	} {
		if err := reg.Register(c.name, c.schema); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding only the portfolio collections.
func NewRegistry() *registry.Registry {
	reg := registry.New()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}
