package site

import (
	"github.com/aretw0/lattice/pkg/collection"
	"github.com/aretw0/lattice/pkg/schema"
)

// BlogPost is a validated blog entry.
type BlogPost struct {
	ID      string           `mapstructure:"-"`
	Title   string           `mapstructure:"title"`
	Date    schema.LocalDate `mapstructure:"date"`
	Author  string           `mapstructure:"author"`
	Tags    []string         `mapstructure:"tags"`
	Excerpt string           `mapstructure:"excerpt"`
	Body    string           `mapstructure:"-"`
}

// Role is one position in the experience timeline.
type Role struct {
	Company string `mapstructure:"company"`
	Role    string `mapstructure:"role"`
	Period  string `mapstructure:"period"`
}

// Experience is the work history page.
type Experience struct {
	ID          string `mapstructure:"-"`
	Title       string `mapstructure:"title"`
	Experiences []Role `mapstructure:"experiences"`
	Education   Role   `mapstructure:"education"`
}

// SkillGroup lists the skills of one category.
type SkillGroup struct {
	Category string   `mapstructure:"category"`
	Items    []string `mapstructure:"items"`
}

// Skills is the technical skills page.
type Skills struct {
	ID     string       `mapstructure:"-"`
	Title  string       `mapstructure:"title"`
	Skills []SkillGroup `mapstructure:"skills"`
}

// Image references a picture with its alternative text.
type Image struct {
	URL string `mapstructure:"url"`
	Alt string `mapstructure:"alt"`
}

// Project is a portfolio project.
type Project struct {
	ID           string           `mapstructure:"-"`
	Title        string           `mapstructure:"title"`
	Description  string           `mapstructure:"description"`
	Image        Image            `mapstructure:"image"`
	Technologies []string         `mapstructure:"technologies"`
	GitHub       string           `mapstructure:"github"`
	Demo         string           `mapstructure:"demo"`
	Featured     bool             `mapstructure:"featured"`
	Completed    schema.LocalDate `mapstructure:"completed"`
	Category     string           `mapstructure:"category"`
	Body         string           `mapstructure:"-"`
}

func decode[T any](entries []collection.Entry, finish func(*T, collection.Entry)) ([]T, error) {
	out, err := collection.All[T](entries)
	if err != nil {
		return nil, err
	}
	for i := range out {
		finish(&out[i], entries[i])
	}
	return out, nil
}
