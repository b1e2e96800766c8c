package site

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/collection"
)

// Site answers the questions the page templates ask about the content.
type Site struct {
	store *collection.Store
}

// New wraps a built store.
func New(store *collection.Store) *Site {
	return &Site{store: store}
}

// Posts returns blog posts newest first. n <= 0 returns all of them.
func (s *Site) Posts(n int) ([]BlogPost, error) {
	entries, err := s.store.GetAll(BlogCollection, collection.SortBy("date"), collection.Limit(n))
	if err != nil {
		return nil, err
	}
	return decode(entries, func(p *BlogPost, e collection.Entry) {
		p.ID, p.Body = e.ID, e.Body
	})
}

// PostsTagged returns the posts carrying tag, newest first.
func (s *Site) PostsTagged(tag string) ([]BlogPost, error) {
	entries, err := s.store.GetAll(BlogCollection,
		collection.Where(func(e collection.Entry) bool {
			for _, t := range e.Data.Strings("tags") {
				if t == tag {
					return true
				}
			}
			return false
		}),
		collection.SortBy("date"),
	)
	if err != nil {
		return nil, err
	}
	return decode(entries, func(p *BlogPost, e collection.Entry) {
		p.ID, p.Body = e.ID, e.Body
	})
}

// Post returns one blog post.
func (s *Site) Post(id string) (BlogPost, error) {
	e, err := s.store.GetByID(BlogCollection, id)
	if err != nil {
		return BlogPost{}, err
	}
	var p BlogPost
	if err := e.Decode(&p); err != nil {
		return BlogPost{}, fmt.Errorf("decode post %s: %w", id, err)
	}
	p.ID, p.Body = e.ID, e.Body
	return p, nil
}

// Projects returns projects most recently completed first.
// With featuredOnly, only featured projects are returned.
func (s *Site) Projects(featuredOnly bool) ([]Project, error) {
	opts := []collection.QueryOption{collection.SortBy("completed")}
	if featuredOnly {
		opts = append(opts, collection.Where(func(e collection.Entry) bool {
			return e.Data.Bool("featured")
		}))
	}
	entries, err := s.store.GetAll(ProjectsCollection, opts...)
	if err != nil {
		return nil, err
	}
	return decode(entries, func(p *Project, e collection.Entry) {
		p.ID, p.Body = e.ID, e.Body
	})
}

// ProjectsByCategory groups projects by category, each group most recent first.
// Every category is present in the result, possibly empty.
func (s *Site) ProjectsByCategory() (map[string][]Project, error) {
	projects, err := s.Projects(false)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Project, len(Categories))
	for _, c := range Categories {
		out[c] = []Project{}
	}
	for _, p := range projects {
		out[p.Category] = append(out[p.Category], p)
	}
	return out, nil
}

// Experience returns the work history document.
func (s *Site) Experience() (Experience, error) {
	entries, err := s.store.GetAll(ExperienceCollection)
	if err != nil {
		return Experience{}, err
	}
	items, err := decode(entries, func(x *Experience, e collection.Entry) { x.ID = e.ID })
	if err != nil {
		return Experience{}, err
	}
	if len(items) == 0 {
		return Experience{}, fmt.Errorf("%s: no documents", ExperienceCollection)
	}
	return items[0], nil
}

// Skills returns the skills document.
func (s *Site) Skills() (Skills, error) {
	entries, err := s.store.GetAll(SkillsCollection)
	if err != nil {
		return Skills{}, err
	}
	items, err := decode(entries, func(x *Skills, e collection.Entry) { x.ID = e.ID })
	if err != nil {
		return Skills{}, err
	}
	if len(items) == 0 {
		return Skills{}, fmt.Errorf("%s: no documents", SkillsCollection)
	}
	return items[0], nil
}
