/*
Package lattice builds validated content collections for a static site.

Content lives in per-collection directories (blog posts as Markdown with YAML
front-matter, data files as YAML or JSON). Every collection is checked against
a registered schema: values are coerced to their declared types, defaults are
applied and every violation is reported with its field path. A collection with
a single invalid document yields no entries at all, so a page never renders
from partially valid data.

# Concept

A Project ties a DocumentSource (the filesystem, a Loam repository or memory)
to a schema Registry. Build reads every collection, validates it in parallel
and returns an immutable collection.Store that the site queries.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/lattice"
		"github.com/aretw0/lattice/pkg/collection"
	)

	func main() {
		// Reads ./site/lattice.yaml and ./site/content by default.
		project, err := lattice.New("./site")
		if err != nil {
			log.Fatal(err)
		}

		store, err := project.Build(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		if err := store.Err(); err != nil {
			log.Fatal(err)
		}

		posts, err := store.GetAll("blog", collection.SortBy("date"), collection.Limit(3))
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range posts {
			fmt.Println(p.Data.Text("title"))
		}
	}
*/
package lattice
