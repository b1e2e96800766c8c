// Package report prints build results for humans.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/lattice/pkg/collection"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/schema"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Printer writes build reports, colored when the destination is a terminal.
type Printer struct {
	out   *termenv.Output
	title cases.Caser
}

// New creates a Printer. Color is enabled only when w is a terminal.
func New(w io.Writer) *Printer {
	profile := termenv.Ascii
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		profile = termenv.EnvColorProfile()
	}
	return &Printer{
		out:   termenv.NewOutput(w, termenv.WithProfile(profile)),
		title: cases.Title(language.English),
	}
}

func (p *Printer) ok(s string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color("#22c55e"))
}

func (p *Printer) bad(s string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color("#ef4444"))
}

func (p *Printer) dim(s string) termenv.Style {
	return p.out.String(s).Faint()
}

// Store prints one line per collection followed by every error of the
// failing ones, then a summary line. It returns the store's aggregate error.
func (p *Printer) Store(store *collection.Store) error {
	failed := make(map[string]*domain.CollectionValidationError)
	for _, cve := range store.Errors() {
		failed[cve.Collection] = cve
	}

	total := 0
	for _, name := range store.Collections() {
		cve, bad := failed[name]
		if !bad {
			n := store.Len(name)
			total += n
			fmt.Fprintf(p.out, "%s %s %s\n", p.ok("✓"), p.title.String(name), p.dim(plural(n, "document")))
			continue
		}
		fmt.Fprintf(p.out, "%s %s %s\n", p.bad("✗"), p.title.String(name),
			p.dim(fmt.Sprintf("%s in %s", plural(len(cve.Errors), "error"), plural(cve.Documents, "document"))))
		for _, err := range cve.Errors {
			p.Error(err)
		}
	}

	err := store.Err()
	if err != nil {
		var be *domain.BuildError
		errors.As(err, &be)
		n := 0
		for _, c := range be.Collections {
			n += len(c.Errors)
		}
		fmt.Fprintf(p.out, "\n%s\n", p.bad(fmt.Sprintf("Build failed: %s in %s", plural(n, "error"), plural(len(be.Collections), "collection"))).Bold())
		return err
	}
	fmt.Fprintf(p.out, "\n%s\n", p.ok(fmt.Sprintf("Build succeeded: %s in %s", plural(total, "document"), plural(len(store.Collections()), "collection"))).Bold())
	return nil
}

// Error prints one failure, indented, with its document, path, expected
// type and actual value when it is a validation error.
func (p *Printer) Error(err error) {
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		detail := fmt.Sprintf("expected %s, got %s", ve.Expected, ve.ActualString())
		if len(ve.Allowed) > 0 {
			detail = fmt.Sprintf("expected one of %v, got %s", ve.Allowed, ve.ActualString())
		}
		if ve.Reason != "" {
			detail += ": " + ve.Reason
		}
		fmt.Fprintf(p.out, "    %s %s %s\n", p.dim(ve.Collection+"/"+ve.Document), p.bad(ve.Path), detail)
		return
	}
	fmt.Fprintf(p.out, "    %s\n", err.Error())
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
