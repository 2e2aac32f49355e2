// Package documents turns structured input into rendered declaration
// documents through a fixed registry of templates.
package documents

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

var (
	ErrUnknownDocType   = errors.New("unknown_doc_type")
	ErrMissingFields    = errors.New("missing_fields")
	ErrInvalidTemplate  = errors.New("invalid template definition")
	ErrDuplicateDocType = errors.New("duplicate doc type")
)

// RenderFunc writes the HTML form of a document from its complete field set.
// It must be a pure function of fields.
type RenderFunc func(w io.Writer, fields map[string]string) error

// Template is a document type definition.
type Template struct {
	DocType        string
	Name           string
	Description    string
	RequiredFields []string
	Render         RenderFunc
}

// Registry maps doc types to templates. It is fixed at construction and safe
// for concurrent reads.
type Registry struct {
	templates map[string]Template
	order     []string
}

// NewRegistry validates and indexes templates. Doc types are normalised the
// same way Lookup normalises its argument.
func NewRegistry(templates ...Template) (*Registry, error) {
	r := &Registry{templates: make(map[string]Template, len(templates))}

	for _, t := range templates {
		t.DocType = NormalizeDocType(t.DocType)
		switch {
		case t.DocType == "":
			return nil, fmt.Errorf("%w: empty doc type", ErrInvalidTemplate)
		case t.Render == nil:
			return nil, fmt.Errorf("%w: %s has no render function", ErrInvalidTemplate, t.DocType)
		}
		if _, ok := r.templates[t.DocType]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDocType, t.DocType)
		}

		required := slices.Clone(t.RequiredFields)
		slices.Sort(required)
		t.RequiredFields = slices.Compact(required)

		r.templates[t.DocType] = t
		r.order = append(r.order, t.DocType)
	}
	slices.Sort(r.order)
	return r, nil
}

// NormalizeDocType lower-cases and accepts the dashed URL spelling, so
// "ypefthini-dilosi" resolves to "ypefthini_dilosi".
func NormalizeDocType(docType string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(docType)), "-", "_")
}

func (r *Registry) Lookup(docType string) (Template, error) {
	t, ok := r.templates[NormalizeDocType(docType)]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownDocType, docType)
	}
	return t, nil
}

// List returns every template sorted by doc type.
func (r *Registry) List() []Template {
	out := make([]Template, 0, len(r.order))
	for _, dt := range r.order {
		out = append(out, r.templates[dt])
	}
	return out
}
