package mock

import "github.com/fwojciec/granola"

var _ granola.Converter = (*Converter)(nil)

// Converter is a mock implementation of granola.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ granola.NotesRenderer = (*NotesRenderer)(nil)

// NotesRenderer is a mock implementation of granola.NotesRenderer.
type NotesRenderer struct {
	RenderNotesFn func(doc *granola.Document) (string, error)
}

func (r *NotesRenderer) RenderNotes(doc *granola.Document) (string, error) {
	return r.RenderNotesFn(doc)
}
