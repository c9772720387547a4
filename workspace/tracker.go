// Package workspace tracks the documents an editor has open and the files on disk
// that are subject to linting.
package workspace

import (
	"slices"
	"sync"

	"github.com/dhamidi/normls/norminette"
)

// Tracker holds open documents keyed by URI.
type Tracker struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

type Document struct {
	URI     string
	Path    string
	Text    string
	Version int32
	// Dirty is set when the text differs from what was last saved.
	Dirty bool
	// Diagnostics is the set last published for the document.
	Diagnostics []norminette.Diagnostic
	// Linted is set once diagnostics have been recorded.
	Linted bool
}

func NewTracker() *Tracker {
	return &Tracker{
		docs: make(map[string]*Document),
	}
}

func (t *Tracker) Open(uri, path, text string, version int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.docs[uri] = &Document{
		URI:     uri,
		Path:    path,
		Text:    text,
		Version: version,
	}
}

// Update replaces the text of an open document and marks it dirty. It reports
// false for a document that is not open.
func (t *Tracker) Update(uri, text string, version int32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	doc := t.docs[uri]
	if doc == nil {
		return false
	}
	doc.Text = text
	doc.Version = version
	doc.Dirty = true
	return true
}

// Saved clears the dirty flag, replacing the text when the editor sent it.
func (t *Tracker) Saved(uri string, text *string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	doc := t.docs[uri]
	if doc == nil {
		return false
	}
	if text != nil {
		doc.Text = *text
	}
	doc.Dirty = false
	return true
}

func (t *Tracker) Close(uri string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.docs, uri)
}

// Get returns a copy of the document at uri.
func (t *Tracker) Get(uri string) (Document, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	doc := t.docs[uri]
	if doc == nil {
		return Document{}, false
	}
	cp := *doc
	cp.Diagnostics = slices.Clone(doc.Diagnostics)
	return cp, true
}

// URIs returns the URIs of all open documents.
func (t *Tracker) URIs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	uris := make([]string, 0, len(t.docs))
	for uri := range t.docs {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	return uris
}

// SetDiagnostics records the diagnostics published for uri. It is a no-op if the
// document was closed in the meantime.
func (t *Tracker) SetDiagnostics(uri string, diags []norminette.Diagnostic) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if doc := t.docs[uri]; doc != nil {
		doc.Diagnostics = slices.Clone(diags)
		doc.Linted = true
	}
}

func (t *Tracker) Diagnostics(uri string) []norminette.Diagnostic {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if doc := t.docs[uri]; doc != nil {
		return slices.Clone(doc.Diagnostics)
	}
	return nil
}

// Published returns the diagnostics recorded for uri and whether any have been
// recorded since the document was opened.
func (t *Tracker) Published(uri string) ([]norminette.Diagnostic, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	doc := t.docs[uri]
	if doc == nil || !doc.Linted {
		return nil, false
	}
	return slices.Clone(doc.Diagnostics), true
}
