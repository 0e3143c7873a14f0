package server

import (
	"slices"
	"sync"

	"github.com/CWBudde/go-emmet-lsp/internal/document"
)

// Document is an open text document. A stored Document is never mutated;
// changes replace it.
type Document struct {
	URI        string
	Text       string
	Version    int
	LanguageID string
}

// Line returns line n without its terminator.
func (d *Document) Line(n int) (string, bool) {
	return document.Line(d.Text, n)
}

// DocumentStore manages all open documents.
type DocumentStore struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Set stores or updates a document.
func (ds *DocumentStore) Set(uri string, doc *Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = doc
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri string) (*Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Delete removes a document from the store.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// List returns all document URIs in sorted order.
func (ds *DocumentStore) List() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	uris := make([]string, 0, len(ds.documents))
	for uri := range ds.documents {
		uris = append(uris, uri)
	}

	slices.Sort(uris)

	return uris
}

// Update applies fn to the stored document under the write lock and stores
// the result. It reports false when uri is not open.
func (ds *DocumentStore) Update(uri string, fn func(*Document) (*Document, error)) (bool, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	doc, ok := ds.documents[uri]
	if !ok {
		return false, nil
	}

	next, err := fn(doc)
	if err != nil {
		return true, err
	}

	ds.documents[uri] = next

	return true, nil
}

// Clear removes all documents from the store.
func (ds *DocumentStore) Clear() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents = make(map[string]*Document)
}
