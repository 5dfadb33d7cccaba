package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

//go:embed assets/**/*.tmpl
var embeddedFS embed.FS

// Template is a parsed prompt template addressable by ID.
// IDs mirror the asset path without extension, e.g. "agents/stock_analyst".
type Template struct {
	ID      string
	Content string

	parsed *template.Template
}

// Render executes the template with the provided data and returns the result.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.parsed.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.ID, err)
	}

	return buf.String(), nil
}

// Registry holds loaded prompt templates and resolves them by ID.
type Registry struct {
	fs        fs.FS
	templates map[string]*Template
	mu        sync.RWMutex
}

// NewRegistryFromFS constructs a registry from an arbitrary filesystem.
// Useful for tests that inject prompt fixtures.
func NewRegistryFromFS(filesystem fs.FS) (*Registry, error) {
	r := &Registry{
		fs:        filesystem,
		templates: map[string]*Template{},
	}

	if err := r.loadAll(); err != nil {
		return nil, err
	}

	return r, nil
}

// Get returns a lazily initialized default registry rooted at embedded assets.
func Get() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = newEmbeddedRegistry()
	})

	if defaultErr != nil {
		panic(defaultErr)
	}

	return defaultRegistry
}

// GetTemplate retrieves a template by its ID.
func (r *Registry) GetTemplate(id string) (*Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("template not found: %s", id)
	}

	return tmpl, nil
}

// Render executes a template by ID using the provided data.
func (r *Registry) Render(id string, data any) (string, error) {
	tmpl, err := r.GetTemplate(id)
	if err != nil {
		return "", err
	}

	return tmpl.Render(data)
}

// List returns all known template IDs.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}

	return ids
}

func (r *Registry) loadAll() error {
	return fs.WalkDir(r.fs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || filepath.Ext(path) != ".tmpl" {
			return nil
		}

		return r.loadTemplate(path)
	})
}

func (r *Registry) loadTemplate(path string) error {
	id := pathToID(path)
	content, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("read template %s: %w", id, err)
	}

	parsed, err := template.New(id).Funcs(helperFuncs).Parse(string(content))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", id, err)
	}

	r.mu.Lock()
	r.templates[id] = &Template{
		ID:      id,
		Content: string(content),
		parsed:  parsed,
	}
	r.mu.Unlock()

	return nil
}

func pathToID(rel string) string {
	normalized := filepath.ToSlash(rel)
	normalized = strings.TrimPrefix(normalized, "/")
	return strings.TrimSuffix(normalized, filepath.Ext(normalized))
}

func newEmbeddedRegistry() (*Registry, error) {
	subFS, err := fs.Sub(embeddedFS, "assets")
	if err != nil {
		return nil, fmt.Errorf("prepare embedded templates: %w", err)
	}

	return NewRegistryFromFS(subFS)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)
