// Package template renders the per-identity email bodies and subjects.
// Bodies are flat {{key}} substitutions over HTML files resolved by the
// identity's username; there is no nesting and no loops.
package template

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrTemplateNotFound is returned when the backing template file is absent
// on first load.
var ErrTemplateNotFound = errors.New("template not found")

// Renderer loads template bodies and substitutes named placeholders.
// Bodies are cached by resolved path for the process lifetime; the cache is
// read-mostly after first load and safe for concurrent use.
type Renderer struct {
	mu    sync.RWMutex
	cache map[string]string
}

// NewRenderer returns a Renderer with an empty cache.
func NewRenderer() *Renderer {
	return &Renderer{cache: make(map[string]string)}
}

// Render loads the template at path (cached after the first load) and
// replaces every {{key}} occurrence with its value from fields. Unknown
// placeholders are left verbatim.
func (r *Renderer) Render(path string, fields map[string]string) (string, error) {
	body, err := r.load(path)
	if err != nil {
		return "", err
	}

	for key, value := range fields {
		body = strings.ReplaceAll(body, "{{"+key+"}}", value)
	}
	return body, nil
}

func (r *Renderer) load(path string) (string, error) {
	r.mu.RLock()
	body, ok := r.cache[path]
	r.mu.RUnlock()
	if ok {
		return body, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%q: %w", path, ErrTemplateNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading template %q: %w", path, err)
	}

	// Two goroutines racing the first load store equivalent bodies.
	r.mu.Lock()
	r.cache[path] = string(raw)
	r.mu.Unlock()
	return string(raw), nil
}

// CVPath resolves the CV attachment for an identity's username.
func CVPath(cvDir, username string) string {
	return filepath.Join(cvDir, "CV_"+username+".pdf")
}

// BodyPath resolves the HTML template for an identity's username.
func BodyPath(templateDir, username string) string {
	return filepath.Join(templateDir, username+".html")
}
