// templates/engine.go
// Package templates compiles html/template page sets against a shared
// layout and renders them by name.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Set describes one group of template files.
type Set struct {
	// Name is for logging only (e.g., "layout", "relay").
	Name string
	// FS is usually an embed.FS from the owning package.
	FS fs.FS
	// Patterns are glob patterns within FS (e.g., "templates/*.gohtml").
	Patterns []string
}

// Engine holds one compiled clone of the layout per page file, so every
// page can define its own "content" block.
type Engine struct {
	mu     sync.RWMutex
	funcs  template.FuncMap
	base   *template.Template
	byName map[string]*template.Template
	logger *zap.Logger
}

// New creates an empty Engine. Call Boot before Render.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		funcs:  Funcs(),
		byName: map[string]*template.Template{},
		logger: logger,
	}
}

// Boot parses the layout set and compiles each page in pages against it.
func (e *Engine) Boot(layout Set, pages ...Set) error {
	base, err := e.parseFS(layout)
	if err != nil {
		return fmt.Errorf("parse %s: %w", layout.Name, err)
	}
	e.base = base

	for _, s := range pages {
		if err := e.compilePages(s); err != nil {
			return fmt.Errorf("compile set %q: %w", s.Name, err)
		}
	}
	return nil
}

// compilePages clones the layout for each page file and indexes the
// template names that file defines, except "content".
func (e *Engine) compilePages(s Set) error {
	files, err := globAll(s.FS, s.Patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		e.logger.Warn("no templates matched", zap.String("set", s.Name))
		return nil
	}
	sort.Strings(files)

	for _, path := range files {
		src, err := fs.ReadFile(s.FS, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		clone, err := e.base.Clone()
		if err != nil {
			return fmt.Errorf("clone layout: %w", err)
		}
		if _, err := clone.Funcs(e.funcs).Parse(string(src)); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		owned := extractDefineNames(string(src))
		delete(owned, "content")

		e.mu.Lock()
		for name := range owned {
			e.byName[name] = clone
		}
		e.mu.Unlock()

		e.logger.Debug("template page compiled",
			zap.String("set", s.Name),
			zap.String("page", filepath.Base(path)))
	}
	return nil
}

var reDefineName = regexp.MustCompile(`{{-?\s*define\s+"([^"]+)"`)

func extractDefineNames(src string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, g := range reDefineName.FindAllStringSubmatch(src, -1) {
		out[g[1]] = struct{}{}
	}
	return out
}

func (e *Engine) parseFS(s Set) (*template.Template, error) {
	root := template.New("root").Funcs(e.funcs)
	files, err := globAll(s.FS, s.Patterns)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	for _, path := range files {
		b, err := fs.ReadFile(s.FS, path)
		if err != nil {
			return nil, err
		}
		if _, err := root.Parse(string(b)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return root, nil
}

func globAll(filesystem fs.FS, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, pat := range patterns {
		matches, err := fs.Glob(filesystem, pat)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

// Render executes the page called name into a buffer and, only if that
// succeeds, writes it with the given status. On error nothing has been
// written to w.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data any) error {
	e.mu.RLock()
	t, ok := e.byName[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
	return nil
}
