// internal/relay/views/views.go
// Package views embeds the pages and stylesheet served by the relay.
package views

import (
	"embed"
	"io/fs"

	"github.com/dalemusser/formrelay/pantry/templates"
)

//go:embed templates/*.gohtml static/*
var files embed.FS

// Layout is the shared page shell.
var Layout = templates.Set{Name: "layout", FS: files, Patterns: []string{"templates/layout.gohtml"}}

// Pages holds the "success" and "error" pages.
var Pages = templates.Set{Name: "relay", FS: files, Patterns: []string{"templates/success.gohtml", "templates/error.gohtml"}}

// Static returns the stylesheet directory, rooted so that "style.css"
// resolves.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
