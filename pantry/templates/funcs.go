// templates/funcs.go
package templates

import (
	"html/template"
	"strings"
	"time"
)

// Funcs returns helpers available to all templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		// {{ year }} in footers
		"year": func() int { return time.Now().Year() },
		// {{ .Origin | orDefault "/" }}
		"orDefault": func(def, s string) string {
			if strings.TrimSpace(s) == "" {
				return def
			}
			return s
		},
	}
}
