// middleware/compress.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/formrelay/config"
	"github.com/go-chi/chi/v5/middleware"
)

// compressLevel balances speed and ratio for small HTML/JSON bodies.
const compressLevel = 5

// compressTypes are the only content types worth compressing here.
var compressTypes = []string{"text/html", "text/css", "text/plain", "application/json"}

// CompressFromConfig returns gzip/deflate compression when
// cfg.EnableCompression is set, and an identity middleware otherwise.
func CompressFromConfig(cfg *config.Config) func(next http.Handler) http.Handler {
	if cfg == nil || !cfg.EnableCompression {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return middleware.Compress(compressLevel, compressTypes...)
}
