// pantry/urlutil/urlutil.go
// Package urlutil validates user-supplied redirect targets.
package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// SafeLocalPath validates a same-origin redirect path. It accepts only
// absolute paths without scheme or host, rejects CR/LF and backslashes,
// and returns the cleaned path. Query and fragment are kept.
func SafeLocalPath(ret string) (string, bool) {
	if strings.ContainsAny(ret, "\r\n\\") {
		return "", false
	}
	ret = strings.TrimSpace(ret)
	if ret == "" {
		return "", false
	}
	// Scheme-relative "//host" would leave the origin.
	if !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") {
		return "", false
	}

	u, err := url.Parse(ret)
	if err != nil || u.IsAbs() || u.Host != "" || u.User != nil {
		return "", false
	}
	u.Path = path.Clean(u.Path)
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "", false
	}
	return u.String(), true
}

// IsValidAbsHTTPURL reports whether s is an absolute http(s) URL with a host,
// no credentials in the authority, and no CR/LF.
//
//	IsValidAbsHTTPURL("https://example.com/thanks") // true
//	IsValidAbsHTTPURL("example.com")                // false (no scheme)
//	IsValidAbsHTTPURL("javascript:alert(1)")        // false (invalid scheme)
//	IsValidAbsHTTPURL("https://u:p@example.com")    // false (credentials)
func IsValidAbsHTTPURL(s string) bool {
	if strings.ContainsAny(s, "\r\n") {
		return false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return u.User == nil
}

// Continuation returns the redirect target for a post-submit "_next"
// value: an absolute http(s) URL or a safe local path. Anything else is
// rejected.
func Continuation(next string) (string, bool) {
	if strings.ContainsAny(next, "\r\n") {
		return "", false
	}
	next = strings.TrimSpace(next)
	if next == "" {
		return "", false
	}
	if IsValidAbsHTTPURL(next) {
		return next, true
	}
	return SafeLocalPath(next)
}
