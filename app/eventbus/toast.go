package eventbus

import (
	"net/http"
	"strings"
)

// Toaster maps failed requests to user-facing copy. Requests to its quiet
// paths are never toasted because the donation workflow reports them itself.
// A "%s" in a quiet path matches one path segment or more.
type Toaster struct {
	quiet []pathPattern
}

type pathPattern struct {
	prefix   string
	suffix   string
	wildcard bool
}

func NewToaster(quietPaths ...string) *Toaster {
	t := &Toaster{}
	for _, p := range quietPaths {
		p = normalizePath(p)
		if p == "/" {
			continue
		}
		if prefix, suffix, ok := strings.Cut(p, "%s"); ok {
			t.quiet = append(t.quiet, pathPattern{prefix: prefix, suffix: suffix, wildcard: true})
			continue
		}
		t.quiet = append(t.quiet, pathPattern{prefix: p})
	}
	return t
}

// Message returns the toast for a failed request. The second return value is
// false when the error must not be toasted, either because a screen renders it
// inline or because the path is quiet.
func (t *Toaster) Message(evt HTTPError) (string, bool) {
	if t.isQuiet(normalizePath(evt.Path)) {
		return "", false
	}

	switch {
	case evt.Status == 0:
		return "Network error. Please check your connection and try again.", true
	case evt.Status == http.StatusUnauthorized:
		return "Your session has expired. Please sign in again.", true
	case evt.Status == http.StatusForbidden:
		return "You do not have permission to perform this action.", true
	case evt.Status == http.StatusNotFound && evt.Method == http.MethodGet:
		return "", false
	case evt.Status == http.StatusBadRequest, evt.Status == http.StatusConflict, evt.Status == http.StatusUnprocessableEntity:
		return "", false
	case evt.Status == http.StatusTooManyRequests:
		return "Too many requests. Please wait a moment and try again.", true
	case evt.Status >= 500:
		return "Something went wrong on our side. Please try again later.", true
	default:
		return "", false
	}
}

func (t *Toaster) isQuiet(path string) bool {
	for _, p := range t.quiet {
		if !p.wildcard {
			if path == p.prefix {
				return true
			}
			continue
		}
		if len(path) > len(p.prefix)+len(p.suffix) && strings.HasPrefix(path, p.prefix) && strings.HasSuffix(path, p.suffix) {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	path = strings.ToLower(strings.TrimSpace(path))
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
