package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultURL is used when no connection string is configured.
const DefaultURL = "sqlite:///./data/read_status.db"

const scheme = "sqlite"

var ErrUnsupportedScheme = errors.New("unsupported database scheme")

// Location is where the sqlite database lives, as understood by the driver.
type Location struct {
	Path     string
	InMemory bool
}

// NormalizeURL rewrites the `scheme:///path` form used by other frameworks
// into `scheme:path`. Anything else is returned untouched.
//
// A fourth slash survives, so `sqlite:////var/db.sqlite` keeps its absolute path.
func NormalizeURL(raw string) string {
	i := strings.Index(raw, ":///")
	if i <= 0 {
		return raw
	}

	return raw[:i] + ":" + raw[i+len(":///"):]
}

// ParseURL turns a configured connection string into a [Location].
//
// Accepted forms are a bare path, `:memory:`, `file:` URIs, `sqlite:path` and
// `sqlite:///path`.
func ParseURL(raw string) (Location, error) {
	if raw == "" {
		raw = DefaultURL
	}
	normalized := NormalizeURL(raw)

	path := normalized
	if s, rest, ok := strings.Cut(normalized, ":"); ok && isScheme(s) {
		switch s {
		case scheme:
			path = rest
		case "file": // sqlite URI filename, handed to the driver as is
		default:
			return Location{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, s)
		}
	}
	if path == "" {
		return Location{}, fmt.Errorf("empty database path in %q", raw)
	}

	return Location{
		Path:     path,
		InMemory: path == ":memory:" || strings.Contains(path, "mode=memory"),
	}, nil
}

// EnsureDir creates the parent directory of a file backed database.
func (l Location) EnsureDir() error {
	if l.InMemory {
		return nil
	}

	path := strings.TrimPrefix(l.Path, "file:")
	path, _, _ = strings.Cut(path, "?")
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating database directory %q: %w", dir, err)
	}

	return nil
}

// A scheme is letters only, and longer than one so `C:\data.db` isn't mistaken for one.
func isScheme(s string) bool {
	if len(s) < 2 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}

	return true
}
