// Package routepath normalizes and splits request paths before they reach the
// route matcher.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Canonical is a normalized request location.
type Canonical struct {
	// Path is the canonical path, always starting with "/".
	Path string

	// Search is the raw query string without the leading "?".
	Search string

	// Changed reports whether Path differs from the input path.
	Changed bool
}

// String returns the path with its query string, if any.
func (c Canonical) String() string {
	if c.Search == "" {
		return c.Path
	}
	return c.Path + "?" + c.Search
}

// Query parses Search. Malformed pairs are dropped.
func (c Canonical) Query() url.Values {
	q, _ := url.ParseQuery(c.Search)
	return q
}

// Path errors.
var (
	ErrInvalidPath           = errors.New("routepath: invalid path")
	ErrBackslashInPath       = errors.New("routepath: path contains backslash")
	ErrNullByteInPath        = errors.New("routepath: path contains null byte")
	ErrInvalidPercentEscape  = errors.New("routepath: invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("routepath: path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("routepath: encoded slash in non-splat segment")
)

// Canonicalize normalizes a request path.
//
// Trailing slashes are dropped (except for "/"), repeated slashes collapse,
// "." segments are removed and ".." segments are resolved. Backslashes, NUL
// bytes, malformed percent escapes and ".." above the root are rejected.
// Anything after "?" is kept verbatim in Search and a "#fragment" is dropped.
func Canonicalize(input string) (Canonical, error) {
	input, _, _ = strings.Cut(input, "#")
	path, search, _ := strings.Cut(input, "?")
	if path == "" {
		return Canonical{Path: "/", Search: search, Changed: true}, nil
	}

	if strings.Contains(path, "\\") {
		return Canonical{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Canonical{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return Canonical{}, err
		}
	}

	var kept []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) == 0 {
				return Canonical{}, ErrPathEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}

	canonical := "/" + strings.Join(kept, "/")
	return Canonical{
		Path:    canonical,
		Search:  search,
		Changed: canonical != path,
	}, nil
}

// ValidateNavPath canonicalizes a navigation target supplied by a client.
// Only site-relative paths are accepted; absolute URLs and protocol-relative
// "//host" forms are rejected.
func ValidateNavPath(target string) (Canonical, error) {
	if strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//") ||
		!strings.HasPrefix(target, "/") {
		return Canonical{}, ErrInvalidPath
	}
	return Canonicalize(target)
}

// Split returns the raw (still escaped) segments of a canonical path.
// The root path yields no segments.
func Split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Join rebuilds an absolute path from raw segments.
func Join(segments []string) string {
	return "/" + strings.Join(segments, "/")
}

// DecodeSegment percent-decodes a single segment. Segments bound to a
// non-splat parameter must not decode to something containing "/".
func DecodeSegment(segment string, splat bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !splat && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// DecodeSuffix decodes a splat remainder and rejoins it with "/".
func DecodeSuffix(segments []string) (string, error) {
	out := make([]string, len(segments))
	for i, seg := range segments {
		decoded, err := DecodeSegment(seg, true)
		if err != nil {
			return "", err
		}
		out[i] = decoded
	}
	return strings.Join(out, "/"), nil
}

func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
