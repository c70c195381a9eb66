// Package routepath normalizes navigation paths before they are looked up in
// a route table or written to a history backend.
package routepath

import (
	"errors"
	"strings"
)

// Result is a canonicalized location split into its parts.
type Result struct {
	// Path is the canonical path, without query or fragment.
	Path string

	// Query is the query string without the leading "?".
	Query string

	// Fragment is the fragment without the leading "#".
	Fragment string

	// Changed reports whether Path differs from the path part of the input.
	Changed bool
}

// String rebuilds the location as path, query and fragment.
func (r Result) String() string {
	return Join(r.Path, r.Query, r.Fragment)
}

// Canonicalization errors.
var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
)

// Canonicalize normalizes a location.
//
// Applied transformations:
//   - a missing leading slash is added
//   - repeated slashes collapse (/a//b → /a/b)
//   - "." segments are dropped and ".." segments pop their parent
//   - a trailing slash is removed, except for the root
//
// Backslashes, NUL bytes, malformed percent escapes and ".." above the root
// are rejected. Query and fragment are kept verbatim.
func Canonicalize(input string) (Result, error) {
	if input == "" {
		return Result{Path: "/", Changed: true}, nil
	}

	rest, fragment, _ := strings.Cut(input, "#")
	path, query, _ := strings.Cut(rest, "?")

	if strings.Contains(path, "\\") {
		return Result{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(path, "%00") {
		return Result{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return Result{}, err
		}
	}

	segments := strings.Split(path, "/")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) == 0 {
				return Result{}, ErrPathEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}

	canon := "/" + strings.Join(kept, "/")
	return Result{
		Path:     canon,
		Query:    query,
		Fragment: fragment,
		Changed:  canon != path,
	}, nil
}

// CanonicalizeNav canonicalizes a path a client asked to navigate to.
// Absolute and protocol-relative URLs are rejected so a navigation can never
// leave the application's origin.
func CanonicalizeNav(input string) (Result, error) {
	if !strings.HasPrefix(input, "/") || strings.HasPrefix(input, "//") {
		return Result{}, ErrInvalidPath
	}
	return Canonicalize(input)
}

// IsCanonical reports whether path is already in canonical form and carries
// no query or fragment.
func IsCanonical(path string) bool {
	if strings.ContainsAny(path, "?#") {
		return false
	}
	r, err := Canonicalize(path)
	return err == nil && !r.Changed && strings.HasPrefix(path, "/")
}

// Join builds a location from a path, an optional query and an optional
// fragment.
func Join(path, query, fragment string) string {
	s := path
	if query != "" {
		s += "?" + query
	}
	if fragment != "" {
		s += "#" + fragment
	}
	return s
}

// validatePercentEscapes checks that every "%" is followed by two hex digits.
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
