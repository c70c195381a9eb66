package routepath

import (
	"errors"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantPath     string
		wantQuery    string
		wantFragment string
		wantChanged  bool
		wantErr      error
	}{
		{name: "root", input: "/", wantPath: "/"},
		{name: "empty string", input: "", wantPath: "/", wantChanged: true},
		{name: "no leading slash", input: "module1", wantPath: "/module1", wantChanged: true},
		{name: "trailing slash", input: "/module1/", wantPath: "/module1", wantChanged: true},
		{name: "collapse slashes", input: "/a//b", wantPath: "/a/b", wantChanged: true},
		{name: "single dot", input: "/a/./b", wantPath: "/a/b", wantChanged: true},
		{name: "double dot", input: "/a/b/../c", wantPath: "/a/c", wantChanged: true},
		{name: "double dot to root", input: "/a/../", wantPath: "/", wantChanged: true},
		{name: "query kept", input: "/module2?tab=x", wantPath: "/module2", wantQuery: "tab=x"},
		{name: "fragment kept", input: "/module3#top", wantPath: "/module3", wantFragment: "top"},
		{
			name:         "query and fragment",
			input:        "/module3/?a=1#top",
			wantPath:     "/module3",
			wantQuery:    "a=1",
			wantFragment: "top",
			wantChanged:  true,
		},
		{name: "query escapes not validated", input: "/m?bad=%GG", wantPath: "/m", wantQuery: "bad=%GG"},
		{name: "valid escape", input: "/a%20b", wantPath: "/a%20b"},
		{name: "backslash", input: "/a\\b", wantErr: ErrBackslashInPath},
		{name: "nul literal", input: "/a\x00", wantErr: ErrNullByteInPath},
		{name: "nul encoded", input: "/a%00", wantErr: ErrNullByteInPath},
		{name: "bad escape", input: "/a%GG", wantErr: ErrInvalidPercentEscape},
		{name: "short escape", input: "/a%2", wantErr: ErrInvalidPercentEscape},
		{name: "escapes root", input: "/../etc", wantErr: ErrPathEscapesRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Canonicalize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Canonicalize(%q) unexpected error: %v", tt.input, err)
			}
			if got.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", got.Path, tt.wantPath)
			}
			if got.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", got.Query, tt.wantQuery)
			}
			if got.Fragment != tt.wantFragment {
				t.Errorf("Fragment = %q, want %q", got.Fragment, tt.wantFragment)
			}
			if got.Changed != tt.wantChanged {
				t.Errorf("Changed = %v, want %v", got.Changed, tt.wantChanged)
			}
		})
	}
}

func TestCanonicalizeNav(t *testing.T) {
	for _, in := range []string{"http://evil.com/", "https://x", "//evil.com", "module1", ""} {
		if _, err := CanonicalizeNav(in); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("CanonicalizeNav(%q) error = %v, want ErrInvalidPath", in, err)
		}
	}

	got, err := CanonicalizeNav("/module1/?x=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "/module1?x=1" {
		t.Errorf("String() = %q, want %q", got.String(), "/module1?x=1")
	}
}

func TestIsCanonical(t *testing.T) {
	tests := map[string]bool{
		"/":         true,
		"/module1":  true,
		"/module1/": false,
		"module1":   false,
		"/a//b":     false,
		"/a?x=1":    false,
		"/a#f":      false,
		"/../a":     false,
	}
	for in, want := range tests {
		if got := IsCanonical(in); got != want {
			t.Errorf("IsCanonical(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join("/a", "", ""); got != "/a" {
		t.Errorf("Join = %q", got)
	}
	if got := Join("/a", "q=1", "f"); got != "/a?q=1#f" {
		t.Errorf("Join = %q", got)
	}
}
