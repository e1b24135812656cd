package request

import "testing"

func TestPercentDecode(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		plusAsSpace bool
		want        string
		wantErr     bool
	}{
		{"plain", "/hello", false, "/hello", false},
		{"space escape", "/a%20b", false, "/a b", false},
		{"plus as space", "a+b", true, "a b", false},
		{"plus literal in path", "a+b", false, "a+b", false},
		{"lowercase hex", "%2f", false, "/", false},
		{"incomplete escape", "%2", false, "", true},
		{"non-hex escape", "%zz", false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PercentDecode(tt.in, tt.plusAsSpace)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("PercentDecode(%q) expected error, got nil", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("PercentDecode(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("PercentDecode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitTarget(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantPath  string
		wantQuery string
	}{
		{"no query", "/foo/bar", "/foo/bar", ""},
		{"with query", "/foo?a=1&b=2", "/foo", "a=1&b=2"},
		{"empty query", "/foo?", "/foo", ""},
		{"root with query", "/?x=y", "/", "x=y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, query := SplitTarget(tt.target)
			if path != tt.wantPath || query != tt.wantQuery {
				t.Errorf("SplitTarget(%q) = (%q, %q), want (%q, %q)", tt.target, path, query, tt.wantPath, tt.wantQuery)
			}
		})
	}
}

func TestHeaderCaseSensitive(t *testing.T) {
	var h Header
	h.Add("Content-Type", "text/plain")

	if _, ok := h.Get("content-type"); ok {
		t.Fatal("Get should not match a differently-cased name")
	}
	if h.Has("CONTENT-TYPE") {
		t.Fatal("Has should not match a differently-cased name")
	}
	if _, ok := h.Get("Content-Type"); !ok {
		t.Fatal("expected exact-case Get to find Content-Type")
	}

	h.Set("Content-Type", "application/json")
	if v, _ := h.Get("Content-Type"); v != "application/json" {
		t.Errorf("Set did not replace value, got %q", v)
	}
	if h.Len() != 1 {
		t.Errorf("Set should not leave duplicate fields, len = %d", h.Len())
	}

	h.Del("Content-Type")
	if h.Has("Content-Type") {
		t.Error("Del did not remove header")
	}
}

func TestBodyKinds(t *testing.T) {
	none := &Body{}
	if none.Size() != 0 || none.Bytes() != nil {
		t.Error("zero-value Body should report no content")
	}

	b := NewStringBody([]byte("hello"))
	if b.Size() != 5 || string(b.Bytes()) != "hello" {
		t.Errorf("NewStringBody: size=%d bytes=%q", b.Size(), b.Bytes())
	}

	r, err := b.Reader()
	if err != nil {
		t.Fatalf("Reader() error: %v", err)
	}
	buf := make([]byte, 5)
	n, _ := r.Read(buf)
	if n != 5 || string(buf) != "hello" {
		t.Errorf("Reader read back %q", buf[:n])
	}
}
