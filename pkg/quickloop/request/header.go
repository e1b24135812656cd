package request

// field is one header line, name exactly as received on the wire — no
// case-folding on write or read. Spec §3 calls for a "header mapping
// (string→string, case-sensitive as received)", matching the plain
// string-keyed hash map the original parser uses; a handler that wants
// RFC 7230 case-insensitive matching is expected to fold case itself.
type field struct {
	Name  string
	Value string
}

// Header is an ordered collection of request headers. Order is preserved
// because some handlers care about header rendering order when they
// forward a request.
type Header struct {
	fields []field
}

// Add appends a header, allowing duplicates (e.g. multiple Set-Cookie-like
// request headers); Get returns only the first match.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, field{Name: name, Value: value})
}

// Set replaces all existing values for name with a single value.
func (h *Header) Set(name, value string) {
	h.Del(name)
	h.Add(name, value)
}

// Get returns the first value for name (exact, case-sensitive match),
// and whether it was present at all.
func (h *Header) Get(name string) (string, bool) {
	for _, f := range h.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Has reports whether name is present.
func (h *Header) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Del removes every header matching name.
func (h *Header) Del(name string) {
	out := h.fields[:0]
	for _, f := range h.fields {
		if f.Name != name {
			out = append(out, f)
		}
	}
	h.fields = out
}

// Len returns the number of header fields currently stored.
func (h *Header) Len() int { return len(h.fields) }

// VisitAll calls fn once per header field, in the order they were added.
func (h *Header) VisitAll(fn func(name, value string)) {
	for _, f := range h.fields {
		fn(f.Name, f.Value)
	}
}

// Reset discards all fields so the Header can be reused from a pool.
func (h *Header) Reset() {
	h.fields = h.fields[:0]
}
