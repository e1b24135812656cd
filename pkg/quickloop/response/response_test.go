package response

import (
	"strconv"
	"strings"
	"testing"

	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
)

func TestHeaderSetGetCaseSensitive(t *testing.T) {
	var h Header
	h.Set("Content-Type", "text/plain")
	h.Set("content-type", "application/json")

	if got, ok := h.Get("CONTENT-TYPE"); ok {
		t.Errorf("Get(%q) = %q, %v; want not found", "CONTENT-TYPE", got, ok)
	}
	if got, ok := h.Get("Content-Type"); !ok || got != "text/plain" {
		t.Errorf("Get(%q) = %q, %v; want text/plain, true", "Content-Type", got, ok)
	}
	if got, ok := h.Get("content-type"); !ok || got != "application/json" {
		t.Errorf("Get(%q) = %q, %v; want application/json, true", "content-type", got, ok)
	}

	count := 0
	h.VisitAll(func(name, value string) { count++ })
	if count != 2 {
		t.Errorf("expected differently-cased names to be distinct fields, got %d", count)
	}
}

func TestSetBodyBytesSetsContentLength(t *testing.T) {
	r := NewResponse(proto.StatusOK)
	r.SetBodyBytes([]byte("hello"))

	cl, ok := r.Headers.Get("Content-Length")
	if !ok || cl != "5" {
		t.Errorf("Content-Length = %q, %v; want 5, true", cl, ok)
	}
	if r.ContentLength() != 5 {
		t.Errorf("ContentLength() = %d, want 5", r.ContentLength())
	}
}

func TestCanonicalErrorBodies(t *testing.T) {
	tests := []struct {
		name     string
		resp     *Response
		wantCode int
	}{
		{"malformed", MalformedRequest(), 400},
		{"not found", NotFound(), 404},
		{"method not allowed", MethodNotAllowed(), 405},
		{"payload too large", PayloadTooLarge(), 413},
		{"internal error", InternalServerError(), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := string(tt.resp.Bytes)
			if !strings.Contains(body, `"code":`+strconv.Itoa(tt.wantCode)) {
				t.Errorf("body %q missing code %d", body, tt.wantCode)
			}
			if !strings.HasPrefix(body, `{"message":"`) {
				t.Errorf("body %q does not start with canonical message field", body)
			}
			ct, _ := tt.resp.Headers.Get("Content-Type")
			if ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}
