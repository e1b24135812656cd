package route

import (
	"testing"

	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
	"github.com/nkaush-go/quickloop/pkg/quickloop/request"
	"github.com/nkaush-go/quickloop/pkg/quickloop/response"
)

func dummyHandler(*request.Request) *response.Response {
	return response.NewResponse(proto.StatusOK)
}

func TestRegisterAndLookup(t *testing.T) {
	tr := New()
	tr.Register(proto.MethodGET, "/foo/bar", dummyHandler)

	h, found := tr.Lookup(proto.MethodGET, "/foo/bar")
	if !found || h == nil {
		t.Fatalf("expected handler for /foo/bar GET, found=%v handler=%v", found, h)
	}

	_, found = tr.Lookup(proto.MethodGET, "/foo/baz")
	if found {
		t.Error("expected no match for unregistered path")
	}
}

func TestMethodNotAllowedVsNotFound(t *testing.T) {
	tr := New()
	tr.Register(proto.MethodGET, "/widgets", dummyHandler)

	h, found := tr.Lookup(proto.MethodPOST, "/widgets")
	if !found {
		t.Fatal("expected node match (found=true) for a path with a different registered method")
	}
	if h != nil {
		t.Error("expected nil handler for an unregistered method on an existing path")
	}

	_, found = tr.Lookup(proto.MethodGET, "/gizmos")
	if found {
		t.Error("expected found=false for a path with no matching node at all")
	}
}

func TestRegisterAfterFreezePanics(t *testing.T) {
	tr := New()
	tr.Freeze()

	defer func() {
		if recover() == nil {
			t.Fatal("expected Register after Freeze to panic")
		}
	}()
	tr.Register(proto.MethodGET, "/late", dummyHandler)
}

func TestParamSegmentNeverMatches(t *testing.T) {
	tr := New()
	tr.Register(proto.MethodGET, "/users/<id>", dummyHandler)

	_, found := tr.Lookup(proto.MethodGET, "/users/42")
	if found {
		t.Error("parameter segments are reserved but unused; a concrete id must not match")
	}
}

func TestRootPath(t *testing.T) {
	tr := New()
	tr.Register(proto.MethodGET, "/", dummyHandler)

	h, found := tr.Lookup(proto.MethodGET, "/")
	if !found || h == nil {
		t.Fatal("expected root path to be registrable and resolvable")
	}
}
