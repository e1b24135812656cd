package conn

import (
	"bytes"
	"fmt"
	"strconv"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
	"github.com/nkaush-go/quickloop/pkg/quickloop/request"
	"github.com/nkaush-go/quickloop/pkg/quickloop/response"
	"github.com/nkaush-go/quickloop/pkg/quickloop/route"
)

type stubRouter struct {
	handler route.Handler
	found   bool
}

func (s *stubRouter) Lookup(method proto.Method, path string) (route.Handler, bool) {
	return s.handler, s.found
}

func newPair(t *testing.T) (serverFd, clientFd int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("SetNonblock: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func drainAll(t *testing.T, fd int) []byte {
	t.Helper()
	// The server side of the pair stays open, so a blocking read would
	// wait forever once the response has been consumed; stop at EAGAIN.
	if err := unix.SetNonblock(fd, true); err != nil {
		t.Fatalf("SetNonblock: %v", err)
	}
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := syscall.Read(fd, buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil || n == 0 {
			break
		}
	}
	return out
}

func TestDriveSimpleGET(t *testing.T) {
	serverFd, clientFd := newPair(t)

	router := &stubRouter{found: true, handler: func(req *request.Request) *response.Response {
		r := response.NewResponse(proto.StatusOK)
		r.Headers.Set("Content-Type", "text/plain; charset=utf-8")
		r.SetBodyBytes([]byte("hello"))
		return r
	}}

	c := New(serverFd, "127.0.0.1:12345", router)

	reqBytes := []byte("GET /hi HTTP/1.0\r\nHost: example.com\r\n\r\n")
	if _, err := syscall.Write(clientFd, reqBytes); err != nil {
		t.Fatalf("write request: %v", err)
	}

	for i := 0; i < 10 && !c.Done(); i++ {
		if err := c.Drive(true, true); err != nil {
			t.Fatalf("Drive: %v", err)
		}
	}

	if !c.Done() {
		t.Fatalf("connection did not finish, state=%s", c.State)
	}
	if c.req.Method != proto.MethodGET || c.req.Path != "/hi" {
		t.Errorf("parsed method/path = %s %s", c.req.Method, c.req.Path)
	}

	out := drainAll(t, clientFd)
	if !bytes.Contains(out, []byte("200 OK")) {
		t.Errorf("expected 200 OK status line, got %q", out)
	}
	if !bytes.Contains(out, []byte("hello")) {
		t.Errorf("expected body 'hello', got %q", out)
	}
}

func TestDriveNotFound(t *testing.T) {
	serverFd, clientFd := newPair(t)

	router := &stubRouter{found: false}
	c := New(serverFd, "127.0.0.1:1", router)

	req := []byte("GET /missing HTTP/1.0\r\n\r\n")
	if _, err := syscall.Write(clientFd, req); err != nil {
		t.Fatalf("write: %v", err)
	}

	for i := 0; i < 10 && !c.Done(); i++ {
		if err := c.Drive(true, true); err != nil {
			t.Fatalf("Drive: %v", err)
		}
	}

	out := drainAll(t, clientFd)
	if !bytes.Contains(out, []byte("404")) {
		t.Errorf("expected 404 status, got %q", out)
	}
	if !bytes.Contains(out, []byte(`"code":404`)) {
		t.Errorf("expected canonical JSON error body, got %q", out)
	}
}

func TestDriveMalformedRequestLine(t *testing.T) {
	serverFd, clientFd := newPair(t)

	router := &stubRouter{}
	c := New(serverFd, "127.0.0.1:1", router)

	if _, err := syscall.Write(clientFd, []byte("NOTHTTP garbage\r\n\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	for i := 0; i < 10 && !c.Done(); i++ {
		if err := c.Drive(true, true); err != nil {
			t.Fatalf("Drive: %v", err)
		}
	}

	out := drainAll(t, clientFd)
	if !bytes.Contains(out, []byte("400")) {
		t.Errorf("expected 400 status, got %q", out)
	}
}

// TestDriveHTTP09RequestLineAccepted exercises spec §6: a bare
// "METHOD target" request line with no protocol token at all is a valid
// HTTP/0.9-style request, not a 400.
func TestDriveHTTP09RequestLineAccepted(t *testing.T) {
	serverFd, clientFd := newPair(t)

	router := &stubRouter{found: true, handler: func(req *request.Request) *response.Response {
		r := response.NewResponse(proto.StatusOK)
		r.SetBodyBytes([]byte("hi"))
		return r
	}}
	c := New(serverFd, "127.0.0.1:1", router)

	if _, err := syscall.Write(clientFd, []byte("GET /hi\r\n\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	for i := 0; i < 10 && !c.Done(); i++ {
		if err := c.Drive(true, true); err != nil {
			t.Fatalf("Drive: %v", err)
		}
	}

	if c.req.Protocol != "" {
		t.Errorf("expected empty Protocol for a two-token request line, got %q", c.req.Protocol)
	}
	out := drainAll(t, clientFd)
	if !bytes.Contains(out, []byte("200 OK")) {
		t.Errorf("expected 200 OK status line, got %q", out)
	}
}

// TestDriveArbitraryProtocolTokenAccepted exercises spec §6's "the
// protocol string is not validated" — any third token is stored and
// echoed verbatim, never grammar-checked.
func TestDriveArbitraryProtocolTokenAccepted(t *testing.T) {
	serverFd, clientFd := newPair(t)

	router := &stubRouter{found: true, handler: func(req *request.Request) *response.Response {
		r := response.NewResponse(proto.StatusOK)
		return r
	}}
	c := New(serverFd, "127.0.0.1:1", router)

	if _, err := syscall.Write(clientFd, []byte("GET /hi NOT-A-VERSION\r\n\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	for i := 0; i < 10 && !c.Done(); i++ {
		if err := c.Drive(true, true); err != nil {
			t.Fatalf("Drive: %v", err)
		}
	}

	if c.req.Protocol != "NOT-A-VERSION" {
		t.Errorf("expected Protocol to be stored verbatim, got %q", c.req.Protocol)
	}
	out := drainAll(t, clientFd)
	if !bytes.Contains(out, []byte("200 OK")) {
		t.Errorf("expected 200 OK status line, got %q", out)
	}
}

func TestDriveHeadHasNoBody(t *testing.T) {
	serverFd, clientFd := newPair(t)

	router := &stubRouter{found: true, handler: func(req *request.Request) *response.Response {
		r := response.NewResponse(proto.StatusOK)
		r.SetBodyBytes([]byte("should not appear on the wire for HEAD"))
		return r
	}}
	c := New(serverFd, "127.0.0.1:1", router)

	if _, err := syscall.Write(clientFd, []byte("HEAD /x HTTP/1.0\r\n\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	for i := 0; i < 10 && !c.Done(); i++ {
		if err := c.Drive(true, true); err != nil {
			t.Fatalf("Drive: %v", err)
		}
	}

	out := drainAll(t, clientFd)
	if bytes.Contains(out, []byte("should not appear")) {
		t.Errorf("HEAD response must not include a body, got %q", out)
	}
	if !bytes.Contains(out, []byte("200 OK")) {
		t.Errorf("expected 200 OK status line, got %q", out)
	}
}

// TestDriveLargeBodySpillsToTempFile exercises spec §8 scenario 6: a
// body past request.TempFileThreshold must be ingested via the temp-file
// sink, not buffered entirely in memory, and the handler must still see
// every byte the client sent.
func TestDriveLargeBodySpillsToTempFile(t *testing.T) {
	serverFd, clientFd := newPair(t)

	const bodyLen = request.TempFileThreshold + 64*1024
	var gotKind request.BodyKind
	var gotSize int64

	router := &stubRouter{found: true, handler: func(req *request.Request) *response.Response {
		gotKind = req.Body.Kind
		gotSize = req.Body.Size()
		r := response.NewResponse(proto.StatusOK)
		r.SetBodyBytes([]byte(strconv.FormatInt(gotSize, 10)))
		return r
	}}

	c := New(serverFd, "127.0.0.1:1", router)

	reqLine := fmt.Sprintf("POST /upload HTTP/1.0\r\nContent-Length: %d\r\n\r\n", bodyLen)
	payload := bytes.Repeat([]byte{0x41}, bodyLen)

	writeDone := make(chan error, 1)
	go func() {
		if _, err := syscall.Write(clientFd, []byte(reqLine)); err != nil {
			writeDone <- err
			return
		}
		off := 0
		for off < len(payload) {
			n, err := syscall.Write(clientFd, payload[off:])
			if err != nil {
				if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
					continue
				}
				writeDone <- err
				return
			}
			off += n
		}
		writeDone <- nil
	}()

	for i := 0; i < 100000 && !c.Done(); i++ {
		if err := c.Drive(true, true); err != nil {
			t.Fatalf("Drive: %v", err)
		}
	}
	if !c.Done() {
		t.Fatalf("connection did not finish, state=%s", c.State)
	}
	if err := <-writeDone; err != nil {
		t.Fatalf("writer goroutine: %v", err)
	}

	if gotKind != request.BodyFile {
		t.Errorf("body kind = %v, want BodyFile (spillover past TempFileThreshold)", gotKind)
	}
	if gotSize != int64(bodyLen) {
		t.Errorf("body size = %d, want %d", gotSize, bodyLen)
	}

	out := drainAll(t, clientFd)
	if !bytes.Contains(out, []byte(strconv.Itoa(bodyLen))) {
		t.Errorf("expected response body to report %d bytes, got %q", bodyLen, out)
	}
}
