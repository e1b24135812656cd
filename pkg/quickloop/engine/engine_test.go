//go:build linux

package engine

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/nkaush-go/quickloop/pkg/quickloop/accesslog"
	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
	"github.com/nkaush-go/quickloop/pkg/quickloop/request"
	"github.com/nkaush-go/quickloop/pkg/quickloop/response"
	"github.com/nkaush-go/quickloop/pkg/quickloop/route"
)

func TestEngineServesOneRequest(t *testing.T) {
	addr := "127.0.0.1:18733"

	router := route.New()
	router.Register(proto.MethodGET, "/ping", func(req *request.Request) *response.Response {
		r := response.NewResponse(proto.StatusOK)
		r.SetBodyBytes([]byte("pong"))
		return r
	})

	log := accesslog.New(accesslog.Config{Level: hclog.Off})
	cfg := DefaultConfig(addr)
	cfg.PollTimeout = 50 * time.Millisecond
	e := New(cfg, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- e.Run() }()
	defer e.Shutdown()

	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("could not connect to engine: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("GET /ping HTTP/1.0\r\n\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(conn)
	status, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read status line: %v", err)
	}
	if status != "HTTP/1.0 200 OK\r\n" {
		t.Errorf("status line = %q", status)
	}
}

func TestStatsSnapshot(t *testing.T) {
	s := NewStats()
	s.connectionsAccepted.Add(3)
	s.requestsHandled.Add(2)

	snap := s.Snapshot()
	if snap.ConnectionsAccepted != 3 || snap.RequestsHandled != 2 {
		t.Errorf("Snapshot = %+v", snap)
	}
}
