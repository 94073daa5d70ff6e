package blockcli

import (
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/blocklistd/blocklistd/common"
)

func newPipeClient(t *testing.T) (*Client, net.Conn) {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	c := &Client{
		conn: clientSide,
		mu:   &sync.RWMutex{},
		d:    &Dispatcher{},
	}
	t.Cleanup(func() {
		clientSide.Close()
		serverSide.Close()
	})
	return c, serverSide
}

// serveOne reads a single request frame and answers it.
func serveOne(t *testing.T, conn net.Conn, reply func(req *Request) []byte) {
	t.Helper()
	go func() {
		buf, err := read(conn)
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(buf, &req); err != nil {
			return
		}
		_ = write(conn, reply(&req))
	}()
}

func TestClientCheck(t *testing.T) {
	c, srv := newPipeClient(t)
	serveOne(t, srv, func(req *Request) []byte {
		if req.Method != common.UPDATE_CHECK {
			t.Errorf("method = %s", req.Method)
		}
		b, _ := json.Marshal(Response{
			Ok: true,
			Update: &Update{
				Type:    common.UPDATE_CHECK,
				Message: mustJSON(t, common.CheckResponse{Class: "local", Outcome: 4, Latest: 200, Installed: 100}),
			},
		})
		return b
	})

	res, err := c.Check("local", 2)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Class != "local" || res.Outcome != 4 || res.Latest != 200 {
		t.Fatalf("check response = %+v", res)
	}
}

func TestClientErrorResponse(t *testing.T) {
	c, srv := newPipeClient(t)
	serveOne(t, srv, func(*Request) []byte {
		b, _ := json.Marshal(Response{Ok: false, Error: "unknown artifact class"})
		return b
	})

	if _, err := c.Download("bogus", false); err == nil || err.Error() != "unknown artifact class" {
		t.Fatalf("err = %v, want daemon error surfaced", err)
	}
}

func TestClientListenDispatchesUpdates(t *testing.T) {
	c, srv := newPipeClient(t)

	got := make(chan common.StatusUpdate, 1)
	c.Dispatcher().Handle(common.UPDATE_STATUS, HandlerFunc(func(m json.RawMessage) error {
		var su common.StatusUpdate
		if err := json.Unmarshal(m, &su); err != nil {
			return err
		}
		got <- su
		return ErrDisconnect
	}))

	go func() {
		b, _ := json.Marshal(Response{
			Ok: true,
			Update: &Update{
				Type:    common.UPDATE_STATUS,
				Message: mustJSON(t, common.StatusUpdate{Outcome: 3, Status: "downloading"}),
			},
		})
		_ = write(srv, b)
	}()

	done := make(chan error, 1)
	go func() { done <- c.Listen() }()

	select {
	case su := <-got:
		if su.Outcome != 3 || su.Status != "downloading" {
			t.Fatalf("status update = %+v", su)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no status update dispatched")
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Listen after ErrDisconnect = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Listen did not return after ErrDisconnect")
	}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
