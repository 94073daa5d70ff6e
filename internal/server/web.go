package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"golang.org/x/net/websocket"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/pkg/blocklib"
	"github.com/blocklistd/blocklistd/pkg/logger"
)

// WebServer carries the HTTP surfaces: the JSON-RPC bridge on /jsonrpc,
// per-connection JSON-RPC WebSocket servers on /jsonrpc/ws, and the
// unauthenticated status stream on /status/ws.
type WebServer struct {
	port      int
	listenAll bool
	l         logger.Logger
	rpc       *RPCServer
	notifier  *RPCNotifier
	status    *blocklib.StatusPublisher
	server    *http.Server
	mu        sync.Mutex
}

func NewWebServer(l logger.Logger, core Updater, cfg *RPCConfig, status *blocklib.StatusPublisher, port int) *WebServer {
	return &WebServer{
		port:      port,
		listenAll: cfg.ListenAll,
		l:         l,
		rpc:       NewRPCServer(cfg, core),
		notifier:  NewRPCNotifier(l),
		status:    status,
	}
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/jsonrpc", requireToken(s.rpc.secret, s.rpc.bridge))
	mux.Handle("/jsonrpc/ws", requireToken(s.rpc.secret, http.HandlerFunc(s.handleRPCSocket)))
	mux.Handle("/status/ws", websocket.Handler(s.handleStatusStream))
	return mux
}

// handleRPCSocket upgrades the connection and serves JSON-RPC over it
// until the client disconnects. The per-connection server is registered
// with the notifier so it receives push notifications.
func (s *WebServer) handleRPCSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.l.Warning("ws accept: %v", err)
		return
	}
	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := s.rpc.Serve(ch)
	s.notifier.Register(srv)
	defer s.notifier.Unregister(srv)
	_ = srv.Wait()
}

// handleStatusStream replays the current status and then streams every
// subsequent change as a JSON message until the client goes away.
func (s *WebServer) handleStatusStream(conn *websocket.Conn) {
	defer conn.Close()
	updates, cancel := s.status.Subscribe()
	defer cancel()
	for outcome := range updates {
		msg, err := json.Marshal(common.StatusUpdate{
			Outcome: int(outcome),
			Status:  outcome.String(),
		})
		if err != nil {
			return
		}
		if err := websocket.Message.Send(conn, string(msg)); err != nil {
			return
		}
	}
}

func (s *WebServer) addr() string {
	if s.listenAll {
		return fmt.Sprintf(":%d", s.port)
	}
	return fmt.Sprintf("127.0.0.1:%d", s.port)
}

func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:     s.addr(),
		Handler:  s.handler(),
		ErrorLog: logger.ToStdLogger(s.l),
	}
	s.mu.Unlock()

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server and the RPC bridge.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rpc.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
