// Package server exposes the daemon's two client surfaces: the
// length-prefixed JSON socket protocol used by the CLI, and the HTTP/
// WebSocket endpoints carrying JSON-RPC 2.0 and the status stream.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/pkg/blocklib"
	"github.com/blocklistd/blocklistd/pkg/logger"
)

// Server accepts CLI connections over a Unix socket and dispatches framed
// requests to registered handlers. It also owns the web server carrying
// the JSON-RPC bridge and status WebSocket.
type Server struct {
	log      logger.Logger
	pool     *Pool
	ws       *WebServer
	handler  map[common.UpdateType]HandlerFunc
	port     int
	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a server. The Unix socket is the primary transport,
// falling back to TCP on port when socket creation fails; the web server
// binds port+1.
func NewServer(l logger.Logger, core Updater, cfg *RPCConfig, status *blocklib.StatusPublisher, port int) *Server {
	pool := NewPool()
	return &Server{
		log:     l,
		pool:    pool,
		handler: make(map[common.UpdateType]HandlerFunc),
		port:    port,
		ws:      NewWebServer(l, core, cfg, status, port+1),
	}
}

// RegisterHandler binds a handler to a socket method.
func (s *Server) RegisterHandler(method common.UpdateType, handler HandlerFunc) {
	s.handler[method] = handler
}

// Pool returns the broadcast pool shared with the registered handlers.
func (s *Server) Pool() *Pool {
	return s.pool
}

// Notifier returns the JSON-RPC push notifier of the web surface.
func (s *Server) Notifier() *RPCNotifier {
	return s.ws.notifier
}

func (s *Server) createListener() (net.Listener, error) {
	socketPath := socketPath()
	_ = os.Remove(socketPath)
	l, err := net.ListenUnix("unix", &net.UnixAddr{
		Name: socketPath,
		Net:  "unix",
	})
	if err != nil {
		s.log.Warning("unix socket unavailable (%s), falling back to tcp", err.Error())
		tcpListener, tcpErr := net.Listen("tcp", fmt.Sprintf("localhost:%d", s.port))
		if tcpErr != nil {
			return nil, fmt.Errorf("error listening: %s", tcpErr.Error())
		}
		return tcpListener, nil
	}
	_ = os.Chmod(socketPath, 0o766)
	return l, nil
}

// Start begins accepting connections and blocks until ctx is cancelled.
// Each connection is served on its own goroutine.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.ws.Start(); err != nil {
			s.log.Error("web server: %v", err)
		}
	}()

	l, err := s.createListener()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			s.log.Warning("accept: %v", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

// Shutdown closes the listener, stops the web server and removes the
// socket file.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Warning("close listener: %v", err)
		}
		s.listener = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.ws.Shutdown(shutdownCtx); err != nil {
		s.log.Warning("shutdown web server: %v", err)
	}

	if err := os.Remove(socketPath()); err != nil && !os.IsNotExist(err) {
		s.log.Warning("remove socket file: %v", err)
	}
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	sconn := NewSyncConn(conn)
	defer func() {
		s.pool.Unsubscribe(common.StatusTopic, sconn)
		conn.Close()
	}()
	for {
		buf, err := sconn.Read()
		if err != nil {
			if err != io.EOF {
				s.log.Warning("read: %v", err)
			}
			break
		}
		if err := s.handlerWrapper(sconn, buf); err != nil {
			s.log.Warning("handle: %v", err)
			break
		}
	}
}

func (s *Server) handlerWrapper(sconn *SyncConn, b []byte) error {
	req, err := ParseRequest(b)
	if err != nil {
		return fmt.Errorf("error parsing request: %s", err.Error())
	}
	rHandler, ok := s.handler[req.Method]
	if !ok {
		if err := sconn.Write(CreateError("unknown method: " + string(req.Method))); err != nil {
			return fmt.Errorf("error writing response: %s", err.Error())
		}
		return nil
	}
	utype, msg, err := rHandler(sconn, s.pool, req.Message)
	if err != nil {
		if err := sconn.Write(InitError(err)); err != nil {
			return fmt.Errorf("error writing response: %s", err.Error())
		}
		return nil
	}
	if err := sconn.Write(MakeResult(utype, msg)); err != nil {
		return fmt.Errorf("error writing response: %s", err.Error())
	}
	return nil
}
