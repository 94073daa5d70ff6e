package server

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/blocklistd/blocklistd/common"
)

// JSON-RPC error codes used by the update methods.
const (
	codeUnknownClass  = jrpc2.Code(-32001)
	codeInvalidParams = jrpc2.Code(-32602)
)

// Updater is the operational surface the RPC methods and socket handlers
// call into. Implemented by the daemon's api layer.
type Updater interface {
	Check(ctx context.Context, p *common.CheckParams) (*common.CheckResponse, error)
	Download(p *common.DownloadParams) (*common.DownloadResponse, error)
	Cancel(p *common.CancelParams) (*common.CancelResponse, error)
	Status() (*common.StatusResponse, error)
	Versions() (*common.VersionsResponse, error)
}

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means RPC disabled)
	ListenAll bool   // If true, bind to 0.0.0.0 instead of 127.0.0.1
	Version   string // Daemon version
}

// RPCServer exposes the update methods over a JSON-RPC 2.0 HTTP bridge and
// per-connection WebSocket servers.
type RPCServer struct {
	bridge  jhttp.Bridge
	methods handler.Map
	secret  string
	version string
	core    Updater
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version string `json:"version"`
}

// NewRPCServer creates an RPCServer with its method map and HTTP bridge.
func NewRPCServer(cfg *RPCConfig, core Updater) *RPCServer {
	rs := &RPCServer{
		secret:  cfg.Secret,
		version: cfg.Version,
		core:    core,
	}
	rs.methods = handler.Map{
		"system.getVersion": handler.New(rs.systemGetVersion),
		"update.check":      handler.New(rs.updateCheck),
		"update.download":   handler.New(rs.updateDownload),
		"update.cancel":     handler.New(rs.updateCancel),
		"update.status":     handler.New(rs.updateStatus),
		"update.versions":   handler.New(rs.updateVersions),
	}
	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{Version: rs.version}, nil
}

func (rs *RPCServer) updateCheck(ctx context.Context, p *common.CheckParams) (*common.CheckResponse, error) {
	if p.Class == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: class"}
	}
	res, err := rs.core.Check(ctx, p)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeUnknownClass, Message: err.Error()}
	}
	return res, nil
}

func (rs *RPCServer) updateDownload(_ context.Context, p *common.DownloadParams) (*common.DownloadResponse, error) {
	if p.Class == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: class"}
	}
	res, err := rs.core.Download(p)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeUnknownClass, Message: err.Error()}
	}
	return res, nil
}

func (rs *RPCServer) updateCancel(_ context.Context, p *common.CancelParams) (*common.CancelResponse, error) {
	if p.Class == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: class"}
	}
	res, err := rs.core.Cancel(p)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeUnknownClass, Message: err.Error()}
	}
	return res, nil
}

func (rs *RPCServer) updateStatus(_ context.Context) (*common.StatusResponse, error) {
	return rs.core.Status()
}

func (rs *RPCServer) updateVersions(_ context.Context) (*common.VersionsResponse, error) {
	return rs.core.Versions()
}

// Serve starts a jrpc2 server for one WebSocket channel. Push is enabled
// so the notifier can send status.changed notifications.
func (rs *RPCServer) Serve(ch channel.Channel) *jrpc2.Server {
	return jrpc2.NewServer(rs.methods, &jrpc2.ServerOptions{AllowPush: true}).Start(ch)
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
