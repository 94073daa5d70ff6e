package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blocklistd/blocklistd/common"
)

type fakeUpdater struct {
	checkErr  error
	cancelled bool
}

func (f *fakeUpdater) Check(_ context.Context, p *common.CheckParams) (*common.CheckResponse, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return &common.CheckResponse{Class: p.Class, Outcome: 4, Latest: 200, Installed: 100}, nil
}

func (f *fakeUpdater) Download(p *common.DownloadParams) (*common.DownloadResponse, error) {
	return &common.DownloadResponse{Class: p.Class, Started: true, Target: 200}, nil
}

func (f *fakeUpdater) Cancel(p *common.CancelParams) (*common.CancelResponse, error) {
	f.cancelled = true
	return &common.CancelResponse{Class: p.Class, Cancelled: true}, nil
}

func (f *fakeUpdater) Status() (*common.StatusResponse, error) {
	return &common.StatusResponse{Outcome: 3, Status: "downloading"}, nil
}

func (f *fakeUpdater) Versions() (*common.VersionsResponse, error) {
	return &common.VersionsResponse{Classes: []common.ClassVersion{
		{Class: "local", Installed: 100, Latest: 200},
	}}, nil
}

// rpcCall posts a JSON-RPC request to the handler and decodes the reply.
func rpcCall(t *testing.T, h http.Handler, method string, params any) map[string]any {
	t.Helper()
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		reqBody["params"] = params
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	resp := rr.Result()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var result map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			t.Fatalf("unmarshal response: %v (body: %s)", err, body)
		}
	}
	return result
}

func newTestRPCServer(core Updater) *RPCServer {
	return NewRPCServer(&RPCConfig{Secret: "test-secret", Version: "1.2.3"}, core)
}

func TestRPCSystemGetVersion(t *testing.T) {
	rs := newTestRPCServer(&fakeUpdater{})
	defer rs.Close()

	res := rpcCall(t, rs.bridge, "system.getVersion", nil)
	result, _ := res["result"].(map[string]any)
	if result["version"] != "1.2.3" {
		t.Fatalf("version = %v", res)
	}
}

func TestRPCUpdateCheck(t *testing.T) {
	rs := newTestRPCServer(&fakeUpdater{})
	defer rs.Close()

	res := rpcCall(t, rs.bridge, "update.check", common.CheckParams{Class: "local"})
	result, _ := res["result"].(map[string]any)
	if result["class"] != "local" || result["outcome"] != float64(4) {
		t.Fatalf("check result = %v", res)
	}
}

func TestRPCUpdateCheckMissingClass(t *testing.T) {
	rs := newTestRPCServer(&fakeUpdater{})
	defer rs.Close()

	res := rpcCall(t, rs.bridge, "update.check", map[string]any{})
	errObj, _ := res["error"].(map[string]any)
	if errObj == nil || errObj["code"] != float64(codeInvalidParams) {
		t.Fatalf("missing class response = %v", res)
	}
}

func TestRPCUpdateCheckUnknownClass(t *testing.T) {
	rs := newTestRPCServer(&fakeUpdater{checkErr: errors.New("unknown artifact class")})
	defer rs.Close()

	res := rpcCall(t, rs.bridge, "update.check", common.CheckParams{Class: "bogus"})
	errObj, _ := res["error"].(map[string]any)
	if errObj == nil || errObj["code"] != float64(codeUnknownClass) {
		t.Fatalf("unknown class response = %v", res)
	}
}

func TestRPCUpdateDownloadAndCancel(t *testing.T) {
	core := &fakeUpdater{}
	rs := newTestRPCServer(core)
	defer rs.Close()

	res := rpcCall(t, rs.bridge, "update.download", common.DownloadParams{Class: "remote", Force: true})
	result, _ := res["result"].(map[string]any)
	if result["started"] != true || result["target"] != float64(200) {
		t.Fatalf("download result = %v", res)
	}

	res = rpcCall(t, rs.bridge, "update.cancel", common.CancelParams{Class: "remote"})
	result, _ = res["result"].(map[string]any)
	if result["cancelled"] != true || !core.cancelled {
		t.Fatalf("cancel result = %v", res)
	}
}

func TestRPCUpdateStatusAndVersions(t *testing.T) {
	rs := newTestRPCServer(&fakeUpdater{})
	defer rs.Close()

	res := rpcCall(t, rs.bridge, "update.status", nil)
	result, _ := res["result"].(map[string]any)
	if result["outcome"] != float64(3) || result["status"] != "downloading" {
		t.Fatalf("status result = %v", res)
	}

	res = rpcCall(t, rs.bridge, "update.versions", nil)
	result, _ = res["result"].(map[string]any)
	classes, _ := result["classes"].([]any)
	if len(classes) != 1 {
		t.Fatalf("versions result = %v", res)
	}
}

func TestRPCBridgeBehindAuth(t *testing.T) {
	rs := newTestRPCServer(&fakeUpdater{})
	defer rs.Close()
	h := requireToken("test-secret", rs.bridge)

	req := httptest.NewRequest(http.MethodPost, "/jsonrpc",
		bytes.NewReader([]byte(`{"jsonrpc":"2.0","method":"update.status","id":1}`)))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated bridge call status = %d", rr.Code)
	}
}
