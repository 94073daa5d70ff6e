package server

import (
	"encoding/json"
	"testing"

	"github.com/blocklistd/blocklistd/common"
)

func TestMakeResult(t *testing.T) {
	b := MakeResult(common.UPDATE_STATUS, &common.StatusUpdate{Outcome: 3, Status: "checking"})
	var res Response
	if err := json.Unmarshal(b, &res); err != nil {
		t.Fatal(err)
	}
	if !res.Ok {
		t.Fatal("result must be ok")
	}
	if res.Update == nil || res.Update.Type != common.UPDATE_STATUS {
		t.Fatalf("update = %+v", res.Update)
	}
	msg, _ := json.Marshal(res.Update.Message)
	var su common.StatusUpdate
	if err := json.Unmarshal(msg, &su); err != nil {
		t.Fatal(err)
	}
	if su.Outcome != 3 || su.Status != "checking" {
		t.Fatalf("status update = %+v", su)
	}
}

func TestCreateError(t *testing.T) {
	var res Response
	if err := json.Unmarshal(CreateError("boom"), &res); err != nil {
		t.Fatal(err)
	}
	if res.Ok || res.Error != "boom" {
		t.Fatalf("error response = %+v", res)
	}

	if err := json.Unmarshal(InitError(nil), &res); err != nil {
		t.Fatal(err)
	}
	if res.Ok || res.Error == "" {
		t.Fatalf("nil error response = %+v", res)
	}
}

func TestParseRequest(t *testing.T) {
	r, err := ParseRequest([]byte(`{"method":"download","message":{"class":"remote","force":true}}`))
	if err != nil {
		t.Fatal(err)
	}
	if r.Method != common.UPDATE_DOWNLOAD {
		t.Fatalf("method = %s", r.Method)
	}
	var p common.DownloadParams
	if err := json.Unmarshal(r.Message, &p); err != nil {
		t.Fatal(err)
	}
	if p.Class != "remote" || !p.Force {
		t.Fatalf("params = %+v", p)
	}

	if _, err := ParseRequest([]byte("not json")); err == nil {
		t.Fatal("malformed request must fail to parse")
	}
}
