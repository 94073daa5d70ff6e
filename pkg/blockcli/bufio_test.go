package blockcli

import (
	"bytes"
	"net"
	"testing"

	"github.com/blocklistd/blocklistd/common"
)

func TestFrameRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	payload := []byte(`{"ok":true}`)
	done := make(chan error, 1)
	go func() {
		done <- write(a, payload)
	}()

	got, err := read(b)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if werr := <-done; werr != nil {
		t.Fatalf("write: %v", werr)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip = %q", got)
	}
}

func TestWriteRejectsOversizedPayload(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	big := make([]byte, common.MaxMessageSize+1)
	if err := write(a, big); err == nil {
		t.Fatal("write must reject payloads above the size limit")
	}
}

func TestReadRejectsOversizedHeader(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		_, _ = a.Write(intToBytes(uint32(common.MaxMessageSize) + 1))
	}()
	if _, err := read(b); err == nil {
		t.Fatal("read must reject frames above the size limit")
	}
}
