package blockcli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blocklistd/blocklistd/common"
)

// Handler processes one broadcast update from the daemon.
type Handler interface {
	Handle(json.RawMessage) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(json.RawMessage) error

func (f HandlerFunc) Handle(m json.RawMessage) error { return f(m) }

// Dispatcher routes broadcast updates to handlers keyed by update type.
type Dispatcher struct {
	Handlers map[common.UpdateType]Handler
}

// ErrDisconnect stops the Listen loop without reporting an error.
var ErrDisconnect error = errors.New("disconnect")

func (d *Dispatcher) process(buf []byte) error {
	var res Response
	if err := json.Unmarshal(buf, &res); err != nil {
		return fmt.Errorf("failed to parse (%s): '%s'", err.Error(), string(buf))
	}
	if !res.Ok {
		return errors.New(res.Error)
	}
	if h, ok := d.Handlers[res.Update.Type]; ok {
		return h.Handle(res.Update.Message)
	}
	fmt.Println(string(res.Update.Message))
	return nil
}

// Handle installs a handler for one update type.
func (d *Dispatcher) Handle(utype common.UpdateType, h Handler) {
	if d.Handlers == nil {
		d.Handlers = make(map[common.UpdateType]Handler)
	}
	d.Handlers[utype] = h
}
