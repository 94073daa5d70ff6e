package server

import (
	"encoding/json"

	"github.com/blocklistd/blocklistd/common"
)

// HandlerFunc is the signature of a socket method handler. It receives the
// caller's connection, the broadcast pool and the raw request body, and
// returns the update type and payload of the response.
type HandlerFunc func(
	conn *SyncConn,
	pool *Pool,
	body json.RawMessage,
) (
	common.UpdateType,
	any,
	error,
)
