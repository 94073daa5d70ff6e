package api

import (
	"encoding/json"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/internal/server"
)

// watchHandler subscribes the connection to the status broadcast topic.
// The reply carries the current status; every later change arrives as a
// further UPDATE_STATUS frame on the same connection.
func (s *Api) watchHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	pool.Subscribe(common.StatusTopic, sconn)
	last := s.status.Last()
	return common.UPDATE_WATCH, &common.StatusUpdate{
		Outcome: int(last),
		Status:  last.String(),
	}, nil
}
