package api

import (
	"encoding/json"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/internal/server"
)

// flushHandler prunes terminal job records from the scheduler's state.
func (s *Api) flushHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	return common.UPDATE_FLUSH, &common.FlushResponse{
		Removed: s.sched.Flush(),
	}, nil
}
