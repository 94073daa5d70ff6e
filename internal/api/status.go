package api

import (
	"encoding/json"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/internal/server"
)

func (s *Api) statusHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	res, err := s.Status()
	return common.UPDATE_STATUS, res, err
}
