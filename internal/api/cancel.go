package api

import (
	"encoding/json"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/internal/server"
)

func (s *Api) cancelHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.CancelParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_CANCEL, nil, err
	}
	res, err := s.Cancel(&m)
	return common.UPDATE_CANCEL, res, err
}
