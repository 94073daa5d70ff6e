package api

import (
	"context"
	"encoding/json"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/internal/server"
)

func (s *Api) checkHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.CheckParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_CHECK, nil, err
	}
	res, err := s.Check(context.Background(), &m)
	return common.UPDATE_CHECK, res, err
}
