package api

import (
	"encoding/json"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/internal/server"
)

// versionsHandler reports the installed and latest known timestamps of
// every artifact class.
func (s *Api) versionsHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	res, err := s.Versions()
	return common.UPDATE_VERSIONS, res, err
}
