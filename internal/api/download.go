package api

import (
	"encoding/json"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/internal/server"
)

func (s *Api) downloadHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.DownloadParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_DOWNLOAD, nil, err
	}
	res, err := s.Download(&m)
	return common.UPDATE_DOWNLOAD, res, err
}
