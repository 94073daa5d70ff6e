package blockcli

import (
	"os"
	"path/filepath"

	"github.com/blocklistd/blocklistd/common"
)

func socketPath() string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "blocklistd.sock")
}
