package common

// UpdateType identifies a daemon method on the socket protocol.
type UpdateType string

const (
	UPDATE_CHECK    UpdateType = "check"
	UPDATE_DOWNLOAD UpdateType = "download"
	UPDATE_CANCEL   UpdateType = "cancel"
	UPDATE_STATUS   UpdateType = "status"
	UPDATE_WATCH    UpdateType = "watch"
	UPDATE_VERSIONS UpdateType = "versions"
	UPDATE_FLUSH    UpdateType = "flush"
)

// StatusTopic is the pool topic that status updates are broadcast on.
const StatusTopic = "status"

// MaxMessageSize caps a single framed message on the socket protocol.
const MaxMessageSize = 8 * 1024 * 1024
