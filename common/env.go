// Package common provides shared types and constants used across the
// blocklistd client-server communication layer.
package common

// Environment variable names for configuration.
const (
	// SocketPathEnv is the environment variable for a custom socket path.
	SocketPathEnv = "BLOCKLISTD_SOCKET_PATH"

	// ConfigDirEnv is the environment variable for a custom config directory.
	ConfigDirEnv = "BLOCKLISTD_CONFIG_DIR"

	// RPCSecretEnv is the environment variable holding the JSON-RPC auth token.
	RPCSecretEnv = "BLOCKLISTD_RPC_SECRET"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "BLOCKLISTD_DEBUG"
)
