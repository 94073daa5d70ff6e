package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/pkg/blocklib"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Port != DEF_PORT {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.Transport != string(blocklib.TransportCoordinator) {
		t.Errorf("Transport = %s", cfg.Transport)
	}
	if cfg.CheckSchedule != defCheckSchedule {
		t.Errorf("CheckSchedule = %s", cfg.CheckSchedule)
	}
	if cfg.Pipeline.WatchInterval != Duration(2*time.Second) {
		t.Errorf("WatchInterval = %v", cfg.Pipeline.WatchInterval)
	}
	if cfg.Pipeline.FetchRetries != blocklib.DEF_MAX_RETRIES {
		t.Errorf("FetchRetries = %d", cfg.Pipeline.FetchRetries)
	}
	if cfg.Log.MaxSizeMB != 10 || cfg.Log.MaxBackups != 3 {
		t.Errorf("log rotation defaults = %d/%d", cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	}
	if cfg.DataDir == "" || cfg.Log.File == "" {
		t.Error("path defaults missing")
	}
}

func TestResolverRetryConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Resolver.MaxRetries = 7
	cfg.Pipeline.FetchRetries = 2
	cfg.applyDefaults()

	rc := resolverRetryConfig(cfg)
	if rc.MaxRetries != 7 {
		t.Fatalf("resolver MaxRetries = %d, want the resolver's own budget", rc.MaxRetries)
	}
	if rc.BaseDelay != blocklib.DEF_BASE_DELAY || rc.MaxDelay != blocklib.DEF_MAX_DELAY {
		t.Fatalf("resolver delays = %v/%v", rc.BaseDelay, rc.MaxDelay)
	}
}

func TestConfigYAMLParsing(t *testing.T) {
	raw := `
data_dir: /var/lib/blocklistd
transport: platform
check_schedule: "0 3 * * *"
port: 4000
resolver:
  endpoint: https://authority.example/latest
  app_version: 2.0.0
rpc:
  secret: hunter2
  listen_all: true
pipeline:
  watch_interval: 5s
  watch_retries: 10
artifacts:
  local:
    - source_url: https://authority.example/hosts
      file_name: hosts.txt
  remote:
    - source_url: https://authority.example/remote
      file_name: remote.txt
  bogus:
    - source_url: https://authority.example/x
      file_name: x
`
	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(raw), cfg); err != nil {
		t.Fatal(err)
	}
	cfg.applyDefaults()

	if cfg.DataDir != "/var/lib/blocklistd" || cfg.Transport != "platform" || cfg.Port != 4000 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Resolver.Endpoint != "https://authority.example/latest" {
		t.Fatalf("resolver endpoint = %s", cfg.Resolver.Endpoint)
	}
	if !cfg.RPC.ListenAll || cfg.RPC.Secret != "hunter2" {
		t.Fatalf("rpc = %+v", cfg.RPC)
	}
	if cfg.Pipeline.WatchInterval != Duration(5*time.Second) || cfg.Pipeline.WatchRetries != 10 {
		t.Fatalf("pipeline = %+v", cfg.Pipeline)
	}

	d := cfg.Descriptors()
	if len(d) != 2 {
		t.Fatalf("descriptors = %v (unknown class must be skipped)", d)
	}
	if d[blocklib.ClassLocal][0].FileName != "hosts.txt" {
		t.Fatalf("local descriptors = %v", d[blocklib.ClassLocal])
	}
}

func TestLoadConfigReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	oldConfig := blocklib.ConfigDir
	if err := blocklib.SetConfigDir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = blocklib.SetConfigDir(oldConfig) })

	content := "port: 5000\nrpc:\n  secret: from-file\n"
	if err := os.WriteFile(filepath.Join(dir, defConfigFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(common.RPCSecretEnv, "from-env")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 5000 {
		t.Fatalf("Port = %d", cfg.Port)
	}
	if cfg.RPC.Secret != "from-env" {
		t.Fatalf("Secret = %s (env must override file)", cfg.RPC.Secret)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()
	oldConfig := blocklib.ConfigDir
	if err := blocklib.SetConfigDir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = blocklib.SetConfigDir(oldConfig) })
	t.Setenv(common.RPCSecretEnv, "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != DEF_PORT {
		t.Fatalf("Port = %d, want default", cfg.Port)
	}
}
