package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/blocklistd/blocklistd/common"
	"github.com/blocklistd/blocklistd/pkg/blocklib"
)

const (
	DEF_PORT         = 3849
	DEF_TIMEOUT      = 30 * time.Second
	defConfigFile    = "blocklistd.yaml"
	defCheckSchedule = "0 */6 * * *"
	// scheduleOff disables the periodic check trigger.
	scheduleOff = "off"
)

// Config is the daemon configuration, read from blocklistd.yaml in the
// configuration directory. Every field has a working default so the daemon
// runs without a config file.
type Config struct {
	DataDir       string `yaml:"data_dir"`
	Transport     string `yaml:"transport"`
	CheckSchedule string `yaml:"check_schedule"`
	Port          int    `yaml:"port"`

	Resolver struct {
		Endpoint   string `yaml:"endpoint"`
		AppVersion string `yaml:"app_version"`
		MaxRetries int    `yaml:"max_retries"`
	} `yaml:"resolver"`

	RPC struct {
		Secret    string `yaml:"secret"`
		ListenAll bool   `yaml:"listen_all"`
	} `yaml:"rpc"`

	Log struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`

	Pipeline struct {
		WatchInterval Duration `yaml:"watch_interval"`
		WatchRetries  int      `yaml:"watch_retries"`
		FetchRetries  int      `yaml:"fetch_retries"`
	} `yaml:"pipeline"`

	Artifacts map[string][]blocklib.Descriptor `yaml:"artifacts"`
}

// Duration accepts YAML values like "5s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// LoadConfig reads the configuration file if present, loads a .env file
// from the working directory, and applies environment overrides and
// defaults.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	path := filepath.Join(blocklib.ConfigDir, defConfigFile)
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if secret := os.Getenv(common.RPCSecretEnv); secret != "" {
		cfg.RPC.Secret = secret
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = blocklib.DataDir
	}
	if c.Transport == "" {
		c.Transport = string(blocklib.TransportCoordinator)
	}
	if c.CheckSchedule == "" {
		c.CheckSchedule = defCheckSchedule
	}
	if c.Port == 0 {
		c.Port = DEF_PORT
	}
	if c.Resolver.MaxRetries == 0 {
		c.Resolver.MaxRetries = blocklib.DEF_MAX_RETRIES
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(blocklib.ConfigDir, "blocklistd.log")
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Pipeline.WatchInterval == 0 {
		c.Pipeline.WatchInterval = Duration(2 * time.Second)
	}
	if c.Pipeline.WatchRetries == 0 {
		c.Pipeline.WatchRetries = 300
	}
	if c.Pipeline.FetchRetries == 0 {
		c.Pipeline.FetchRetries = blocklib.DEF_MAX_RETRIES
	}
}

// Descriptors converts the configured artifact map onto typed classes.
func (c *Config) Descriptors() map[blocklib.ArtifactClass][]blocklib.Descriptor {
	out := make(map[blocklib.ArtifactClass][]blocklib.Descriptor, len(c.Artifacts))
	for name, files := range c.Artifacts {
		if class, err := blocklib.ParseClass(name); err == nil {
			out[class] = files
		}
	}
	return out
}
