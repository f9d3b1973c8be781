package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig     = "RESOURCER_CONFIG"
	EnvDataDir    = "RESOURCER_DATA_DIR"
	EnvListenAddr = "RESOURCER_LISTEN_ADDR"
	EnvLogLevel   = "RESOURCER_LOG_LEVEL"
)

// EnvOverrides holds values derived from environment variables. These are
// resolved by ReadEnvOverrides; callers apply the relevant fields on top of
// the config-file layer.
type EnvOverrides struct {
	ConfigPath string // RESOURCER_CONFIG: override config file path
	DataDir    string // RESOURCER_DATA_DIR: data directory override
	ListenAddr string // RESOURCER_LISTEN_ADDR: HTTP listen address override
	LogLevel   string // RESOURCER_LOG_LEVEL: log level override
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify the Config; callers apply the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		DataDir:    os.Getenv(EnvDataDir),
		ListenAddr: os.Getenv(EnvListenAddr),
		LogLevel:   os.Getenv(EnvLogLevel),
	}
}

// Apply overlays non-empty env overrides onto cfg in place.
func (e EnvOverrides) Apply(cfg *Config) {
	if e.DataDir != "" {
		cfg.Server.DataDir = e.DataDir
	}

	if e.ListenAddr != "" {
		cfg.Server.ListenAddr = e.ListenAddr
	}

	if e.LogLevel != "" {
		cfg.Logging.Level = e.LogLevel
	}
}
