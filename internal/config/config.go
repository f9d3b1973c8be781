// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for resourcer.
package config

// Config is the top-level process configuration. Unlike the catalog's
// per-source settings (hidden folders, tag vocabulary, subfolder order),
// which live in the SQLite config table and can change at runtime, this
// struct holds the fixed, process-level settings read once at startup.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Scan    ScanConfig    `toml:"scan"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
	DataDir    string `toml:"data_dir"`
}

// ScanConfig controls background scanning behavior.
type ScanConfig struct {
	BatchSize       int    `toml:"batch_size"`
	StaleAfter      string `toml:"stale_after"`
	WatchFilesystem bool   `toml:"watch_filesystem"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}
