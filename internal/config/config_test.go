package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, Validate(cfg))
}

func TestDefaultConfig_Fields(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, defaultListenAddr, cfg.Server.ListenAddr)
	assert.Equal(t, defaultBatchSize, cfg.Scan.BatchSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Logging.Format)
}
