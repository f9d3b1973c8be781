package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHolder(t *testing.T) {
	cfg := DefaultConfig()
	h := NewHolder(cfg, "/etc/resourcer/config.toml")

	require.NotNil(t, h)
	assert.Equal(t, cfg, h.Config())
	assert.Equal(t, "/etc/resourcer/config.toml", h.Path())
}

func TestHolder_Update(t *testing.T) {
	cfg1 := DefaultConfig()
	h := NewHolder(cfg1, "/tmp/config.toml")

	cfg2 := DefaultConfig()
	cfg2.Server.ListenAddr = "0.0.0.0:9090"

	h.Update(cfg2)

	got := h.Config()
	assert.Equal(t, cfg2, got)
	assert.NotEqual(t, cfg1, got)
}

func TestHolder_PathImmutable(t *testing.T) {
	h := NewHolder(DefaultConfig(), "/original/path.toml")

	assert.Equal(t, "/original/path.toml", h.Path())
	assert.Equal(t, "/original/path.toml", h.Path())
}
