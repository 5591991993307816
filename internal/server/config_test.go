package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "does-not-exist.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Server.StartingStack)
	assert.Equal(t, 10, cfg.Server.SmallBlind)
	assert.Equal(t, 20, cfg.Server.BigBlind)
	require.NoError(t, cfg.Validate())
}

func TestLoadServerConfigFillsMissingFieldsFromDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "holdem-server.hcl")
	const hcl = `
server {
  port        = 9999
  small_blind = 5
  big_blind   = 10
}
`
	require.NoError(t, os.WriteFile(path, []byte(hcl), 0644))

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Address) // filled from defaults
	assert.Equal(t, 9999, cfg.Server.Port)            // from file
	assert.Equal(t, 5, cfg.Server.SmallBlind)
	assert.Equal(t, 10, cfg.Server.BigBlind)
	assert.Equal(t, 1000, cfg.Server.StartingStack) // filled from defaults
}

func TestServerConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*ServerConfig) {}},
		{name: "port too low", mutate: func(c *ServerConfig) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *ServerConfig) { c.Server.Port = 70000 }, wantErr: true},
		{name: "zero small blind", mutate: func(c *ServerConfig) { c.Server.SmallBlind = 0 }, wantErr: true},
		{name: "big blind not greater", mutate: func(c *ServerConfig) { c.Server.BigBlind = c.Server.SmallBlind }, wantErr: true},
		{name: "starting stack too small", mutate: func(c *ServerConfig) { c.Server.StartingStack = 10 }, wantErr: true},
		{name: "starting stack too large", mutate: func(c *ServerConfig) { c.Server.StartingStack = 2_000_000 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetServerAddress(t *testing.T) {
	t.Parallel()

	cfg := DefaultServerConfig()
	cfg.Server.Address = "0.0.0.0"
	cfg.Server.Port = 4000
	assert.Equal(t, "0.0.0.0:4000", cfg.GetServerAddress())
}
