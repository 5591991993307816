package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration. Unlike the
// teacher's multi-table/bot schema, this table engine hosts exactly one
// table (SPEC_FULL.md §1), so the table's own settings live directly under
// the `server` block rather than in a `table`/`bot` block list.
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
}

// ServerSettings contains server-level and single-table configuration.
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	Port          int    `hcl:"port,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	LogFile       string `hcl:"log_file,optional"`
	StartingStack int    `hcl:"starting_stack,optional"`
	SmallBlind    int    `hcl:"small_blind,optional"`
	BigBlind      int    `hcl:"big_blind,optional"`
	StaticDir     string `hcl:"static_dir,optional"`
}

// DefaultServerConfig returns default server configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:       "localhost",
			Port:          8080,
			LogLevel:      "info",
			LogFile:       "",
			StartingStack: 1000,
			SmallBlind:    10,
			BigBlind:      20,
			StaticDir:     "web",
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file, falling back
// to DefaultServerConfig when filename does not exist.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultServerConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Server.StartingStack == 0 {
		config.Server.StartingStack = defaults.Server.StartingStack
	}
	if config.Server.SmallBlind == 0 {
		config.Server.SmallBlind = defaults.Server.SmallBlind
	}
	if config.Server.BigBlind == 0 {
		config.Server.BigBlind = defaults.Server.BigBlind
	}
	if config.Server.StaticDir == "" {
		config.Server.StaticDir = defaults.Server.StaticDir
	}

	return &config, nil
}

// Validate validates the server configuration against SPEC_FULL.md §6's
// constraints (starting stack in [50, 1,000,000], blinds positive and
// ordered).
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if c.Server.BigBlind <= c.Server.SmallBlind {
		return fmt.Errorf("big blind must be greater than small blind")
	}
	if c.Server.StartingStack < 50 || c.Server.StartingStack > 1_000_000 {
		return fmt.Errorf("starting stack must be between 50 and 1,000,000")
	}
	return nil
}

// GetServerAddress returns the full server address (host:port).
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
