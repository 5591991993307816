package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdem-table/internal/server"
)

var CLI struct {
	Config        string `short:"c" long:"config" default:"holdem-server.hcl" help:"Path to HCL configuration file"`
	Addr          string `short:"a" long:"addr" help:"Server address to bind to (overrides config, host:port)"`
	LogLevel      string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	LogFile       string `short:"f" long:"log-file" help:"Log file path (overrides config)"`
	SmallBlind    int    `long:"small-blind" help:"Small blind amount (overrides config)"`
	BigBlind      int    `long:"big-blind" help:"Big blind amount (overrides config)"`
	StartingStack int    `long:"starting-stack" help:"Starting chip stack (overrides config)"`
	Seed          int64  `short:"s" long:"seed" help:"Random seed for deterministic shuffles (0 = random)"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	if CLI.Addr != "" {
		host, portStr, err := net.SplitHostPort(CLI.Addr)
		if err != nil {
			fmt.Printf("Invalid --addr: %v\n", err)
			ctx.Exit(1)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			fmt.Printf("Invalid --addr port: %v\n", err)
			ctx.Exit(1)
		}
		cfg.Server.Address = host
		cfg.Server.Port = port
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.LogFile != "" {
		cfg.Server.LogFile = CLI.LogFile
	}
	if CLI.SmallBlind != 0 {
		cfg.Server.SmallBlind = CLI.SmallBlind
	}
	if CLI.BigBlind != 0 {
		cfg.Server.BigBlind = CLI.BigBlind
	}
	if CLI.StartingStack != 0 {
		cfg.Server.StartingStack = CLI.StartingStack
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger, err := newLogger(cfg.Server.LogFile, cfg.Server.LogLevel)
	if err != nil {
		fmt.Printf("Error setting up logging: %v\n", err)
		ctx.Exit(1)
	}

	logger.Info("starting holdem table server",
		"addr", cfg.GetServerAddress(),
		"smallBlind", cfg.Server.SmallBlind,
		"bigBlind", cfg.Server.BigBlind,
		"startingStack", cfg.Server.StartingStack)

	srv := server.NewServer(cfg, logger, CLI.Seed, quartz.NewReal())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdown
		logger.Info("shutting down server")
		_ = srv.Stop()
	}()

	if err := srv.Start(cfg.GetServerAddress()); err != nil {
		logger.Error("server stopped", "error", err)
	}
}

// newLogger builds a charmbracelet/log logger writing to stderr, optionally
// tee'd to a log file (SPEC_FULL.md §10). charmbracelet/log detects a
// non-TTY io.Writer and drops ANSI styling on its own, so a plain
// io.MultiWriter is enough without the teacher's separate ANSI-stripping
// writer.
func newLogger(logFile, level string) (*log.Logger, error) {
	target := io.Writer(os.Stderr)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		target = io.MultiWriter(os.Stderr, f)
	}

	logger := log.New(target)

	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	return logger, nil
}
