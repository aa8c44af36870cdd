package main

import (
	"context"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/farkle/cmd/farkle/shared"
	"github.com/lox/farkle/internal/game"
	"github.com/lox/farkle/internal/room"
	"github.com/lox/farkle/internal/server"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Addr        string `kong:"help='Listen address, overrides config'"`
	Config      string `kong:"default='farkle.hcl',help='Path to HCL config file'"`
	Debug       bool   `kong:"help='Enable debug logging'"`
	Seed        *int64 `kong:"help='Deterministic RNG seed for dice (optional)'"`
	TargetScore int    `kong:"help='Winning score, overrides config'"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr == "" {
		c.Addr = cfg.ListenAddress()
	}
	if c.TargetScore != 0 {
		cfg.Game.TargetScore = c.TargetScore
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !c.Debug {
		shared.ParseLevel(logger, cfg.Server.LogLevel)
	}

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		logger.Info("using random seed", "seed", seed)
	}

	rules := game.Rules{
		TargetScore:  cfg.Game.TargetScore,
		OpeningScore: cfg.Game.OpeningScore,
	}

	registry := room.NewRegistry(rules, seed, logger)
	s := server.NewServer(logger)
	service := server.NewGameService(registry, s, quartz.NewReal(), cfg.TurnTimeout(), logger)
	s.SetGameService(service)

	logger.Info("starting farkle server",
		"address", c.Addr,
		"target_score", rules.TargetScore,
		"opening_score", rules.OpeningScore,
		"turn_timeout", cfg.TurnTimeout(),
	)

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.Start(c.Addr); err != nil {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
