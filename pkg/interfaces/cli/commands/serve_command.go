package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/factorysim/pkg/application/services/simulation"
	api "github.com/vsinha/factorysim/pkg/interfaces/http"
)

const shutdownTimeout = 10 * time.Second

// ServeConfig holds configuration for the HTTP server
type ServeConfig struct {
	Resume string // snapshot to continue from
}

// ServeCommand exposes one simulation over REST and a websocket day stream
type ServeCommand struct {
	runtime *Runtime
	config  ServeConfig
}

func NewServeCommand(runtime *Runtime, config ServeConfig) *ServeCommand {
	return &ServeCommand{runtime: runtime, config: config}
}

// Execute serves until ctx is cancelled, then shuts the server down gracefully
func (c *ServeCommand) Execute(ctx context.Context) error {
	log := c.runtime.Log
	hub := api.NewHub(log)

	session, err := c.runtime.Open(ctx, c.config.Resume, simulation.WithObserver(hub))
	if err != nil {
		return err
	}
	defer session.Close()

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go hub.Run(hubCtx)

	app := api.NewApp(api.RouterDeps{
		Simulation: session.Sim,
		Hub:        hub,
		AppName:    c.runtime.Config.App.Name,
		Log:        log,
	})

	addr := c.runtime.Config.HTTP.Addr()
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()
	log.Info().
		Str("addr", addr).
		Str("run_id", session.Sim.RunID().String()).
		Msg("http server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("http server stopped")
	return nil
}
