package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vsinha/factorysim/pkg/infrastructure/export"
)

// ExportConfig holds configuration for snapshot export
type ExportConfig struct {
	Days   int    // days to advance before exporting
	Output string // file to write, stdout when empty
	Resume string
	Out    io.Writer
}

// ExportCommand writes the state of a simulation as a JSON snapshot
type ExportCommand struct {
	runtime *Runtime
	config  ExportConfig
}

func NewExportCommand(runtime *Runtime, config ExportConfig) *ExportCommand {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	return &ExportCommand{runtime: runtime, config: config}
}

// Execute runs the export command
func (c *ExportCommand) Execute(ctx context.Context) error {
	if c.config.Days < 0 {
		return fmt.Errorf("validation error: days cannot be negative, got %d", c.config.Days)
	}

	session, err := c.runtime.Open(ctx, c.config.Resume)
	if err != nil {
		return err
	}
	defer session.Close()

	for range c.config.Days {
		if _, err := session.Sim.AdvanceDay(ctx); err != nil {
			return fmt.Errorf("error advancing simulation: %w", err)
		}
	}

	if c.config.Output != "" {
		return saveSnapshot(ctx, session.Sim, c.config.Output)
	}
	snap, err := session.Sim.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to export simulation: %w", err)
	}
	return export.Write(c.config.Out, snap)
}
