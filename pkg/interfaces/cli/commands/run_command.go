package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vsinha/factorysim/pkg/application/services/simulation"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/interfaces/cli/output"
)

// RunConfig holds configuration for a batch run
type RunConfig struct {
	Days         int
	Format       string // text, json or csv
	OutputDir    string
	Verbose      bool
	Resume       string // snapshot to continue from
	SaveSnapshot string // where to write the final state, skipped when empty
	Out          io.Writer
}

// RunCommand advances the simulation a fixed number of days and reports on them
type RunCommand struct {
	runtime *Runtime
	config  RunConfig
}

// NewRunCommand creates a new run command
func NewRunCommand(runtime *Runtime, config RunConfig) *RunCommand {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	return &RunCommand{runtime: runtime, config: config}
}

// Execute runs the simulation
func (c *RunCommand) Execute(ctx context.Context) error {
	if c.config.Days < 1 {
		return fmt.Errorf("validation error: days must be at least 1, got %d", c.config.Days)
	}

	var opts []simulation.Option
	if c.config.Verbose {
		c.printHeader()
		opts = append(opts, simulation.WithObserver(output.NewProgress(c.config.Out)))
	}

	session, err := c.runtime.Open(ctx, c.config.Resume, opts...)
	if err != nil {
		return err
	}
	defer session.Close()
	sim := session.Sim

	report := &output.Report{RunID: sim.RunID(), StartDate: sim.CurrentDate()}

	startTime := time.Now()
	for range c.config.Days {
		if err := ctx.Err(); err != nil {
			return err
		}
		day, err := sim.AdvanceDay(ctx)
		if err != nil {
			return fmt.Errorf("error advancing %s: %w", entities.FormatDate(sim.CurrentDate()), err)
		}
		report.Days = append(report.Days, day)
	}
	elapsed := time.Since(startTime)

	report.EndDate = sim.CurrentDate()
	if report.Inventory, err = sim.Inventory(ctx); err != nil {
		return fmt.Errorf("error reading inventory: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(c.config.Out, "✅ Simulated %d days in %v\n\n", len(report.Days), elapsed)
	}

	err = output.Generate(report, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		Elapsed:   elapsed,
		Out:       c.config.Out,
	})
	if err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.SaveSnapshot != "" {
		if err := saveSnapshot(ctx, sim, c.config.SaveSnapshot); err != nil {
			return err
		}
		if c.config.Verbose {
			fmt.Fprintf(c.config.Out, "💾 Snapshot written to %s\n", c.config.SaveSnapshot)
		}
	}

	if c.config.Verbose {
		fmt.Fprintln(c.config.Out, "🏁 Simulation complete!")
	}
	return nil
}

func (c *RunCommand) printHeader() {
	cfg := c.runtime.Config
	fmt.Fprintf(c.config.Out, "🚀 Factory Simulator\n")
	if cfg.Sim.ScenarioDir != "" {
		fmt.Fprintf(c.config.Out, "Scenario: %s\n", cfg.Sim.ScenarioDir)
	} else {
		fmt.Fprintf(c.config.Out, "Scenario: built-in printer factory\n")
	}
	if c.config.Resume != "" {
		fmt.Fprintf(c.config.Out, "Resuming from: %s\n", c.config.Resume)
	}
	fmt.Fprintf(c.config.Out, "Store: %s\n", cfg.Store.Driver)
	fmt.Fprintf(c.config.Out, "Days: %d\n", c.config.Days)
	fmt.Fprintf(c.config.Out, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.config.Out, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.config.Out)
}

func saveSnapshot(ctx context.Context, sim *simulation.Simulation, path string) error {
	snap, err := sim.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to export simulation: %w", err)
	}
	return writeSnapshot(path, snap)
}
