package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/vsinha/factorysim/pkg/config"
	"github.com/vsinha/factorysim/pkg/interfaces/cli/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "factorysim",
		Usage: "day-by-day manufacturing and procurement simulator",
		Commands: []*cli.Command{
			runCommand(),
			serveCommand(),
			exportCommand(),
			generateCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// simulationFlags override the environment for a single invocation
func simulationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "scenario", Usage: "Scenario directory with products.csv, bom.csv, suppliers.csv and stock.csv"},
		&cli.StringFlag{Name: "start", Usage: "First simulated day (YYYY-MM-DD), today when unset"},
		&cli.Uint64Flag{Name: "seed", Usage: "Demand seed, time-derived when 0"},
		&cli.IntFlag{Name: "capacity", Usage: "Manufacturing orders released per day"},
		&cli.StringFlag{Name: "store", Usage: "Storage backend: memory or postgres"},
		&cli.StringFlag{Name: "resume", Usage: "Continue the run saved in this snapshot file"},
	}
}

func loadRuntime(c *cli.Context) (*commands.Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.IsSet("scenario") {
		cfg.Sim.ScenarioDir = c.String("scenario")
	}
	if c.IsSet("start") {
		cfg.Sim.InitialDay = c.String("start")
	}
	if c.IsSet("seed") {
		cfg.Sim.Seed = c.Uint64("seed")
	}
	if c.IsSet("capacity") {
		cfg.Sim.ProductionCapacityPerDay = c.Int("capacity")
	}
	if c.IsSet("store") {
		switch d := c.String("store"); d {
		case "memory", "postgres":
			cfg.Store.Driver = d
		default:
			return nil, fmt.Errorf("--store must be memory or postgres, got %q", d)
		}
	}
	return commands.NewRuntime(cfg), nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Advance the simulation a number of days and print a report",
		Flags: append(simulationFlags(),
			&cli.IntFlag{Name: "days", Aliases: []string{"d"}, Value: 30, Usage: "Days to simulate"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Output format: text, json, csv"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory for results (optional)"},
			&cli.StringFlag{Name: "save", Usage: "Write a snapshot of the final state to this file"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Print progress for every day"},
		),
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			return commands.NewRunCommand(rt, commands.RunConfig{
				Days:         c.Int("days"),
				Format:       c.String("format"),
				OutputDir:    c.String("output"),
				Verbose:      c.Bool("verbose"),
				Resume:       c.String("resume"),
				SaveSnapshot: c.String("save"),
			}).Execute(c.Context)
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the simulation over HTTP with a websocket day stream",
		Flags: simulationFlags(),
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			return commands.NewServeCommand(rt, commands.ServeConfig{
				Resume: c.String("resume"),
			}).Execute(c.Context)
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the simulation state as a JSON snapshot",
		Flags: append(simulationFlags(),
			&cli.IntFlag{Name: "days", Aliases: []string{"d"}, Usage: "Days to simulate before exporting"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Snapshot file, stdout when unset"},
		),
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			return commands.NewExportCommand(rt, commands.ExportConfig{
				Days:   c.Int("days"),
				Output: c.String("output"),
				Resume: c.String("resume"),
			}).Execute(c.Context)
		},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Write a random factory scenario as CSV files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "Scenario directory to create"},
			&cli.IntFlag{Name: "products", Value: 3, Usage: "Number of finished products"},
			&cli.IntFlag{Name: "materials", Value: 12, Usage: "Number of raw materials"},
			&cli.IntFlag{Name: "components", Value: 5, Usage: "Most distinct materials in one BOM"},
			&cli.Float64Flag{Name: "inventory", Value: 1.0, Usage: "Opening stock multiplier"},
			&cli.Uint64Flag{Name: "seed", Usage: "Random seed, time-derived when 0"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
		},
		Action: func(c *cli.Context) error {
			return commands.NewGenerateCommand(commands.GenerateConfig{
				FinishedProducts: c.Int("products"),
				Materials:        c.Int("materials"),
				MaxComponents:    c.Int("components"),
				Inventory:        c.Float64("inventory"),
				OutputDir:        c.String("output"),
				Seed:             c.Uint64("seed"),
				Verbose:          c.Bool("verbose"),
			}).Execute(c.Context)
		},
	}
}
