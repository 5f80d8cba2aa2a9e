package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/factorysim/pkg/application/services/simulation"
	"github.com/vsinha/factorysim/pkg/config"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
	"github.com/vsinha/factorysim/pkg/infrastructure/export"
	"github.com/vsinha/factorysim/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/factorysim/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/factorysim/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/factorysim/pkg/infrastructure/seed"
	"github.com/vsinha/factorysim/pkg/logger"
)

// Runtime is what every command shares: settings and a logger
type Runtime struct {
	Config *config.Config
	Log    *logger.Logger
}

// NewRuntime builds a runtime whose logs go to stderr, keeping stdout for reports
func NewRuntime(cfg *config.Config) *Runtime {
	return &Runtime{
		Config: cfg,
		Log:    logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: os.Stderr}),
	}
}

// Session is an opened simulation with its storage
type Session struct {
	Sim   *simulation.Simulation
	close func()
}

// Close releases the storage backend
func (s *Session) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open builds a simulation over the configured store. With resume set it
// continues the run saved in that snapshot file; otherwise it loads the
// scenario directory, or the printer factory when none is configured.
func (r *Runtime) Open(ctx context.Context, resume string, opts ...simulation.Option) (*Session, error) {
	simCfg, err := SimulationConfig(r.Config.Sim, time.Now())
	if err != nil {
		return nil, fmt.Errorf("invalid simulation settings: %w", err)
	}
	opts = append([]simulation.Option{simulation.WithLogger(r.Log)}, opts...)

	var snap *export.Snapshot
	runID := uuid.New()
	if resume != "" {
		if snap, err = readSnapshot(resume); err != nil {
			return nil, err
		}
		runID = snap.RunID
	}

	stores, closeStores, err := r.openStores(ctx, runID)
	if err != nil {
		return nil, err
	}
	session := &Session{close: closeStores}

	if snap != nil {
		session.Sim, err = simulation.Restore(ctx, simCfg, stores, snap, opts...)
		if err != nil {
			session.Close()
			return nil, fmt.Errorf("failed to restore %s: %w", resume, err)
		}
		r.Log.Info().Str("snapshot", resume).Str("date", snap.CurrentDate).Msg("run resumed")
		return session, nil
	}

	dataset, err := r.dataset()
	if err != nil {
		session.Close()
		return nil, err
	}
	session.Sim, err = simulation.New(ctx, simCfg, stores, append(opts, simulation.WithRunID(runID))...)
	if err != nil {
		session.Close()
		return nil, err
	}
	if err := session.Sim.LoadDataset(ctx, dataset); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return session, nil
}

// openStores returns empty stores for a run. Postgres tables are created
// when missing and truncated, so each process starts from a clean factory.
func (r *Runtime) openStores(ctx context.Context, runID uuid.UUID) (repositories.Stores, func(), error) {
	if r.Config.Store.Driver != "postgres" {
		return memory.NewStores(), nil, nil
	}

	pool, err := postgres.NewPool(ctx, r.Config.DB)
	if err != nil {
		return repositories.Stores{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return repositories.Stores{}, nil, err
	}
	if err := postgres.Reset(ctx, pool); err != nil {
		pool.Close()
		return repositories.Stores{}, nil, err
	}
	r.Log.Info().Str("run_id", runID.String()).Msg("postgres store ready")
	return postgres.NewStores(pool, runID), pool.Close, nil
}

func (r *Runtime) dataset() (seed.Dataset, error) {
	dir := r.Config.Sim.ScenarioDir
	if dir == "" {
		return seed.PrinterFactory(), nil
	}
	d, err := csv.NewLoader().LoadDataset(dir)
	if err != nil {
		return seed.Dataset{}, fmt.Errorf("error loading scenario %s: %w", dir, err)
	}
	return d, nil
}

// SimulationConfig turns the loaded settings into a simulation config.
// An empty initial day starts on now's date.
func SimulationConfig(c config.SimConfig, now time.Time) (simulation.Config, error) {
	day, err := c.StartDay(now)
	if err != nil {
		return simulation.Config{}, err
	}
	cfg := simulation.Config{
		InitialDay:               day,
		DemandMean:               c.DemandMean,
		DemandStdDev:             c.DemandStdDev,
		DemandMinQuantity:        entities.Quantity(c.DemandMinQuantity),
		DemandMaxQuantity:        entities.Quantity(c.DemandMaxQuantity),
		ProductionCapacityPerDay: c.ProductionCapacityPerDay,
		WarehouseCapacity:        entities.Quantity(c.WarehouseCapacity),
		Seed:                     c.Seed,
	}
	return cfg, cfg.Validate()
}

func readSnapshot(path string) (*export.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	snap, err := export.Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return snap, nil
}

func writeSnapshot(path string, snap *export.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if err := export.Write(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return f.Close()
}
