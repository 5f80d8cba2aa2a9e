package simulation

import (
	"context"

	"github.com/vsinha/factorysim/pkg/domain/repositories"
	"github.com/vsinha/factorysim/pkg/infrastructure/export"
)

// Snapshot copies the whole simulation state
func (s *Simulation) Snapshot(ctx context.Context) (*export.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return export.Export(ctx, s.stores, s.recorder.RunID(), s.clock.Today())
}

// Restore loads a snapshot into empty stores and continues its run from the
// snapshot's date. Event ids continue after the last stored event.
func Restore(ctx context.Context, cfg Config, stores repositories.Stores, snap *export.Snapshot, opts ...Option) (*Simulation, error) {
	day, err := snap.Day()
	if err != nil {
		return nil, err
	}
	if err := export.Import(ctx, stores, snap); err != nil {
		return nil, err
	}

	cfg.InitialDay = day
	return New(ctx, cfg, stores, append(opts, WithRunID(snap.RunID))...)
}
