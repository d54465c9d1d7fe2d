package stage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/OCharnyshevich/worldtrim/internal/config"
	"github.com/OCharnyshevich/worldtrim/internal/world"
)

// Stage names used in logs and the run report.
const (
	StagePersistChunks = "persist-chunks"
	StageRelocate      = "relocate-players"
	StageDeleteChunks  = "delete-chunks"
	StageRescue        = "rescue-players"
	StageForceBlending = "force-blending"
	StageRandomizeSeed = "randomize-seed"
	StageSetSeed       = "set-seed"
)

// Stages selects which passes a run performs.
type Stages struct {
	RelocatePlayers bool
	DeleteChunks    bool
	ForceBlending   bool
	RandomizeSeed   bool
	// SetSeed, when set, replaces the seed with a fixed value. It takes
	// precedence over RandomizeSeed.
	SetSeed *int64
}

// AllStages selects every pass except a fixed seed.
func AllStages() Stages {
	return Stages{RelocatePlayers: true, DeleteChunks: true, ForceBlending: true, RandomizeSeed: true}
}

// Recorder stores per-stage counts of a run.
type Recorder interface {
	BeginRun(ctx context.Context, world string) (int64, error)
	Record(ctx context.Context, runID int64, stage, dimension string, metrics map[string]int64) error
	FinishRun(ctx context.Context, runID int64, runErr error) error
}

// Runner runs the selected stages against one world.
type Runner struct {
	World  *world.World
	Config *config.Config
	Log    *slog.Logger

	// Backup and Report are optional.
	Backup Backup
	Report Recorder

	runID int64
}

// Run executes the selected stages in order: persist-chunks expansion,
// relocation, deletion, rescue, blending and the seed change. The first
// error stops the run.
func (r *Runner) Run(ctx context.Context, st Stages) (err error) {
	if r.Report != nil {
		id, berr := r.Report.BeginRun(ctx, r.World.Dir)
		if berr != nil {
			return fmt.Errorf("begin run report: %w", berr)
		}
		r.runID = id
		defer func() {
			if ferr := r.Report.FinishRun(ctx, id, err); ferr != nil && err == nil {
				err = fmt.Errorf("finish run report: %w", ferr)
			}
		}()
	}

	oob := r.Config.Players.OutOfBounds
	if oob != nil && oob.PersistChunks != nil {
		n, err := PersistChunks(r.World, r.Config, *oob.PersistChunks, r.Log)
		if err != nil {
			return fmt.Errorf("%s: %w", StagePersistChunks, err)
		}
		if err := r.record(ctx, StagePersistChunks, "", map[string]int64{"areas": int64(n)}); err != nil {
			return err
		}
	}

	if st.RelocatePlayers && oob != nil && oob.Relocate != nil {
		n, err := Relocate(r.World, r.Config, *oob.Relocate, r.Log)
		if err != nil {
			return fmt.Errorf("%s: %w", StageRelocate, err)
		}
		if err := r.record(ctx, StageRelocate, "", map[string]int64{"players": int64(n)}); err != nil {
			return err
		}
	}

	if st.DeleteChunks {
		for _, kind := range r.Config.ConfiguredKinds() {
			res, err := DeleteChunks(r.World.Dimension(kind), r.Config.Dimension(kind), r.Backup, r.Log)
			if err != nil {
				return fmt.Errorf("%s %s: %w", StageDeleteChunks, kind, err)
			}
			if err := r.record(ctx, StageDeleteChunks, string(kind), res.Metrics()); err != nil {
				return err
			}
		}
	}

	if st.RelocatePlayers && oob != nil && oob.Rescue != nil {
		n, err := Rescue(r.World, *oob.Rescue, r.Log)
		if err != nil {
			return fmt.Errorf("%s: %w", StageRescue, err)
		}
		if err := r.record(ctx, StageRescue, "", map[string]int64{"players": int64(n)}); err != nil {
			return err
		}
	}

	if st.ForceBlending {
		for _, kind := range r.Config.ConfiguredKinds() {
			n, err := ForceBlending(r.World.Dimension(kind), r.Config, r.Log)
			if err != nil {
				return fmt.Errorf("%s %s: %w", StageForceBlending, kind, err)
			}
			if err := r.record(ctx, StageForceBlending, string(kind), map[string]int64{"chunks": int64(n)}); err != nil {
				return err
			}
		}
	}

	switch {
	case st.SetSeed != nil:
		seed, err := SetSeed(r.World, *st.SetSeed, r.Log)
		if err != nil {
			return fmt.Errorf("%s: %w", StageSetSeed, err)
		}
		if err := r.record(ctx, StageSetSeed, "", map[string]int64{"seed": seed}); err != nil {
			return err
		}
	case st.RandomizeSeed:
		seed, err := RandomizeSeed(r.World, r.Log)
		if err != nil {
			return fmt.Errorf("%s: %w", StageRandomizeSeed, err)
		}
		if err := r.record(ctx, StageRandomizeSeed, "", map[string]int64{"seed": seed}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) record(ctx context.Context, stage, dimension string, metrics map[string]int64) error {
	if r.Report == nil {
		return nil
	}
	if err := r.Report.Record(ctx, r.runID, stage, dimension, metrics); err != nil {
		return fmt.Errorf("record %s: %w", stage, err)
	}
	return nil
}
