package stage

import (
	"fmt"
	"log/slog"

	"github.com/OCharnyshevich/worldtrim/internal/config"
	"github.com/OCharnyshevich/worldtrim/internal/coord"
	"github.com/OCharnyshevich/worldtrim/internal/world"
)

// Relocate moves every player standing outside the persistent areas of its
// dimension to the configured dimension and position. Players in
// unconfigured dimensions are left alone. It returns the number of players
// moved.
func Relocate(w *world.World, cfg *config.Config, to config.Relocate, log *slog.Logger) (int, error) {
	ids, err := w.Players()
	if err != nil {
		return 0, err
	}

	var moved int
	for _, id := range ids {
		p, err := w.Player(id)
		if err != nil {
			return moved, err
		}
		kind, err := p.Dimension()
		if err != nil {
			return moved, err
		}
		pos, err := p.Position()
		if err != nil {
			return moved, err
		}
		plog := log.With("player", id, "dimension", string(kind), "position", pos)

		dcfg := cfg.Dimension(kind)
		if dcfg == nil {
			plog.Debug("player is in unconfigured dimension")
			continue
		}
		if Contains(dcfg.Persistent, pos.Chunk()) {
			plog.Debug("player is in bounds")
			continue
		}

		p.SetDimension(to.Dimension)
		p.SetPosition(to.Position)
		if err := w.SavePlayer(p); err != nil {
			return moved, err
		}
		plog.Info("relocated player", "to_dimension", string(to.Dimension), "to_position", to.Position)
		moved++
	}
	return moved, nil
}

// Rescue moves every player whose chunk no longer exists in storage to
// position, keeping the player's dimension. It returns the number of
// players moved.
func Rescue(w *world.World, to config.Rescue, log *slog.Logger) (int, error) {
	ids, err := w.Players()
	if err != nil {
		return 0, err
	}

	var moved int
	for _, id := range ids {
		p, err := w.Player(id)
		if err != nil {
			return moved, err
		}
		kind, err := p.Dimension()
		if err != nil {
			return moved, err
		}
		pos, err := p.Position()
		if err != nil {
			return moved, err
		}

		present, err := chunkExists(w.Dimension(kind).Regions, pos.Chunk())
		if err != nil {
			return moved, err
		}
		if present {
			continue
		}

		p.SetPosition(to.Position)
		if err := w.SavePlayer(p); err != nil {
			return moved, err
		}
		log.Info("rescued player", "player", id, "dimension", string(kind), "from", pos, "to", to.Position)
		moved++
	}
	return moved, nil
}

func chunkExists(s *world.Store, c coord.Coord) (bool, error) {
	r, ok, err := s.OpenForChunk(c)
	if err != nil || !ok {
		return false, err
	}
	defer r.Close()
	return r.HasChunk(c)
}

// PersistChunks adds a square area of the configured size, with uniform
// blending, around every player outside the persistent areas of its
// dimension. The radius is at least one chunk, so sizes below 3 still give
// a 3x3 area. cfg is modified in place. It returns the number of areas added.
func PersistChunks(w *world.World, cfg *config.Config, pc config.PersistChunks, log *slog.Logger) (int, error) {
	ids, err := w.Players()
	if err != nil {
		return 0, err
	}

	radius := max(pc.Size/2, 1)
	offset := coord.Coord{X: radius, Z: radius}

	var added int
	for _, id := range ids {
		p, err := w.Player(id)
		if err != nil {
			return added, err
		}
		kind, err := p.Dimension()
		if err != nil {
			return added, err
		}
		pos, err := p.Position()
		if err != nil {
			return added, err
		}

		dcfg := cfg.Dimension(kind)
		if dcfg == nil {
			continue
		}
		chunk := pos.Chunk()
		if Contains(dcfg.Persistent, chunk) {
			continue
		}

		tl, err := chunk.Sub(offset)
		if err != nil {
			return added, fmt.Errorf("persist chunks around player %s: %w", id, err)
		}
		br, err := chunk.Add(offset)
		if err != nil {
			return added, fmt.Errorf("persist chunks around player %s: %w", id, err)
		}
		area := config.PersistentArea{TopLeft: tl, BottomRight: br, Blending: &config.Blending{Enabled: true}}
		dcfg.Persistent = append(dcfg.Persistent, area)
		log.Info("added persistent area around out-of-bounds player", "player", id, "dimension", string(kind), "area", area)
		added++
	}
	return added, nil
}
