package stage

import (
	"fmt"
	"log/slog"

	"github.com/OCharnyshevich/worldtrim/internal/config"
	"github.com/OCharnyshevich/worldtrim/internal/world"
)

// ForceBlending marks the border chunks of every persistent area of dim for
// blending. Areas whose effective blending is disabled are skipped. Border
// chunks missing from storage are logged and skipped. It returns the number
// of chunks written.
func ForceBlending(dim *world.Dimension, cfg *config.Config, log *slog.Logger) (int, error) {
	log = log.With("dimension", string(dim.Kind))
	dcfg := cfg.Dimension(dim.Kind)
	if dcfg == nil {
		return 0, nil
	}

	var forced int
	for _, area := range dcfg.Persistent {
		blending := cfg.BlendingFor(area)
		if !blending.Enabled {
			log.Debug("blending disabled", "area", area)
			continue
		}
		for b := range BorderChunks(area) {
			ok, err := blendChunk(dim, b, blending, log)
			if err != nil {
				return forced, err
			}
			if ok {
				forced++
			}
		}
	}

	log.Info("forced blending", "chunks", forced)
	return forced, nil
}

// blendChunk opens the region of b, rewrites the chunk and closes the region.
func blendChunk(dim *world.Dimension, b Border, blending config.Blending, log *slog.Logger) (bool, error) {
	r, ok, err := dim.Regions.OpenForChunk(b.Chunk)
	if err != nil {
		return false, err
	}
	if !ok {
		log.Warn("missing region on persistent border, chunk will regenerate unblended", "chunk", b.Chunk)
		return false, nil
	}
	defer r.Close()

	c, ok, err := r.LookupChunk(b.Chunk)
	if err != nil {
		return false, err
	}
	if !ok {
		log.Warn("missing chunk on persistent border, chunk will regenerate unblended", "chunk", b.Chunk)
		return false, nil
	}

	if blending.Offset != nil {
		if err := c.ForceBlendingWithHeights(b.Dirs, *blending.Offset); err != nil {
			return false, fmt.Errorf("blend chunk %s: %w", b.Chunk, err)
		}
	} else {
		c.ForceBlending()
	}
	if err := r.SaveChunk(c); err != nil {
		return false, err
	}
	log.Debug("forced blending", "chunk", b.Chunk, "directions", b.Dirs)
	return true, nil
}
