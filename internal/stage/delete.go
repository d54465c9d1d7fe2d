package stage

import (
	"fmt"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/OCharnyshevich/worldtrim/internal/config"
	"github.com/OCharnyshevich/worldtrim/internal/coord"
	"github.com/OCharnyshevich/worldtrim/internal/world"
)

// Backup receives a copy of every region file before it is deleted or
// trimmed.
type Backup interface {
	Save(name, src string) error
}

// DeleteResult counts what a deletion pass removed.
type DeleteResult struct {
	Regions       int
	Chunks        int
	EntityRegions int
	EntityChunks  int
}

// Metrics returns the counts keyed by name for the run report.
func (r DeleteResult) Metrics() map[string]int64 {
	return map[string]int64{
		"regions":        int64(r.Regions),
		"chunks":         int64(r.Chunks),
		"entity-regions": int64(r.EntityRegions),
		"entity-chunks":  int64(r.EntityChunks),
	}
}

// DeleteChunks removes every region and chunk of dim outside the persistent
// areas of cfg. Regions outside the kept-region rectangle are deleted whole;
// kept regions are trimmed chunk by chunk and left in place even when they
// end up empty. Entity storage gets the same pass when cfg.CullEntities is
// set. bk may be nil.
func DeleteChunks(dim *world.Dimension, cfg *config.Dimension, bk Backup, log *slog.Logger) (DeleteResult, error) {
	log = log.With("dimension", string(dim.Kind))
	kept := KeptRegions(cfg.Persistent)
	chunks := KeptChunks(cfg.Persistent)

	var (
		res DeleteResult
		err error
	)
	res.Regions, res.Chunks, err = prune(dim.Kind, dim.Regions, kept, chunks, bk, log)
	if err != nil {
		return res, err
	}
	if cfg.CullEntities {
		res.EntityRegions, res.EntityChunks, err = prune(dim.Kind, dim.Entities, kept, chunks, bk, log.With("store", "entities"))
		if err != nil {
			return res, err
		}
	}

	log.Info("deleted chunks",
		"regions", res.Regions, "chunks", res.Chunks,
		"entity_regions", res.EntityRegions, "entity_chunks", res.EntityChunks)
	return res, nil
}

// prune runs one deletion pass over a single store.
func prune(kind world.Kind, s *world.Store, kept map[coord.Coord]struct{}, chunks KeptChunks, bk Backup, log *slog.Logger) (int, int, error) {
	all, err := s.List()
	if err != nil {
		return 0, 0, err
	}

	var regions int
	for _, c := range all {
		if _, ok := kept[c]; ok {
			continue
		}
		if err := backupRegion(bk, kind, s, c); err != nil {
			return regions, 0, err
		}
		if err := s.Remove(c); err != nil {
			return regions, 0, err
		}
		log.Debug("deleted region", "region", c)
		regions++
	}

	var removed int
	for _, c := range sortedCoords(kept) {
		n, err := trimRegion(kind, s, c, chunks, bk, log)
		removed += n
		if err != nil {
			return regions, removed, err
		}
	}
	return regions, removed, nil
}

// trimRegion removes the chunks of region c that are not kept.
func trimRegion(kind world.Kind, s *world.Store, c coord.Coord, chunks KeptChunks, bk Backup, log *slog.Logger) (int, error) {
	r, ok, err := s.Open(c)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	defer r.Close()

	var drop []coord.Coord
	for abs, err := range r.Chunks() {
		if err != nil {
			return 0, fmt.Errorf("list chunks of region %s: %w", c, err)
		}
		if !chunks.Has(abs) {
			drop = append(drop, abs)
		}
	}
	if len(drop) == 0 {
		return 0, nil
	}

	if err := backupRegion(bk, kind, s, c); err != nil {
		return 0, err
	}
	for i, abs := range drop {
		if err := r.RemoveChunk(abs); err != nil {
			return i, err
		}
		log.Debug("deleted chunk", "chunk", abs, "region", c)
	}
	return len(drop), nil
}

func backupRegion(bk Backup, kind world.Kind, s *world.Store, c coord.Coord) error {
	if bk == nil {
		return nil
	}
	src := s.Path(c)
	name := path.Join(string(kind), filepath.Base(s.Dir()), filepath.Base(src))
	if err := bk.Save(name, src); err != nil {
		return fmt.Errorf("back up region %s: %w", c, err)
	}
	return nil
}
