package world

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/OCharnyshevich/worldtrim/internal/coord"
	"github.com/OCharnyshevich/worldtrim/pkg/world/anvil"
)

const regionExt = "mca"

// Store is a directory of region files, either terrain ("region") or
// entities ("entities").
type Store struct {
	dir string
	ext string
	log *slog.Logger
}

// NewStore returns a Store over dir. The directory does not need to exist.
func NewStore(dir string, log *slog.Logger) *Store {
	return &Store{dir: dir, ext: regionExt, log: log}
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path of region c.
func (s *Store) Path(c coord.Coord) string {
	return filepath.Join(s.dir, coord.RegionFileName(c, s.ext))
}

// Open opens region c. A missing or zero-length file is reported as
// ok == false, not as an error.
func (s *Store) Open(c coord.Coord) (*Region, bool, error) {
	path := s.Path(c)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat region %s: %w", c, err)
	}
	if info.Size() == 0 {
		return nil, false, nil
	}

	r, err := anvil.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("open region %s: %w", c, err)
	}
	return &Region{Coord: c, Path: path, r: r, log: s.log}, true, nil
}

// OpenForChunk opens the region containing chunk abs.
func (s *Store) OpenForChunk(abs coord.Coord) (*Region, bool, error) {
	return s.Open(abs.ChunkToRegion())
}

// Create writes a new empty region c, replacing any existing file.
func (s *Store) Create(c coord.Coord) (*Region, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create region dir: %w", err)
	}
	path := s.Path(c)
	r, err := anvil.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create region %s: %w", c, err)
	}
	return &Region{Coord: c, Path: path, r: r, log: s.log}, nil
}

// List returns the coordinates of every non-empty region file, sorted.
// Files not named like a region are skipped. A missing directory holds no
// regions.
func (s *Store) List() ([]coord.Coord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read region dir: %w", err)
	}

	var coords []coord.Coord
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		c, err := coord.ParseRegionFileName(e.Name(), s.ext)
		if err != nil {
			s.log.Debug("skipping non-region file", "file", e.Name())
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("read dir entry %s: %w", e.Name(), err)
		}
		if info.Size() == 0 {
			continue
		}
		coords = append(coords, c)
	}
	slices.SortFunc(coords, coord.Compare)
	return coords, nil
}

// Remove deletes region c. A region that is already gone counts as removed.
func (s *Store) Remove(c coord.Coord) error {
	if err := os.Remove(s.Path(c)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove region %s: %w", c, err)
	}
	return nil
}
