package world

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/OCharnyshevich/worldtrim/internal/coord"
	"github.com/OCharnyshevich/worldtrim/pkg/world/anvil"
)

// ErrChunkNotFound is returned when a chunk slot is empty.
var ErrChunkNotFound = anvil.ErrChunkNotFound

// Region is an open region file addressed by absolute chunk coordinates.
type Region struct {
	Coord coord.Coord
	Path  string

	r   *anvil.Region
	log *slog.Logger
}

// ReadChunk loads the chunk at abs, failing with ErrChunkNotFound if the
// slot is empty.
func (r *Region) ReadChunk(abs coord.Coord) (*Chunk, error) {
	rel, err := coord.MakeRelative(r.Coord, abs)
	if err != nil {
		return nil, err
	}
	data, err := r.r.Read(anvil.Pos{X: rel.X, Z: rel.Z})
	if err != nil {
		return nil, fmt.Errorf("read chunk %s from %s: %w", abs, r.Path, err)
	}
	return ParseChunk(rel, abs, data)
}

// LookupChunk is ReadChunk with absence reported through ok instead of an
// error.
func (r *Region) LookupChunk(abs coord.Coord) (*Chunk, bool, error) {
	c, err := r.ReadChunk(abs)
	if errors.Is(err, ErrChunkNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// HasChunk reports whether the slot for abs is occupied.
func (r *Region) HasChunk(abs coord.Coord) (bool, error) {
	rel, err := coord.MakeRelative(r.Coord, abs)
	if err != nil {
		return false, err
	}
	return r.r.Exists(anvil.Pos{X: rel.X, Z: rel.Z}), nil
}

// SaveChunk writes c back into its slot.
func (r *Region) SaveChunk(c *Chunk) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := r.r.Write(anvil.Pos{X: c.Rel.X, Z: c.Rel.Z}, data); err != nil {
		return fmt.Errorf("save chunk %s to %s: %w", c.Abs, r.Path, err)
	}
	return nil
}

// WriteChunk stores an already encoded chunk payload at abs.
func (r *Region) WriteChunk(abs coord.Coord, data []byte) error {
	rel, err := coord.MakeRelative(r.Coord, abs)
	if err != nil {
		return err
	}
	if err := r.r.Write(anvil.Pos{X: rel.X, Z: rel.Z}, data); err != nil {
		return fmt.Errorf("write chunk %s to %s: %w", abs, r.Path, err)
	}
	return nil
}

// RemoveChunk clears the slot for abs. Removing an absent chunk is a no-op.
func (r *Region) RemoveChunk(abs coord.Coord) error {
	rel, err := coord.MakeRelative(r.Coord, abs)
	if err != nil {
		return err
	}
	if err := r.r.Remove(anvil.Pos{X: rel.X, Z: rel.Z}); err != nil {
		return fmt.Errorf("remove chunk %s from %s: %w", abs, r.Path, err)
	}
	r.log.Debug("removed chunk", "chunk", abs, "relative", rel, "region", r.Coord)
	return nil
}

// Chunks yields the absolute coordinate of every occupied slot in storage order.
func (r *Region) Chunks() iter.Seq2[coord.Coord, error] {
	return func(yield func(coord.Coord, error) bool) {
		for p := range r.r.Occupied() {
			abs, err := coord.MakeAbsolute(r.Coord, coord.Rel{X: p.X, Z: p.Z})
			if !yield(abs, err) {
				return
			}
		}
	}
}

// Len returns the number of chunks in the region.
func (r *Region) Len() int {
	return r.r.Len()
}

// Close releases the region file.
func (r *Region) Close() error {
	return r.r.Close()
}
