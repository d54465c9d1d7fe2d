package coord

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrOutOfRange is returned when coordinate arithmetic overflows or a
// region-relative coordinate falls outside its region.
var ErrOutOfRange = errors.New("out of range")

const (
	// RegionSize is the number of chunks along each axis of a region.
	RegionSize = 32

	regionShift = 5
	chunkShift  = 4
)

// Coord is a horizontal position in chunk, region or block space.
// Which space is meant depends on context.
type Coord struct {
	X, Z int64
}

// Rel is a chunk position relative to its region, both axes in [0, RegionSize).
type Rel struct {
	X, Z int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Z)
}

func (r Rel) String() string {
	return fmt.Sprintf("%d,%d", r.X, r.Z)
}

// Compare orders coordinates by X, then Z.
func Compare(a, b Coord) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Z, b.Z)
}

// Less reports whether a sorts before b.
func Less(a, b Coord) bool {
	return Compare(a, b) < 0
}

// ChunkToRegion returns the region containing chunk c. The shift floors,
// so chunk -1 lives in region -1.
func (c Coord) ChunkToRegion() Coord {
	return Coord{X: c.X >> regionShift, Z: c.Z >> regionShift}
}

// BlockToChunk returns the chunk containing block c.
func (c Coord) BlockToChunk() Coord {
	return Coord{X: c.X >> chunkShift, Z: c.Z >> chunkShift}
}

// Add returns c+o, failing with ErrOutOfRange on overflow.
func (c Coord) Add(o Coord) (Coord, error) {
	x, okX := addInt64(c.X, o.X)
	z, okZ := addInt64(c.Z, o.Z)
	if !okX || !okZ {
		return Coord{}, fmt.Errorf("%w: %s + %s", ErrOutOfRange, c, o)
	}
	return Coord{X: x, Z: z}, nil
}

// Sub returns c-o, failing with ErrOutOfRange on overflow.
func (c Coord) Sub(o Coord) (Coord, error) {
	x, okX := subInt64(c.X, o.X)
	z, okZ := subInt64(c.Z, o.Z)
	if !okX || !okZ {
		return Coord{}, fmt.Errorf("%w: %s - %s", ErrOutOfRange, c, o)
	}
	return Coord{X: x, Z: z}, nil
}

// Mul scales both axes by v, failing with ErrOutOfRange on overflow.
func (c Coord) Mul(v int64) (Coord, error) {
	x, okX := mulInt64(c.X, v)
	z, okZ := mulInt64(c.Z, v)
	if !okX || !okZ {
		return Coord{}, fmt.Errorf("%w: %s * %d", ErrOutOfRange, c, v)
	}
	return Coord{X: x, Z: z}, nil
}

// MakeRelative converts an absolute chunk coordinate into a slot of region.
func MakeRelative(region, abs Coord) (Rel, error) {
	base, err := region.Mul(RegionSize)
	if err != nil {
		return Rel{}, err
	}
	d, err := abs.Sub(base)
	if err != nil {
		return Rel{}, err
	}
	if d.X < 0 || d.X >= RegionSize || d.Z < 0 || d.Z >= RegionSize {
		return Rel{}, fmt.Errorf("%w: chunk %s is not in region %s", ErrOutOfRange, abs, region)
	}
	return Rel{X: int(d.X), Z: int(d.Z)}, nil
}

// MakeAbsolute converts a slot of region into an absolute chunk coordinate.
func MakeAbsolute(region Coord, rel Rel) (Coord, error) {
	if rel.X < 0 || rel.X >= RegionSize || rel.Z < 0 || rel.Z >= RegionSize {
		return Coord{}, fmt.Errorf("%w: relative chunk %s", ErrOutOfRange, rel)
	}
	base, err := region.Mul(RegionSize)
	if err != nil {
		return Coord{}, err
	}
	return base.Add(Coord{X: int64(rel.X), Z: int64(rel.Z)})
}

// Parse reads a coordinate written as "x,z".
func Parse(s string) (Coord, error) {
	xs, zs, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("parse coordinate %q: missing coordinate", s)
	}
	if strings.Contains(zs, ",") {
		return Coord{}, fmt.Errorf("parse coordinate %q: extra data", s)
	}
	x, err := strconv.ParseInt(strings.TrimSpace(xs), 10, 64)
	if err != nil {
		return Coord{}, fmt.Errorf("parse x coordinate: %w", err)
	}
	z, err := strconv.ParseInt(strings.TrimSpace(zs), 10, 64)
	if err != nil {
		return Coord{}, fmt.Errorf("parse z coordinate: %w", err)
	}
	return Coord{X: x, Z: z}, nil
}

// RegionFileName returns the file name of region c, e.g. "r.-1.0.mca".
func RegionFileName(c Coord, ext string) string {
	return fmt.Sprintf("r.%d.%d.%s", c.X, c.Z, ext)
}

// ParseRegionFileName is the inverse of RegionFileName.
func ParseRegionFileName(name, ext string) (Coord, error) {
	parts := strings.Split(name, ".")
	if len(parts) < 1 || parts[0] != "r" {
		return Coord{}, fmt.Errorf("region file %q: missing r segment", name)
	}
	if len(parts) < 4 {
		return Coord{}, fmt.Errorf("region file %q: missing coordinate", name)
	}
	x, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Coord{}, fmt.Errorf("region file %q: x coordinate: %w", name, err)
	}
	z, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Coord{}, fmt.Errorf("region file %q: z coordinate: %w", name, err)
	}
	if parts[3] != ext {
		return Coord{}, fmt.Errorf("region file %q: missing %s segment", name, ext)
	}
	if len(parts) > 4 {
		return Coord{}, fmt.Errorf("region file %q: extra data", name)
	}
	return Coord{X: x, Z: z}, nil
}

func addInt64(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func subInt64(a, b int64) (int64, bool) {
	c := a - b
	return c, (c < a) == (b > 0)
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	return c, c/b == a
}
