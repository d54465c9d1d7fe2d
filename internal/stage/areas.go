// Package stage implements the world editing passes: chunk deletion,
// border blending, out-of-bounds player handling and seed changes.
package stage

import (
	"iter"
	"slices"

	"github.com/OCharnyshevich/worldtrim/internal/config"
	"github.com/OCharnyshevich/worldtrim/internal/coord"
	"github.com/OCharnyshevich/worldtrim/internal/world"
)

// KeptRegions returns every region inside the region-space rectangle spanned
// by the corners of each area. The rectangle may hold regions no kept chunk
// lives in; it never misses one that does.
func KeptRegions(areas []config.PersistentArea) map[coord.Coord]struct{} {
	kept := make(map[coord.Coord]struct{})
	for _, a := range areas {
		tl := a.TopLeft.ChunkToRegion()
		br := a.BottomRight.ChunkToRegion()
		for x := tl.X; x <= br.X; x++ {
			for z := tl.Z; z <= br.Z; z++ {
				kept[coord.Coord{X: x, Z: z}] = struct{}{}
			}
		}
	}
	return kept
}

// KeptChunks is the union of the chunks of a set of areas. Membership is
// tested against the rectangles, so huge areas cost nothing to hold.
type KeptChunks []config.PersistentArea

// Has reports whether chunk c lies inside any area.
func (k KeptChunks) Has(c coord.Coord) bool {
	return Contains(k, c)
}

// Contains reports whether chunk c lies inside any of areas.
func Contains(areas []config.PersistentArea, c coord.Coord) bool {
	for _, a := range areas {
		if a.Contains(c) {
			return true
		}
	}
	return false
}

// sortedCoords returns the keys of set in coordinate order.
func sortedCoords(set map[coord.Coord]struct{}) []coord.Coord {
	out := make([]coord.Coord, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	slices.SortFunc(out, coord.Compare)
	return out
}

// Border is a chunk on the edge of a persistent area and the sides it is
// blended on.
type Border struct {
	Chunk coord.Coord
	Dirs  []world.Direction
}

// BorderChunks yields the border chunks of area: the four corners with two
// sides each, then the interior of the top and bottom rows marked
// North+South, then the interior of the left and right columns marked
// East+West.
func BorderChunks(area config.PersistentArea) iter.Seq[Border] {
	tl, br := area.TopLeft, area.BottomRight
	return func(yield func(Border) bool) {
		corners := []Border{
			{tl, []world.Direction{world.North, world.West}},
			{coord.Coord{X: br.X, Z: tl.Z}, []world.Direction{world.North, world.East}},
			{coord.Coord{X: tl.X, Z: br.Z}, []world.Direction{world.South, world.West}},
			{br, []world.Direction{world.South, world.East}},
		}
		for _, b := range corners {
			if !yield(b) {
				return
			}
		}

		if tl.X < br.X {
			for x := tl.X + 1; x < br.X; x++ {
				ns := []world.Direction{world.North, world.South}
				if !yield(Border{coord.Coord{X: x, Z: tl.Z}, ns}) {
					return
				}
				if !yield(Border{coord.Coord{X: x, Z: br.Z}, ns}) {
					return
				}
			}
		}
		if tl.Z < br.Z {
			for z := tl.Z + 1; z < br.Z; z++ {
				ew := []world.Direction{world.East, world.West}
				if !yield(Border{coord.Coord{X: tl.X, Z: z}, ew}) {
					return
				}
				if !yield(Border{coord.Coord{X: br.X, Z: z}, ew}) {
					return
				}
			}
		}
	}
}
