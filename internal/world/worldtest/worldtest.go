// Package worldtest builds small save directories for tests.
package worldtest

import (
	"testing"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/worldtrim/internal/coord"
	"github.com/OCharnyshevich/worldtrim/internal/world"
)

// FlatHeightmap returns a heightmap with every column at height.
func FlatHeightmap(height int16) world.Heightmap {
	var hm world.Heightmap
	for z := range hm {
		for x := range hm[z] {
			hm[z][x] = height
		}
	}
	return hm
}

// ChunkData returns a minimal fully generated chunk compound at abs whose
// ocean floor is hm.
func ChunkData(t testing.TB, abs coord.Coord, hm world.Heightmap) world.Compound {
	t.Helper()
	words, err := world.EncodeHeightmap(hm)
	if err != nil {
		t.Fatalf("encode heightmap: %v", err)
	}
	return world.Compound{
		"DataVersion": int32(3465),
		"xPos":        int32(abs.X),
		"zPos":        int32(abs.Z),
		"Status":      "minecraft:full",
		"isLightOn":   int8(1),
		"Heightmaps": world.Compound{
			"OCEAN_FLOOR": words,
		},
	}
}

// FillRegion writes a flat chunk into every listed slot of region c,
// creating the region file.
func FillRegion(t testing.TB, s *world.Store, c coord.Coord, chunks []coord.Coord, height int16) {
	t.Helper()
	r, err := s.Create(c)
	if err != nil {
		t.Fatalf("create region %s: %v", c, err)
	}
	defer r.Close()

	for _, abs := range chunks {
		data, err := world.EncodeCompound(ChunkData(t, abs, FlatHeightmap(height)))
		if err != nil {
			t.Fatalf("encode chunk %s: %v", abs, err)
		}
		if err := r.WriteChunk(abs, data); err != nil {
			t.Fatalf("write chunk %s: %v", abs, err)
		}
	}
}

// FullRegion writes all 1024 chunks of region c.
func FullRegion(t testing.TB, s *world.Store, c coord.Coord, height int16) {
	t.Helper()
	FillRegion(t, s, c, RegionChunks(c), height)
}

// RegionChunks lists every chunk coordinate inside region c.
func RegionChunks(c coord.Coord) []coord.Coord {
	chunks := make([]coord.Coord, 0, coord.RegionSize*coord.RegionSize)
	for x := int64(0); x < coord.RegionSize; x++ {
		for z := int64(0); z < coord.RegionSize; z++ {
			chunks = append(chunks, coord.Coord{X: c.X*coord.RegionSize + x, Z: c.Z*coord.RegionSize + z})
		}
	}
	return chunks
}

// Chunks opens region c and returns its occupied chunk coordinates. A missing
// region yields nil.
func Chunks(t testing.TB, s *world.Store, c coord.Coord) []coord.Coord {
	t.Helper()
	r, ok, err := s.Open(c)
	if err != nil {
		t.Fatalf("open region %s: %v", c, err)
	}
	if !ok {
		return nil
	}
	defer r.Close()

	var out []coord.Coord
	for abs, err := range r.Chunks() {
		if err != nil {
			t.Fatalf("list chunks of %s: %v", c, err)
		}
		out = append(out, abs)
	}
	return out
}

// WritePlayer stores a player record at pos in dimension kind.
func WritePlayer(t testing.TB, w *world.World, kind world.Kind, pos world.Position) uuid.UUID {
	t.Helper()
	p := &world.Player{UUID: uuid.New(), Data: world.Compound{
		"Health":    float32(20),
		"Dimension": kind.ID(),
	}}
	p.SetPosition(pos)
	if err := w.SavePlayer(p); err != nil {
		t.Fatalf("save player: %v", err)
	}
	return p.UUID
}

// WriteLevel stores a level.dat with the given seed.
func WriteLevel(t testing.TB, w *world.World, seed int64) {
	t.Helper()
	level := world.Compound{
		"Data": world.Compound{
			"LevelName": "test",
			"WorldGenSettings": world.Compound{
				"seed":              seed,
				"generate_features": int8(1),
			},
		},
	}
	if err := w.SaveLevel(level); err != nil {
		t.Fatalf("save level: %v", err)
	}
}
