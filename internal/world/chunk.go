package world

import (
	"fmt"

	"github.com/OCharnyshevich/worldtrim/internal/coord"
)

const (
	blendingMinSection = -4
	blendingMaxSection = 20

	oceanFloor = "OCEAN_FLOOR"
)

// Chunk is a decoded chunk record. Changes are kept in memory until the
// owning Region saves it.
type Chunk struct {
	Rel  coord.Rel
	Abs  coord.Coord
	Data Compound
}

// ParseChunk decodes the uncompressed payload of a chunk slot.
func ParseChunk(rel coord.Rel, abs coord.Coord, data []byte) (*Chunk, error) {
	c, err := DecodeCompound(data)
	if err != nil {
		return nil, fmt.Errorf("parse chunk %s: %w", abs, err)
	}
	return &Chunk{Rel: rel, Abs: abs, Data: c}, nil
}

// Encode serializes the chunk for storage.
func (c *Chunk) Encode() ([]byte, error) {
	data, err := EncodeCompound(c.Data)
	if err != nil {
		return nil, fmt.Errorf("serialize chunk %s: %w", c.Abs, err)
	}
	return data, nil
}

// Heightmap decodes the named height table, e.g. "OCEAN_FLOOR".
func (c *Chunk) Heightmap(name string) (Heightmap, error) {
	maps, err := compoundAt(c.Data, "Heightmaps")
	if err != nil {
		return Heightmap{}, fmt.Errorf("chunk %s: %w", c.Abs, err)
	}
	words, ok := maps[name].([]int64)
	if !ok {
		return Heightmap{}, fmt.Errorf("chunk %s: %w: bad %s", c.Abs, ErrBadHeightmap, name)
	}
	return DecodeHeightmap(words)
}

// OceanFloor decodes the OCEAN_FLOOR height table.
func (c *Chunk) OceanFloor() (Heightmap, error) {
	return c.Heightmap(oceanFloor)
}

// ForceBlending marks the chunk for blending against regenerated neighbours
// and lets the game infer border heights itself.
func (c *Chunk) ForceBlending() {
	delete(c.Data, "isLightOn")
	c.Data["blending_data"] = Compound{
		"min_section": int32(blendingMinSection),
		"max_section": int32(blendingMaxSection),
	}
}

// ForceBlendingWithHeights marks the chunk for blending and stores explicit
// border heights, computed from its ocean floor, for the given sides.
func (c *Chunk) ForceBlendingWithHeights(dirs []Direction, offset float64) error {
	hm, err := c.OceanFloor()
	if err != nil {
		return err
	}
	heights := BlendingHeights(BorderHeights(hm, offset), dirs)

	delete(c.Data, "isLightOn")
	c.Data["blending_data"] = Compound{
		"min_section": int32(blendingMinSection),
		"max_section": int32(blendingMaxSection),
		"heights":     heights[:],
	}
	return nil
}

// BlendingData returns the blending compound and its heights, if present.
func (c *Chunk) BlendingData() (Compound, []float64, error) {
	bd, err := compoundAt(c.Data, "blending_data")
	if err != nil {
		return nil, nil, fmt.Errorf("chunk %s: %w", c.Abs, err)
	}
	heights, err := float64List(bd["heights"])
	if err != nil {
		return nil, nil, fmt.Errorf("chunk %s: %w: bad heights", c.Abs, err)
	}
	return bd, heights, nil
}

// float64List accepts a list of doubles as either typed or decoded form.
// A nil value yields an empty list.
func float64List(v any) ([]float64, error) {
	switch l := v.(type) {
	case nil:
		return nil, nil
	case []float64:
		return l, nil
	case []any:
		out := make([]float64, len(l))
		for i, e := range l {
			f, ok := e.(float64)
			if !ok {
				return nil, ErrMalformedRecord
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, ErrMalformedRecord
}
