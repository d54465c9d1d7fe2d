package world

import (
	"fmt"
	"math"
)

const (
	heightmapBits    = 9
	heightmapMask    = 1<<heightmapBits - 1
	heightsPerWord   = 64 / heightmapBits
	heightmapBias    = 64
	heightmapColumns = 16 * 16
)

// ErrBadHeightmap is returned when a height table is missing or too short.
var ErrBadHeightmap = fmt.Errorf("%w: bad heightmap", ErrMalformedRecord)

// Heightmap holds one height per column, indexed [z][x].
type Heightmap [16][16]int16

// DecodeHeightmap unpacks a height table stored 7 values per word at 9 bits
// each, removing the -64 world bottom bias.
func DecodeHeightmap(words []int64) (Heightmap, error) {
	var hm Heightmap
	if len(words)*heightsPerWord < heightmapColumns {
		return hm, fmt.Errorf("%w: %d values, need %d", ErrBadHeightmap, len(words)*heightsPerWord, heightmapColumns)
	}
	for i := 0; i < heightmapColumns; i++ {
		word := uint64(words[i/heightsPerWord])
		v := int16(word >> (uint(i%heightsPerWord) * heightmapBits) & heightmapMask)
		hm[i/16][i%16] = v - heightmapBias
	}
	return hm, nil
}

// EncodeHeightmap packs hm the way DecodeHeightmap reads it. Heights must lie
// in [-64, 447].
func EncodeHeightmap(hm Heightmap) ([]int64, error) {
	words := make([]int64, (heightmapColumns+heightsPerWord-1)/heightsPerWord)
	for i := 0; i < heightmapColumns; i++ {
		v := int(hm[i/16][i%16]) + heightmapBias
		if v < 0 || v > heightmapMask {
			return nil, fmt.Errorf("height %d at %d,%d outside table range", hm[i/16][i%16], i%16, i/16)
		}
		w := uint64(words[i/heightsPerWord]) | uint64(v)<<(uint(i%heightsPerWord)*heightmapBits)
		words[i/heightsPerWord] = int64(w)
	}
	return words, nil
}

// Direction is a cardinal side of a chunk.
type Direction int

const (
	North Direction = iota
	West
	South
	East
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case West:
		return "west"
	case South:
		return "south"
	case East:
		return "east"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// NoBlending marks a blending height slot the game should leave alone.
const NoBlending = math.MaxFloat64

// BorderHeights averages the heightmap border in groups of four, starting at
// the top-right corner and winding counter-clockwise:
//
//	  3 2 1 0
//	4         f
//	5         e
//	6         d
//	7         c
//	  8 9 a b
//
// Each average is floored before offset is added.
func BorderHeights(hm Heightmap, offset float64) [16]float64 {
	var run [64]int16
	for i := 0; i < 16; i++ {
		run[i] = hm[0][15-i]     // north edge, reversed
		run[16+i] = hm[i][0]     // west edge, top to bottom
		run[32+i] = hm[15-i][15] // east edge, bottom to top
		run[48+i] = hm[15][i]    // south edge
	}

	var out [16]float64
	for g := 0; g < 16; g++ {
		var sum int32
		for _, v := range run[g*4 : g*4+4] {
			sum += int32(v)
		}
		out[g] = math.Floor(float64(sum)/4) + offset
	}
	return out
}

// BlendingHeights copies border averages into the blending strip for each
// requested direction. Directions are applied North, West, South, East
// whatever order they are given in. West and South overlap the slot before
// them, so later directions win shared slots.
func BlendingHeights(border [16]float64, dirs []Direction) [16]float64 {
	var out [16]float64
	for i := range out {
		out[i] = NoBlending
	}
	for _, d := range []Direction{North, West, South, East} {
		if !hasDirection(dirs, d) {
			continue
		}
		switch d {
		case North:
			copy(out[0:4], border[0:4])
		case West:
			copy(out[3:7], border[4:8])
		case South:
			copy(out[7:11], border[8:12])
			out[11] = border[11]
		case East:
			copy(out[12:16], border[12:16])
		}
	}
	return out
}

func hasDirection(dirs []Direction, d Direction) bool {
	for _, x := range dirs {
		if x == d {
			return true
		}
	}
	return false
}
