package world

import (
	"errors"
	"math"
	"testing"
)

func TestDecodeHeightmapAllOnes(t *testing.T) {
	// Every 9 bit field set: 7 fields fill the low 63 bits.
	words := make([]int64, 37)
	for i := range words {
		words[i] = math.MaxInt64
	}

	hm, err := DecodeHeightmap(words)
	if err != nil {
		t.Fatalf("DecodeHeightmap failed: %v", err)
	}
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			if hm[z][x] != 447 {
				t.Fatalf("expected 447 at %d,%d, got %d", x, z, hm[z][x])
			}
		}
	}
}

func TestDecodeHeightmapTooShort(t *testing.T) {
	if _, err := DecodeHeightmap(make([]int64, 36)); !errors.Is(err, ErrBadHeightmap) {
		t.Fatalf("expected ErrBadHeightmap, got %v", err)
	}
	if _, err := DecodeHeightmap(nil); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestHeightmapRoundTrip(t *testing.T) {
	var hm Heightmap
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			hm[z][x] = int16(z*16+x) - 64
		}
	}
	words, err := EncodeHeightmap(hm)
	if err != nil {
		t.Fatalf("EncodeHeightmap failed: %v", err)
	}
	if len(words) != 37 {
		t.Fatalf("expected 37 words, got %d", len(words))
	}
	got, err := DecodeHeightmap(words)
	if err != nil {
		t.Fatalf("DecodeHeightmap failed: %v", err)
	}
	if got != hm {
		t.Fatal("decoded heightmap differs from encoded one")
	}

	hm[3][3] = 448
	if _, err := EncodeHeightmap(hm); err == nil {
		t.Fatal("expected error for height above table range")
	}
}

func TestDecodeHeightmapFieldOrder(t *testing.T) {
	words := make([]int64, 37)
	// Column 0 is the low 9 bits of word 0, column 7 the low bits of word 1.
	words[0] = 64 + 10 | (64+20)<<9
	words[1] = 64 + 30

	hm, err := DecodeHeightmap(words)
	if err != nil {
		t.Fatalf("DecodeHeightmap failed: %v", err)
	}
	if hm[0][0] != 10 || hm[0][1] != 20 || hm[0][7] != 30 {
		t.Fatalf("unexpected columns %d %d %d", hm[0][0], hm[0][1], hm[0][7])
	}
	if hm[0][2] != -64 {
		t.Fatalf("expected empty field to decode as -64, got %d", hm[0][2])
	}
}

func TestBorderHeightsTraversal(t *testing.T) {
	var hm Heightmap
	for i := 0; i < 16; i++ {
		hm[0][i] = int16(100 + i)  // north row
		hm[i][0] = int16(200 + i)  // west column
		hm[i][15] = int16(300 + i) // east column
		hm[15][i] = int16(400 + i) // south row
	}
	// Corners sit on two edges, zero them so each run is unambiguous.
	hm[0][0], hm[0][15], hm[15][0], hm[15][15] = 0, 0, 0, 0

	got := BorderHeights(hm, 0.5)

	want := [16]float64{
		// north reversed: 15..12, 11..8, 7..4, 3..0 (corners 0 at 15 and 0)
		math.Floor(float64(0+114+113+112)/4) + 0.5,
		math.Floor(float64(111+110+109+108)/4) + 0.5,
		math.Floor(float64(107+106+105+104)/4) + 0.5,
		math.Floor(float64(103+102+101+0)/4) + 0.5,
		// west top to bottom
		math.Floor(float64(0+201+202+203)/4) + 0.5,
		math.Floor(float64(204+205+206+207)/4) + 0.5,
		math.Floor(float64(208+209+210+211)/4) + 0.5,
		math.Floor(float64(212+213+214+0)/4) + 0.5,
		// east bottom to top
		math.Floor(float64(0+314+313+312)/4) + 0.5,
		math.Floor(float64(311+310+309+308)/4) + 0.5,
		math.Floor(float64(307+306+305+304)/4) + 0.5,
		math.Floor(float64(303+302+301+0)/4) + 0.5,
		// south forward
		math.Floor(float64(0+401+402+403)/4) + 0.5,
		math.Floor(float64(404+405+406+407)/4) + 0.5,
		math.Floor(float64(408+409+410+411)/4) + 0.5,
		math.Floor(float64(412+413+414+0)/4) + 0.5,
	}
	if got != want {
		t.Fatalf("BorderHeights() =\n%v\nwant\n%v", got, want)
	}
}

func TestBorderHeightsFloorsNegative(t *testing.T) {
	var hm Heightmap
	hm[0][15], hm[0][14], hm[0][13], hm[0][12] = -1, -1, -1, 0

	got := BorderHeights(hm, 0)
	if got[0] != -1 {
		t.Fatalf("expected floor(-0.75) = -1, got %v", got[0])
	}
}

func TestBlendingHeightsCorner(t *testing.T) {
	var hm Heightmap
	for z := range hm {
		for x := range hm[z] {
			hm[z][x] = 447
		}
	}
	got := BlendingHeights(BorderHeights(hm, 0), []Direction{North, West})

	for i := 0; i < 7; i++ {
		if got[i] != 447 {
			t.Errorf("expected 447 at %d, got %v", i, got[i])
		}
	}
	for i := 7; i < 16; i++ {
		if got[i] != NoBlending {
			t.Errorf("expected sentinel at %d, got %v", i, got[i])
		}
	}
}

func TestBlendingHeightsRanges(t *testing.T) {
	var border [16]float64
	for i := range border {
		border[i] = float64(i)
	}

	tests := []struct {
		name string
		dirs []Direction
		want map[int]float64
	}{
		{"north", []Direction{North}, map[int]float64{0: 0, 1: 1, 2: 2, 3: 3}},
		{"west", []Direction{West}, map[int]float64{3: 4, 4: 5, 5: 6, 6: 7}},
		{"south", []Direction{South}, map[int]float64{7: 8, 8: 9, 9: 10, 10: 11, 11: 11}},
		{"east", []Direction{East}, map[int]float64{12: 12, 13: 13, 14: 14, 15: 15}},
		// West overwrites slot 3 regardless of argument order.
		{"north west", []Direction{West, North}, map[int]float64{0: 0, 1: 1, 2: 2, 3: 4, 4: 5, 5: 6, 6: 7}},
		{"north south", []Direction{North, South}, map[int]float64{0: 0, 1: 1, 2: 2, 3: 3, 7: 8, 8: 9, 9: 10, 10: 11, 11: 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlendingHeights(border, tt.dirs)
			for i, v := range got {
				want, ok := tt.want[i]
				if !ok {
					want = NoBlending
				}
				if v != want {
					t.Errorf("slot %d = %v, want %v", i, v, want)
				}
			}
		})
	}
}
