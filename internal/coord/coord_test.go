package coord

import (
	"errors"
	"math"
	"sort"
	"testing"
)

func TestChunkToRegionNegative(t *testing.T) {
	tests := []struct {
		chunk, want Coord
	}{
		{Coord{0, 0}, Coord{0, 0}},
		{Coord{31, 31}, Coord{0, 0}},
		{Coord{32, -32}, Coord{1, -1}},
		{Coord{-1, -1}, Coord{-1, -1}},
		{Coord{-32, -33}, Coord{-1, -2}},
		{Coord{math.MinInt64, math.MaxInt64}, Coord{math.MinInt64 >> 5, math.MaxInt64 >> 5}},
	}
	for _, tt := range tests {
		if got := tt.chunk.ChunkToRegion(); got != tt.want {
			t.Errorf("ChunkToRegion(%s) = %s, want %s", tt.chunk, got, tt.want)
		}
	}
}

func TestChunkToRegionMonotonic(t *testing.T) {
	prev := Coord{X: -100}.ChunkToRegion()
	for x := int64(-99); x <= 100; x++ {
		r := Coord{X: x}.ChunkToRegion()
		if r.X < prev.X {
			t.Fatalf("region of chunk %d is %d, expected >= %d", x, r.X, prev.X)
		}
		if r.X != x>>5 {
			t.Fatalf("region of chunk %d is %d, expected %d", x, r.X, x>>5)
		}
		prev = r
	}
}

func TestBlockToChunk(t *testing.T) {
	if got := (Coord{X: -1, Z: 17}).BlockToChunk(); got != (Coord{X: -1, Z: 1}) {
		t.Fatalf("expected -1,1, got %s", got)
	}
}

func TestCheckedArithmetic(t *testing.T) {
	if _, err := (Coord{X: math.MaxInt64}).Add(Coord{X: 1}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange on add overflow, got %v", err)
	}
	if _, err := (Coord{Z: math.MinInt64}).Sub(Coord{Z: 1}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange on sub overflow, got %v", err)
	}
	if _, err := (Coord{X: math.MaxInt64 / 2}).Mul(3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange on mul overflow, got %v", err)
	}
	if _, err := (Coord{X: math.MinInt64}).Mul(-1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange on MinInt64 * -1, got %v", err)
	}

	got, err := (Coord{X: -3, Z: 4}).Mul(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (Coord{X: -96, Z: 128}) {
		t.Fatalf("expected -96,128, got %s", got)
	}
	got, err = (Coord{X: -3, Z: 4}).Sub(Coord{X: -5, Z: 10})
	if err != nil || got != (Coord{X: 2, Z: -6}) {
		t.Fatalf("expected 2,-6, got %s (%v)", got, err)
	}
}

func TestRelativeRoundTrip(t *testing.T) {
	regions := []Coord{{0, 0}, {-1, -1}, {3, -7}, {-1000, 25}}
	for _, r := range regions {
		base := Coord{X: r.X * RegionSize, Z: r.Z * RegionSize}
		for dx := int64(0); dx < RegionSize; dx += 7 {
			for dz := int64(0); dz < RegionSize; dz += 5 {
				c := Coord{X: base.X + dx, Z: base.Z + dz}
				rel, err := MakeRelative(r, c)
				if err != nil {
					t.Fatalf("MakeRelative(%s, %s): %v", r, c, err)
				}
				abs, err := MakeAbsolute(r, rel)
				if err != nil {
					t.Fatalf("MakeAbsolute(%s, %s): %v", r, rel, err)
				}
				again, err := MakeRelative(r, abs)
				if err != nil {
					t.Fatalf("MakeRelative(%s, %s): %v", r, abs, err)
				}
				if abs != c || again != rel {
					t.Fatalf("round trip of %s in %s gave %s / %s", c, r, abs, again)
				}
			}
		}
	}
}

func TestRelativeOutsideRegion(t *testing.T) {
	tests := []struct {
		region, chunk Coord
	}{
		{Coord{0, 0}, Coord{-1, 0}},
		{Coord{0, 0}, Coord{32, 0}},
		{Coord{-1, -1}, Coord{0, -1}},
		{Coord{math.MaxInt64, 0}, Coord{0, 0}},
	}
	for _, tt := range tests {
		if _, err := MakeRelative(tt.region, tt.chunk); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("MakeRelative(%s, %s) error = %v, want ErrOutOfRange", tt.region, tt.chunk, err)
		}
	}
	if _, err := MakeAbsolute(Coord{}, Rel{X: 32}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for relative 32, got %v", err)
	}
}

func TestCompareOrder(t *testing.T) {
	cs := []Coord{{1, 0}, {0, 5}, {0, -5}, {-1, 100}}
	sort.Slice(cs, func(i, j int) bool { return Less(cs[i], cs[j]) })
	want := []Coord{{-1, 100}, {0, -5}, {0, 5}, {1, 0}}
	for i := range want {
		if cs[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, cs)
		}
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("-31, 42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (Coord{X: -31, Z: 42}) {
		t.Fatalf("expected -31,42, got %s", c)
	}
	for _, bad := range []string{"", "1", "1,2,3", "a,2", "1,b"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) succeeded, expected error", bad)
		}
	}
}

func TestRegionFileName(t *testing.T) {
	c := Coord{X: -1, Z: 20}
	name := RegionFileName(c, "mca")
	if name != "r.-1.20.mca" {
		t.Fatalf("expected r.-1.20.mca, got %s", name)
	}
	got, err := ParseRegionFileName(name, "mca")
	if err != nil || got != c {
		t.Fatalf("expected %s, got %s (%v)", c, got, err)
	}
	for _, bad := range []string{"level.dat", "r.1.mca", "r.1.2.mcr", "r.1.2.mca.tmp", "x.1.2.mca", "r.a.2.mca"} {
		if _, err := ParseRegionFileName(bad, "mca"); err == nil {
			t.Errorf("ParseRegionFileName(%q) succeeded, expected error", bad)
		}
	}
}
