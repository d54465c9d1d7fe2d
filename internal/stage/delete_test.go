package stage

import (
	"reflect"
	"slices"
	"testing"

	"github.com/OCharnyshevich/worldtrim/internal/config"
	"github.com/OCharnyshevich/worldtrim/internal/coord"
	"github.com/OCharnyshevich/worldtrim/internal/world"
	"github.com/OCharnyshevich/worldtrim/internal/world/worldtest"
)

type recordingBackup struct {
	names []string
}

func (b *recordingBackup) Save(name, src string) error {
	b.names = append(b.names, name)
	return nil
}

// scenarioWorld builds an overworld with the four full regions around the
// origin and a stray region 3,3 holding two chunks.
func scenarioWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New(t.TempDir(), discardLogger())
	dim := w.Dimension(world.Overworld)
	for _, r := range []coord.Coord{{X: -1, Z: -1}, {X: -1, Z: 0}, {X: 0, Z: -1}, {X: 0, Z: 0}} {
		worldtest.FullRegion(t, dim.Regions, r, 64)
	}
	worldtest.FillRegion(t, dim.Regions, coord.Coord{X: 3, Z: 3}, []coord.Coord{{X: 96, Z: 96}, {X: 100, Z: 127}}, 64)
	return w
}

func TestDeleteChunksScenario(t *testing.T) {
	w := scenarioWorld(t)
	dim := w.Dimension(world.Overworld)
	cfg := &config.Dimension{Persistent: []config.PersistentArea{area(-2, -2, 2, 2)}}
	bk := &recordingBackup{}

	res, err := DeleteChunks(dim, cfg, bk, discardLogger())
	if err != nil {
		t.Fatalf("DeleteChunks failed: %v", err)
	}
	if res.Regions != 1 {
		t.Fatalf("expected 1 deleted region, got %d", res.Regions)
	}
	if res.Chunks != 4*1024-25 {
		t.Fatalf("expected %d deleted chunks, got %d", 4*1024-25, res.Chunks)
	}
	if res.EntityRegions != 0 || res.EntityChunks != 0 {
		t.Fatalf("expected entities untouched, got %+v", res)
	}

	regions, err := dim.Regions.List()
	if err != nil {
		t.Fatal(err)
	}
	if want := []coord.Coord{{X: -1, Z: -1}, {X: -1, Z: 0}, {X: 0, Z: -1}, {X: 0, Z: 0}}; !slices.Equal(regions, want) {
		t.Fatalf("expected regions %v, got %v", want, regions)
	}

	var remaining []coord.Coord
	for _, r := range regions {
		remaining = append(remaining, worldtest.Chunks(t, dim.Regions, r)...)
	}
	slices.SortFunc(remaining, coord.Compare)
	var want []coord.Coord
	for x := int64(-2); x <= 2; x++ {
		for z := int64(-2); z <= 2; z++ {
			want = append(want, coord.Coord{X: x, Z: z})
		}
	}
	if !slices.Equal(remaining, want) {
		t.Fatalf("expected exactly the 25 chunks of the area, got %d: %v", len(remaining), remaining)
	}

	wantBackups := []string{
		"overworld/region/r.3.3.mca",
		"overworld/region/r.-1.-1.mca",
		"overworld/region/r.-1.0.mca",
		"overworld/region/r.0.-1.mca",
		"overworld/region/r.0.0.mca",
	}
	if !slices.Equal(bk.names, wantBackups) {
		t.Fatalf("expected backups %v, got %v", wantBackups, bk.names)
	}
}

func TestDeleteChunksKeepsContentUnmodified(t *testing.T) {
	w := scenarioWorld(t)
	dim := w.Dimension(world.Overworld)

	read := func(abs coord.Coord) world.Compound {
		t.Helper()
		r, ok, err := dim.Regions.OpenForChunk(abs)
		if err != nil || !ok {
			t.Fatalf("open region for %s: ok=%v err=%v", abs, ok, err)
		}
		defer r.Close()
		c, err := r.ReadChunk(abs)
		if err != nil {
			t.Fatal(err)
		}
		return c.Data
	}

	before := read(coord.Coord{X: -1, Z: 2})
	cfg := &config.Dimension{Persistent: []config.PersistentArea{area(-2, -2, 2, 2)}}
	if _, err := DeleteChunks(dim, cfg, nil, discardLogger()); err != nil {
		t.Fatalf("DeleteChunks failed: %v", err)
	}
	if after := read(coord.Coord{X: -1, Z: 2}); !reflect.DeepEqual(before, after) {
		t.Fatal("expected kept chunk to be unchanged")
	}
}

func TestDeleteChunksIdempotent(t *testing.T) {
	w := scenarioWorld(t)
	dim := w.Dimension(world.Overworld)
	cfg := &config.Dimension{Persistent: []config.PersistentArea{area(-2, -2, 2, 2)}}

	if _, err := DeleteChunks(dim, cfg, nil, discardLogger()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	bk := &recordingBackup{}
	res, err := DeleteChunks(dim, cfg, bk, discardLogger())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if res != (DeleteResult{}) {
		t.Fatalf("expected nothing deleted on second run, got %+v", res)
	}
	if len(bk.names) != 0 {
		t.Fatalf("expected no backups on second run, got %v", bk.names)
	}
}

func TestDeleteChunksEmptyRegionKept(t *testing.T) {
	w := world.New(t.TempDir(), discardLogger())
	dim := w.Dimension(world.Overworld)
	// Region 0,0 is kept through the area's corner but holds none of its chunks.
	worldtest.FillRegion(t, dim.Regions, coord.Coord{}, []coord.Coord{{X: 0, Z: 0}, {X: 5, Z: 5}}, 64)
	cfg := &config.Dimension{Persistent: []config.PersistentArea{area(20, 20, 40, 40)}}

	res, err := DeleteChunks(dim, cfg, nil, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if res.Regions != 0 || res.Chunks != 2 {
		t.Fatalf("expected 0 regions and 2 chunks deleted, got %+v", res)
	}
	r, ok, err := dim.Regions.Open(coord.Coord{})
	if err != nil || !ok {
		t.Fatalf("expected trimmed region to remain, ok=%v err=%v", ok, err)
	}
	defer r.Close()
	if r.Len() != 0 {
		t.Fatalf("expected empty region, got %d chunks", r.Len())
	}
}

func TestDeleteChunksCullEntities(t *testing.T) {
	w := scenarioWorld(t)
	dim := w.Dimension(world.Overworld)
	worldtest.FillRegion(t, dim.Entities, coord.Coord{}, []coord.Coord{{X: 0, Z: 0}, {X: 3, Z: 3}, {X: 31, Z: 0}}, 64)
	worldtest.FillRegion(t, dim.Entities, coord.Coord{X: -5, Z: 0}, []coord.Coord{{X: -160, Z: 0}}, 64)

	cfg := &config.Dimension{Persistent: []config.PersistentArea{area(-2, -2, 2, 2)}}
	res, err := DeleteChunks(dim, cfg, nil, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if res.EntityRegions != 0 || res.EntityChunks != 0 {
		t.Fatalf("expected entities untouched without culling, got %+v", res)
	}

	cfg.CullEntities = true
	res, err = DeleteChunks(dim, cfg, nil, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if res.EntityRegions != 1 || res.EntityChunks != 2 {
		t.Fatalf("expected 1 entity region and 2 entity chunks deleted, got %+v", res)
	}
	if got := worldtest.Chunks(t, dim.Entities, coord.Coord{}); !slices.Equal(got, []coord.Coord{{X: 0, Z: 0}}) {
		t.Fatalf("expected only entity chunk 0,0 left, got %v", got)
	}
}

func TestDeleteChunksDimensionsIndependent(t *testing.T) {
	w := world.New(t.TempDir(), discardLogger())
	nether := w.Dimension(world.Nether)
	end := w.Dimension(world.End)
	worldtest.FillRegion(t, nether.Regions, coord.Coord{X: 4, Z: 4}, []coord.Coord{{X: 130, Z: 130}}, 64)
	worldtest.FillRegion(t, end.Regions, coord.Coord{X: 4, Z: 4}, []coord.Coord{{X: 130, Z: 130}}, 64)

	cfg := &config.Dimension{Persistent: []config.PersistentArea{area(128, 128, 140, 140)}}
	if _, err := DeleteChunks(end, cfg, nil, discardLogger()); err != nil {
		t.Fatal(err)
	}
	res, err := DeleteChunks(nether, &config.Dimension{}, nil, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if res.Regions != 1 {
		t.Fatalf("expected nether region deleted, got %+v", res)
	}
	if got := worldtest.Chunks(t, end.Regions, coord.Coord{X: 4, Z: 4}); len(got) != 1 {
		t.Fatalf("expected end chunk kept, got %v", got)
	}
}
