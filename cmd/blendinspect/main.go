package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/OCharnyshevich/worldtrim/internal/coord"
	"github.com/OCharnyshevich/worldtrim/internal/world"
)

func main() {
	var (
		worldDir  = flag.String("world", ".", "path to the world directory")
		dimension = flag.String("dimension", string(world.Overworld), "dimension: overworld, nether or end")
		chunk     = flag.String("chunk", "0,0", "chunk coordinate as x,z")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := inspect(*worldDir, *dimension, *chunk, log); err != nil {
		log.Error("inspect failed", "error", err)
		os.Exit(1)
	}
}

func inspect(dir, dimension, chunk string, log *slog.Logger) error {
	kind, err := world.ParseKind(dimension)
	if err != nil {
		return err
	}
	abs, err := coord.Parse(chunk)
	if err != nil {
		return err
	}

	dim := world.New(dir, log).Dimension(kind)
	r, ok, err := dim.Regions.OpenForChunk(abs)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("chunk %s: %w", abs, world.ErrChunkNotFound)
	}
	defer r.Close()

	c, err := r.ReadChunk(abs)
	if err != nil {
		return err
	}

	fmt.Printf("chunk %s in %s (slot %s)\n", c.Abs, kind, c.Rel)

	bd, heights, err := c.BlendingData()
	switch {
	case err != nil:
		fmt.Println("blending: none")
	case heights == nil:
		fmt.Printf("blending: uniform (sections %v..%v)\n", bd["min_section"], bd["max_section"])
	default:
		cells := make([]string, len(heights))
		for i, h := range heights {
			if h == world.NoBlending {
				cells[i] = "---"
				continue
			}
			cells[i] = fmt.Sprintf("%.1f", h)
		}
		fmt.Printf("blending heights: %s\n", strings.Join(cells, " "))
	}

	hm, err := c.OceanFloor()
	if err != nil {
		return err
	}
	fmt.Println("ocean floor:")
	for _, row := range hm {
		cells := make([]string, len(row))
		for i, h := range row {
			cells[i] = fmt.Sprintf("%4d", h)
		}
		fmt.Println(strings.Join(cells, ""))
	}
	return nil
}
