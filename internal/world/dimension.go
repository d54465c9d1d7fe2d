package world

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Kind names one of the independent world spaces.
type Kind string

const (
	Overworld Kind = "overworld"
	Nether    Kind = "nether"
	End       Kind = "end"
)

// Kinds lists every dimension in processing order.
var Kinds = []Kind{Overworld, Nether, End}

// ParseKind validates a configured dimension name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Overworld, Nether, End:
		return k, nil
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// ID returns the namespaced identifier stored in player records.
func (k Kind) ID() string {
	switch k {
	case Nether:
		return "minecraft:the_nether"
	case End:
		return "minecraft:the_end"
	}
	return "minecraft:overworld"
}

// KindFromID is the inverse of Kind.ID.
func KindFromID(id string) (Kind, error) {
	switch id {
	case "minecraft:overworld":
		return Overworld, nil
	case "minecraft:the_nether":
		return Nether, nil
	case "minecraft:the_end":
		return End, nil
	}
	return "", fmt.Errorf("%w: unknown dimension %q", ErrMalformedRecord, id)
}

func (k Kind) subdir() string {
	switch k {
	case Nether:
		return "DIM-1"
	case End:
		return "DIM1"
	}
	return ""
}

// Dimension is the on-disk storage of one world space.
type Dimension struct {
	Kind     Kind
	Dir      string
	Regions  *Store
	Entities *Store
}

func newDimension(kind Kind, worldDir string, log *slog.Logger) *Dimension {
	dir := filepath.Join(worldDir, kind.subdir())
	log = log.With("dimension", string(kind))
	return &Dimension{
		Kind:     kind,
		Dir:      dir,
		Regions:  NewStore(filepath.Join(dir, "region"), log),
		Entities: NewStore(filepath.Join(dir, "entities"), log),
	}
}
