package world

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/worldtrim/internal/coord"
)

// Position is an actor position in block space.
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

func (p Position) String() string {
	return fmt.Sprintf("%g,%g,%g", p.X, p.Y, p.Z)
}

// Chunk returns the chunk containing p.
func (p Position) Chunk() coord.Coord {
	return coord.Coord{X: int64(math.Floor(p.X)), Z: int64(math.Floor(p.Z))}.BlockToChunk()
}

// Player is a decoded player record.
type Player struct {
	UUID uuid.UUID
	Data Compound
}

// Position reads the Pos list.
func (p *Player) Position() (Position, error) {
	pos, err := float64List(p.Data["Pos"])
	if err != nil || len(pos) != 3 {
		return Position{}, fmt.Errorf("player %s: %w: bad Pos", p.UUID, ErrMalformedRecord)
	}
	return Position{X: pos[0], Y: pos[1], Z: pos[2]}, nil
}

// SetPosition replaces the Pos list.
func (p *Player) SetPosition(pos Position) {
	p.Data["Pos"] = []float64{pos.X, pos.Y, pos.Z}
}

// Dimension reads the dimension the player is in.
func (p *Player) Dimension() (Kind, error) {
	id, ok := p.Data["Dimension"].(string)
	if !ok {
		return "", fmt.Errorf("player %s: %w: bad Dimension", p.UUID, ErrMalformedRecord)
	}
	kind, err := KindFromID(id)
	if err != nil {
		return "", fmt.Errorf("player %s: %w", p.UUID, err)
	}
	return kind, nil
}

// SetDimension moves the player record to another dimension.
func (p *Player) SetDimension(kind Kind) {
	p.Data["Dimension"] = kind.ID()
}
