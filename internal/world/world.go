// Package world provides access to the save directory of a world: region
// stores per dimension, chunk records, player records and level.dat.
package world

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// World is a save directory on disk.
type World struct {
	Dir string
	log *slog.Logger
}

// New returns a World rooted at dir.
func New(dir string, log *slog.Logger) *World {
	return &World{Dir: dir, log: log}
}

// Dimension returns the storage of the given dimension.
func (w *World) Dimension(kind Kind) *Dimension {
	return newDimension(kind, w.Dir, w.log)
}

func (w *World) levelPath() string {
	return filepath.Join(w.Dir, "level.dat")
}

func (w *World) playerPath(id uuid.UUID) string {
	return filepath.Join(w.Dir, "playerdata", id.String()+".dat")
}

// Level reads level.dat.
func (w *World) Level() (Compound, error) {
	c, err := readCompound(w.levelPath())
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return c, nil
}

// SaveLevel replaces level.dat.
func (w *World) SaveLevel(level Compound) error {
	if err := writeCompound(w.levelPath(), level); err != nil {
		return fmt.Errorf("save level: %w", err)
	}
	return nil
}

// Players lists the ids of every player record. Files other than
// <uuid>.dat are skipped.
func (w *World) Players() ([]uuid.UUID, error) {
	entries, err := os.ReadDir(filepath.Join(w.Dir, "playerdata"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read playerdata dir: %w", err)
	}

	var ids []uuid.UUID
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".dat")
		if !ok || e.IsDir() {
			continue
		}
		id, err := uuid.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("parse player file %s: %w", e.Name(), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Player reads the record of player id.
func (w *World) Player(id uuid.UUID) (*Player, error) {
	c, err := readCompound(w.playerPath(id))
	if err != nil {
		return nil, fmt.Errorf("read player %s: %w", id, err)
	}
	return &Player{UUID: id, Data: c}, nil
}

// SavePlayer writes p back to its record.
func (w *World) SavePlayer(p *Player) error {
	if err := os.MkdirAll(filepath.Join(w.Dir, "playerdata"), 0o755); err != nil {
		return fmt.Errorf("create playerdata dir: %w", err)
	}
	if err := writeCompound(w.playerPath(p.UUID), p.Data); err != nil {
		return fmt.Errorf("save player %s: %w", p.UUID, err)
	}
	return nil
}
