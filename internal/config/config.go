// Package config loads the worldtrim configuration: persistent areas per
// dimension, the default blending mode and the out-of-bounds player policy.
package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/worldtrim/internal/coord"
	"github.com/OCharnyshevich/worldtrim/internal/world"
)

// DefaultFile is the config file name looked up inside the world directory.
const DefaultFile = "worldtrim.yaml"

// Config holds the tool configuration.
type Config struct {
	// Backup is the path of the zstd archive region files are copied into
	// before they are deleted or trimmed. Empty disables backups.
	Backup string `yaml:"backup,omitempty"`
	// Report is the path of the SQLite run ledger. Empty disables it.
	Report string `yaml:"report,omitempty"`

	// Blending applies to persistent areas without their own override.
	Blending   Blending                  `yaml:"blending"`
	Players    Players                   `yaml:"players"`
	Dimensions map[world.Kind]*Dimension `yaml:"dimensions"`
}

// Blending controls how the border of a persistent area is blended.
type Blending struct {
	Enabled bool `yaml:"enabled"`
	// Offset is added to the computed border heights. Nil requests blending
	// without explicit heights.
	Offset *float64 `yaml:"offset,omitempty"`
}

// UnmarshalYAML defaults Enabled to true when the key is omitted.
func (b *Blending) UnmarshalYAML(n *yaml.Node) error {
	type plain Blending
	p := plain{Enabled: true}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*b = Blending(p)
	return nil
}

// Players configures player record handling.
type Players struct {
	OutOfBounds *OutOfBounds `yaml:"out-of-bounds,omitempty"`
}

// OutOfBounds selects what happens to players outside every persistent
// area. Exactly one policy is set.
type OutOfBounds struct {
	Relocate      *Relocate      `yaml:"relocate,omitempty"`
	Rescue        *Rescue        `yaml:"rescue,omitempty"`
	PersistChunks *PersistChunks `yaml:"persist-chunks,omitempty"`
}

// Relocate moves out-of-bounds players to a fixed position.
type Relocate struct {
	Dimension world.Kind     `yaml:"dimension"`
	Position  world.Position `yaml:"position"`
}

// Rescue moves players standing in deleted chunks to a position in their
// own dimension.
type Rescue struct {
	Position world.Position `yaml:"position"`
}

// PersistChunks keeps a square of Size chunks around every out-of-bounds
// player.
type PersistChunks struct {
	Size int64 `yaml:"size"`
}

// Dimension is the configuration of one dimension. Dimensions without an
// entry are left untouched.
type Dimension struct {
	CullEntities bool             `yaml:"cull-entities"`
	Persistent   []PersistentArea `yaml:"persistent"`
}

// PersistentArea is an inclusive rectangle of chunks kept across deletion.
type PersistentArea struct {
	TopLeft     coord.Coord `yaml:"top-left"`
	BottomRight coord.Coord `yaml:"bottom-right"`
	Blending    *Blending   `yaml:"blending,omitempty"`
}

func (a PersistentArea) String() string {
	return fmt.Sprintf("%s..%s", a.TopLeft, a.BottomRight)
}

// Contains reports whether chunk c lies inside the area, edges included.
func (a PersistentArea) Contains(c coord.Coord) bool {
	return a.TopLeft.X <= c.X && c.X <= a.BottomRight.X &&
		a.TopLeft.Z <= c.Z && c.Z <= a.BottomRight.Z
}

// Validate checks the corner ordering.
func (a PersistentArea) Validate() error {
	if a.TopLeft.X > a.BottomRight.X || a.TopLeft.Z > a.BottomRight.Z {
		return fmt.Errorf("area %s: top-left must not exceed bottom-right", a)
	}
	if a.TopLeft == a.BottomRight {
		return fmt.Errorf("area %s: single chunk areas are not allowed", a)
	}
	return nil
}

// DefaultConfig returns a Config that keeps nothing and blends without
// explicit heights.
func DefaultConfig() *Config {
	return &Config{
		Blending:   Blending{Enabled: true},
		Dimensions: make(map[world.Kind]*Dimension),
	}
}

// Dimension returns the configuration of kind, or nil if it is not
// configured.
func (c *Config) Dimension(kind world.Kind) *Dimension {
	return c.Dimensions[kind]
}

// BlendingFor returns the effective blending of area: its own override,
// otherwise the configured default.
func (c *Config) BlendingFor(area PersistentArea) Blending {
	if area.Blending != nil {
		return *area.Blending
	}
	return c.Blending
}

// ConfiguredKinds lists configured dimensions in processing order.
func (c *Config) ConfiguredKinds() []world.Kind {
	var kinds []world.Kind
	for _, k := range world.Kinds {
		if _, ok := c.Dimensions[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Normalize fills in empty dimension entries.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if c.Dimensions == nil {
		c.Dimensions = make(map[world.Kind]*Dimension)
	}
	for k, d := range c.Dimensions {
		if d == nil {
			c.Dimensions[k] = &Dimension{}
		}
	}
}

// Validate checks the configuration for values the schema cannot express.
func (c *Config) Validate() error {
	c.Normalize()
	for kind, d := range c.Dimensions {
		if _, err := world.ParseKind(string(kind)); err != nil {
			return err
		}
		for i, a := range d.Persistent {
			if err := a.Validate(); err != nil {
				return fmt.Errorf("dimensions.%s.persistent[%d]: %w", kind, i, err)
			}
		}
	}

	oob := c.Players.OutOfBounds
	if oob == nil {
		return nil
	}
	n := 0
	for _, set := range []bool{oob.Relocate != nil, oob.Rescue != nil, oob.PersistChunks != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("players.out-of-bounds must set exactly one policy, got %d", n)
	}
	if oob.Relocate != nil {
		if _, err := world.ParseKind(string(oob.Relocate.Dimension)); err != nil {
			return fmt.Errorf("players.out-of-bounds.relocate: %w", err)
		}
	}
	if oob.PersistChunks != nil && oob.PersistChunks.Size < 0 {
		return errors.New("players.out-of-bounds.persist-chunks.size must be >= 0")
	}
	return nil
}

// Merge applies flag values into cfg for the flags that were explicitly
// set on the command line. explicitFlags holds the flag names.
func Merge(cfg *Config, fromFlags *Config, explicitFlags map[string]bool) {
	if explicitFlags["backup"] {
		cfg.Backup = fromFlags.Backup
	}
	if explicitFlags["report"] {
		cfg.Report = fromFlags.Report
	}
}
