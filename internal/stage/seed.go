package stage

import (
	"log/slog"
	"math/rand/v2"

	"github.com/OCharnyshevich/worldtrim/internal/world"
)

// RandomizeSeed replaces the world seed with a random value and returns it.
func RandomizeSeed(w *world.World, log *slog.Logger) (int64, error) {
	return SetSeed(w, int64(rand.Uint64()), log)
}

// SetSeed replaces the world seed with seed.
func SetSeed(w *world.World, seed int64, log *slog.Logger) (int64, error) {
	level, err := w.Level()
	if err != nil {
		return 0, err
	}
	old, err := world.SetSeed(level, seed)
	if err != nil {
		return 0, err
	}
	if err := w.SaveLevel(level); err != nil {
		return 0, err
	}
	log.Info("set seed", "from", old, "to", seed)
	return seed, nil
}
