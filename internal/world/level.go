package world

import "fmt"

// Seed returns Data.WorldGenSettings.seed from a level record.
func Seed(level Compound) (int64, error) {
	settings, err := compoundAt(level, "Data", "WorldGenSettings")
	if err != nil {
		return 0, fmt.Errorf("level: %w", err)
	}
	seed, ok := settings["seed"].(int64)
	if !ok {
		return 0, fmt.Errorf("level: %w: bad seed", ErrMalformedRecord)
	}
	return seed, nil
}

// SetSeed replaces Data.WorldGenSettings.seed and returns the previous value.
func SetSeed(level Compound, seed int64) (int64, error) {
	old, err := Seed(level)
	if err != nil {
		return 0, err
	}
	settings, _ := compoundAt(level, "Data", "WorldGenSettings")
	settings["seed"] = seed
	return old, nil
}
