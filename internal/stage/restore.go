package stage

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/OCharnyshevich/worldtrim/internal/world"
)

// StageRestore puts archived region files back in place.
const StageRestore = "restore"

// Archive is a backup that can list and restore its copies. Names have the
// form <dimension>/<store>/<file>, as written by the deletion pass.
type Archive interface {
	List() ([]string, error)
	Restore(name, dst string) error
}

// Restore copies every archived region file back into w, replacing the
// current file. It returns the number of files restored.
func Restore(w *world.World, a Archive, log *slog.Logger) (int, error) {
	names, err := a.List()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, name := range names {
		dst, err := restorePath(w, name)
		if err != nil {
			return n, err
		}
		if err := a.Restore(name, dst); err != nil {
			return n, err
		}
		log.Debug("restored region file", "file", name, "path", dst)
		n++
	}
	log.Info("restored backups", "files", n)
	return n, nil
}

func restorePath(w *world.World, name string) (string, error) {
	parts := strings.Split(name, "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("restore %s: unexpected backup name", name)
	}
	kind, err := world.ParseKind(parts[0])
	if err != nil {
		return "", fmt.Errorf("restore %s: %w", name, err)
	}
	dim := w.Dimension(kind)
	switch parts[1] {
	case filepath.Base(dim.Regions.Dir()):
		return filepath.Join(dim.Regions.Dir(), parts[2]), nil
	case filepath.Base(dim.Entities.Dir()):
		return filepath.Join(dim.Entities.Dir(), parts[2]), nil
	}
	return "", fmt.Errorf("restore %s: unknown store %q", name, parts[1])
}
