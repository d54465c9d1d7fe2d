// Package backup keeps zstd-compressed copies of region files before they
// are deleted or trimmed.
package backup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const ext = ".zst"

// Archive is a directory of compressed file copies, addressed by their path
// relative to the world directory.
type Archive struct {
	dir string
	log *slog.Logger
}

// New returns an Archive rooted at dir. The directory is created on first
// save.
func New(dir string, log *slog.Logger) *Archive {
	return &Archive{dir: dir, log: log}
}

// Dir returns the archive directory.
func (a *Archive) Dir() string {
	return a.dir
}

func (a *Archive) path(name string) string {
	return filepath.Join(a.dir, filepath.FromSlash(name)+ext)
}

// Has reports whether a copy of name is stored.
func (a *Archive) Has(name string) bool {
	_, err := os.Stat(a.path(name))
	return err == nil
}

// Save compresses the file at src into the archive as name. The first copy
// wins: saving a name that is already archived is a no-op, so reruns keep the
// oldest version. A missing src is not an error.
func (a *Archive) Save(name, src string) (err error) {
	dst := a.path(name)
	if a.Has(name) {
		a.log.Debug("backup exists", "file", name)
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	tmp := dst + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	n, err := io.Copy(enc, bufio.NewReaderSize(in, 256*1024))
	if err != nil {
		enc.Close()
		return fmt.Errorf("compress %s: %w", name, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close zstd writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close backup file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("rename backup file: %w", err)
	}

	a.log.Debug("backed up file", "file", name, "bytes", n)
	return nil
}

// List returns the names of every archived copy, sorted.
func (a *Archive) List() ([]string, error) {
	var names []string
	err := filepath.WalkDir(a.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ext) {
			return nil
		}
		rel, err := filepath.Rel(a.dir, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(rel, ext)))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

type reader struct {
	*zstd.Decoder
	f *os.File
}

func (r reader) Close() error {
	r.Decoder.Close()
	return r.f.Close()
}

// Open returns a reader over the decompressed copy of name.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(a.path(name))
	if err != nil {
		return nil, fmt.Errorf("open backup %s: %w", name, err)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	return reader{Decoder: dec, f: f}, nil
}

// Restore decompresses name into dst, replacing it.
func (a *Archive) Restore(name, dst string) error {
	r, err := a.Open(name)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create restore dir: %w", err)
	}
	tmp := dst + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create restore file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("decompress %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close restore file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename restore file: %w", err)
	}
	return nil
}
