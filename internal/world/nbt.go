package world

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
)

// ErrMalformedRecord is returned when an expected tag is missing or has the
// wrong type. Save data is assumed well-formed, so this aborts the run.
var ErrMalformedRecord = errors.New("malformed record")

// Compound is a decoded NBT compound tag.
type Compound = map[string]any

// DecodeCompound parses an uncompressed NBT document.
func DecodeCompound(data []byte) (Compound, error) {
	c := make(Compound)
	if _, err := nbt.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode nbt: %w", err)
	}
	return c, nil
}

// EncodeCompound serializes c as an unnamed root compound.
func EncodeCompound(c Compound) ([]byte, error) {
	var buf bytes.Buffer
	if err := nbt.NewEncoder(&buf).Encode(c, ""); err != nil {
		return nil, fmt.Errorf("encode nbt: %w", err)
	}
	return buf.Bytes(), nil
}

// readCompound reads a gzip-compressed NBT file such as level.dat.
func readCompound(path string) (Compound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open gzip %s: %w", path, err)
	}
	defer zr.Close()

	c := make(Compound)
	if _, err := nbt.NewDecoder(zr).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return c, nil
}

// writeCompound writes c gzip-compressed, atomically using a temp file + rename.
func writeCompound(path string, c Compound) error {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("create gzip writer: %w", err)
	}
	if err := nbt.NewEncoder(zw).Encode(c, ""); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// compoundAt walks a path of nested compounds starting at c.
func compoundAt(c Compound, path ...string) (Compound, error) {
	cur := c
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: bad %s", ErrMalformedRecord, key)
		}
		cur = next
	}
	return cur, nil
}
