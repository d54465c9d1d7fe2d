// Package anvil implements the Anvil region container: a 32x32 grid of
// chunk slots stored in a single .mca file.
//
// The file starts with two 4 KiB header sectors. The first holds 1024
// big-endian location entries ((sectorOffset << 8) | sectorCount), the second
// 1024 modification timestamps. Chunk payloads follow, each beginning at a
// sector boundary with a 4 byte length, 1 compression byte and the
// compressed data.
package anvil

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"time"
)

const (
	sectorSize    = 4096
	headerSectors = 2 // location table + timestamp table
	headerSize    = headerSectors * sectorSize

	// Slots is the number of chunk slots in a region.
	Slots = 32 * 32

	maxSectorCount  = 0xFF
	maxSectorOffset = 1<<24 - 1
)

var (
	ErrChunkNotFound          = errors.New("chunk not in region file")
	ErrMalformedRegion        = errors.New("malformed region file")
	ErrUnsupportedCompression = errors.New("unsupported chunk compression")
	ErrChunkTooLarge          = errors.New("chunk too large for region file")
)

// Pos is a slot position inside a region, both axes in [0, 32).
type Pos struct {
	X, Z int
}

func (p Pos) index() (int, error) {
	if p.X < 0 || p.X >= 32 || p.Z < 0 || p.Z >= 32 {
		return 0, fmt.Errorf("slot %d,%d outside region", p.X, p.Z)
	}
	return p.X + p.Z*32, nil
}

// Storage is the random-access backing of a region.
type Storage interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
}

// Region is an open region container. It is not safe for concurrent use.
type Region struct {
	s    Storage
	size int64

	locations  [Slots]uint32
	timestamps [Slots]uint32

	// Compression used for written chunks.
	Compression Compression

	now func() time.Time
}

// Load reads the header of a region stored in s, which holds size bytes.
func Load(s Storage, size int64) (*Region, error) {
	if size < headerSize {
		return nil, fmt.Errorf("%w: %d byte header", ErrMalformedRegion, size)
	}

	var header [headerSize]byte
	if _, err := s.ReadAt(header[:], 0); err != nil {
		return nil, fmt.Errorf("read region header: %w", err)
	}

	r := &Region{s: s, size: size, Compression: CompressionZlib, now: time.Now}
	for i := 0; i < Slots; i++ {
		r.locations[i] = binary.BigEndian.Uint32(header[i*4 : i*4+4])
		r.timestamps[i] = binary.BigEndian.Uint32(header[sectorSize+i*4 : sectorSize+i*4+4])
	}
	return r, nil
}

// Open opens an existing region file for reading and writing.
func Open(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open region file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat region file: %w", err)
	}
	r, err := Load(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Create writes an empty region file at path, replacing any existing file.
func Create(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create region file: %w", err)
	}
	if _, err := f.WriteAt(make([]byte, headerSize), 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("write region header: %w", err)
	}
	return &Region{s: f, size: headerSize, Compression: CompressionZlib, now: time.Now}, nil
}

// Close releases the backing storage.
func (r *Region) Close() error {
	return r.s.Close()
}

// Exists reports whether slot p holds a chunk.
func (r *Region) Exists(p Pos) bool {
	idx, err := p.index()
	return err == nil && r.locations[idx] != 0
}

// Timestamp returns the last modification time recorded for slot p.
func (r *Region) Timestamp(p Pos) (time.Time, bool) {
	idx, err := p.index()
	if err != nil || r.locations[idx] == 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(r.timestamps[idx]), 0), true
}

// Read returns the decompressed payload stored in slot p.
func (r *Region) Read(p Pos) ([]byte, error) {
	idx, err := p.index()
	if err != nil {
		return nil, err
	}
	loc := r.locations[idx]
	if loc == 0 {
		return nil, ErrChunkNotFound
	}

	offset, count := int64(loc>>8), int64(loc&0xFF)
	if offset < headerSectors || count == 0 || offset*sectorSize >= r.size {
		return nil, fmt.Errorf("%w: slot %d,%d points at sectors %d+%d", ErrMalformedRegion, p.X, p.Z, offset, count)
	}

	var header [5]byte
	if _, err := r.s.ReadAt(header[:], offset*sectorSize); err != nil {
		return nil, fmt.Errorf("read chunk header: %w", err)
	}
	length := int64(binary.BigEndian.Uint32(header[0:4]))
	if length < 1 || length+4 > count*sectorSize {
		return nil, fmt.Errorf("%w: slot %d,%d has length %d", ErrMalformedRegion, p.X, p.Z, length)
	}

	payload := make([]byte, length-1)
	if _, err := r.s.ReadAt(payload, offset*sectorSize+5); err != nil {
		return nil, fmt.Errorf("read chunk payload: %w", err)
	}
	return decompress(Compression(header[4]), payload)
}

// Write compresses data and stores it in slot p, replacing any previous
// payload. The slot's own sectors are reused when the new payload fits.
func (r *Region) Write(p Pos, data []byte) error {
	idx, err := p.index()
	if err != nil {
		return err
	}

	compressed, err := compress(r.Compression, data)
	if err != nil {
		return fmt.Errorf("compress chunk %d,%d: %w", p.X, p.Z, err)
	}

	// Chunk payload: length (4 bytes) + compression (1 byte) + compressed NBT.
	payloadLen := uint32(len(compressed)) + 1
	totalLen := 4 + int64(payloadLen)
	sectorCount := (totalLen + sectorSize - 1) / sectorSize
	if sectorCount > maxSectorCount {
		return fmt.Errorf("%w: %d sectors", ErrChunkTooLarge, sectorCount)
	}

	offset := r.allocate(idx, sectorCount)
	if offset > maxSectorOffset {
		return fmt.Errorf("%w: region full", ErrChunkTooLarge)
	}

	// Pad to sector boundary.
	buf := make([]byte, sectorCount*sectorSize)
	binary.BigEndian.PutUint32(buf[0:4], payloadLen)
	buf[4] = byte(r.Compression)
	copy(buf[5:], compressed)
	if _, err := r.s.WriteAt(buf, offset*sectorSize); err != nil {
		return fmt.Errorf("write chunk data: %w", err)
	}
	if end := (offset + sectorCount) * sectorSize; end > r.size {
		r.size = end
	}

	r.locations[idx] = uint32(offset)<<8 | uint32(sectorCount)
	r.timestamps[idx] = uint32(r.now().Unix())
	return r.writeEntry(idx)
}

// Remove clears slot p. Removing an empty slot is a no-op.
func (r *Region) Remove(p Pos) error {
	idx, err := p.index()
	if err != nil {
		return err
	}
	if r.locations[idx] == 0 {
		return nil
	}
	r.locations[idx] = 0
	r.timestamps[idx] = 0
	return r.writeEntry(idx)
}

// Occupied yields every non-empty slot in header order.
func (r *Region) Occupied() iter.Seq[Pos] {
	return func(yield func(Pos) bool) {
		for i, loc := range r.locations {
			if loc == 0 {
				continue
			}
			if !yield(Pos{X: i % 32, Z: i / 32}) {
				return
			}
		}
	}
}

// Len returns the number of occupied slots.
func (r *Region) Len() int {
	n := 0
	for _, loc := range r.locations {
		if loc != 0 {
			n++
		}
	}
	return n
}

// allocate picks the first sector offset able to hold count sectors for slot
// idx. Sectors owned by idx itself are treated as free.
func (r *Region) allocate(idx int, count int64) int64 {
	if loc := r.locations[idx]; loc != 0 && int64(loc&0xFF) >= count {
		return int64(loc >> 8)
	}

	used := make(map[int64]bool)
	for i, loc := range r.locations {
		if i == idx || loc == 0 {
			continue
		}
		off, n := int64(loc>>8), int64(loc&0xFF)
		for s := off; s < off+n; s++ {
			used[s] = true
		}
	}

	start, run := int64(headerSectors), int64(0)
	for s := int64(headerSectors); run < count; s++ {
		if used[s] {
			start, run = s+1, 0
			continue
		}
		run++
	}
	return start
}

func (r *Region) writeEntry(idx int) error {
	var entry [4]byte
	binary.BigEndian.PutUint32(entry[:], r.locations[idx])
	if _, err := r.s.WriteAt(entry[:], int64(idx*4)); err != nil {
		return fmt.Errorf("write location: %w", err)
	}
	binary.BigEndian.PutUint32(entry[:], r.timestamps[idx])
	if _, err := r.s.WriteAt(entry[:], int64(sectorSize+idx*4)); err != nil {
		return fmt.Errorf("write timestamp: %w", err)
	}
	return nil
}
