package modio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/QEStudios/unimod/song"
)

// Reader reads little and big endian fields from a module file.
// The first failure sticks: later reads return zeros and Err reports it,
// so a loader can read a whole header and check once.
type Reader struct {
	r        io.ReadSeeker
	pos      int64
	err      error
	buf      [4]byte
	warnings []Warning
}

// NewReader returns a Reader positioned at the current offset of r.
func NewReader(r io.ReadSeeker) *Reader {
	rd := &Reader{r: r}
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		rd.err = err
	}
	rd.pos = pos
	return rd
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// EOF reports whether a read has failed.
func (r *Reader) EOF() bool {
	return r.err != nil
}

// Read fills p. It implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		clear(p)
		return 0, r.err
	}
	n, err := io.ReadFull(r.r, p)
	r.pos += int64(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		clear(p[n:])
	}
	return n, err
}

func (r *Reader) fill(n int) []byte {
	b := r.buf[:n]
	if _, err := r.Read(b); err != nil {
		clear(b)
	}
	return b
}

// U8 reads one byte. Past the end of the data it reads zero, as do the
// other fixed size readers.
func (r *Reader) U8() uint8 {
	return r.fill(1)[0]
}

// S8 reads a signed byte.
func (r *Reader) S8() int8 {
	return int8(r.U8())
}

// U16LE reads a little endian 16 bit word.
func (r *Reader) U16LE() uint16 {
	return binary.LittleEndian.Uint16(r.fill(2))
}

// S16LE reads a signed little endian 16 bit word.
func (r *Reader) S16LE() int16 {
	return int16(r.U16LE())
}

// U16BE reads a big endian 16 bit word.
func (r *Reader) U16BE() uint16 {
	return binary.BigEndian.Uint16(r.fill(2))
}

// U32LE reads a little endian 32 bit word.
func (r *Reader) U32LE() uint32 {
	return binary.LittleEndian.Uint32(r.fill(4))
}

// U32BE reads a big endian 32 bit word.
func (r *Reader) U32BE() uint32 {
	return binary.BigEndian.Uint32(r.fill(4))
}

// Bytes reads n bytes into a new slice.
func (r *Reader) Bytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		clear(b)
	}
	return b
}

// String reads a fixed size text field of n bytes, cleaned with song.CleanString.
func (r *Reader) String(n int) string {
	return song.CleanString(r.Bytes(n))
}

// Seek moves to an offset. whence follows io.Seeker.
func (r *Reader) Seek(offset int64, whence int) {
	if r.err != nil {
		return
	}
	pos, err := r.r.Seek(offset, whence)
	if err != nil {
		r.err = err
		return
	}
	r.pos = pos
}

// Skip moves n bytes forward.
func (r *Reader) Skip(n int64) {
	r.Seek(n, io.SeekCurrent)
}

// Tell returns the current offset.
func (r *Reader) Tell() int64 {
	return r.pos
}

// Warnf records a non fatal problem at the current offset.
func (r *Reader) Warnf(format string, args ...any) {
	r.warnings = append(r.warnings, Warning{
		Offset:  r.pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// Warnings returns the problems recorded so far.
func (r *Reader) Warnings() []Warning {
	return r.warnings
}

// Small struct for non-fatal warnings.
type Warning struct {
	Offset  int64
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("offset 0x%x: %s", w.Offset, w.Message)
}
