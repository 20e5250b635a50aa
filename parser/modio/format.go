package modio

import (
	"io"

	"github.com/QEStudios/unimod/song"
)

// A Format decodes one module file format.
type Format interface {
	// Name is a short identifier, e.g. "xm".
	Name() string
	// Test reports whether the file carries this format's signature.
	// It may move the read offset.
	Test(r io.ReadSeeker) bool
	// Load decodes a whole module, reading from offset 0.
	// On error the Song is nil.
	Load(r io.ReadSeeker) (*song.Song, []Warning, error)
	// Title reads only the song title.
	Title(r io.ReadSeeker) (string, error)
}

// Rewind seeks r back to the start of the file.
func Rewind(r io.ReadSeeker) error {
	_, err := r.Seek(0, io.SeekStart)
	return err
}

// Peek reads n bytes at offset without failing on short files.
// It returns nil if the bytes are not all there.
func Peek(r io.ReadSeeker, offset int64, n int) []byte {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil
	}
	return b
}
