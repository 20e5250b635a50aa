package unitrk

import (
	"bytes"
	"errors"
)

// A row's length byte stores the length in the low 5 bits
// and the repeat count minus one in the high 3 bits.
const (
	lengthMask  = 0x1f
	repeatShift = 5
	maxRepeat   = 8

	// MaxRowLength is the longest row in bytes, including its length byte.
	MaxRowLength = lengthMask
)

// ErrRowOverflow is returned by Dup when a row did not fit in MaxRowLength bytes.
var ErrRowOverflow = errors.New("unitrk: row longer than 31 bytes")

// Writer builds a single track, one row at a time.
// Identical consecutive rows are folded into one entry with a repeat count.
type Writer struct {
	buf      []byte
	rowStart int // offset of the length byte of the row being written
	lastRow  int // offset of the length byte of the previous row
	overflow bool
}

// NewWriter returns a Writer ready for its first row.
func NewWriter() *Writer {
	w := &Writer{buf: make([]byte, 0, 128)}
	w.Reset()
	return w
}

// Reset discards everything written so far.
func (w *Writer) Reset() {
	w.buf = append(w.buf[:0], 0)
	w.rowStart = 0
	w.lastRow = 0
	w.overflow = false
}

// Write appends a raw byte to the current row.
// Bytes that would push the row past MaxRowLength are dropped and reported by Dup.
func (w *Writer) Write(b byte) {
	if len(w.buf)-w.rowStart >= MaxRowLength {
		w.overflow = true
		return
	}
	w.buf = append(w.buf, b)
}

// Op appends an opcode and its operands to the current row.
func (w *Writer) Op(op Opcode, args ...byte) {
	w.Write(byte(op))
	for _, a := range args {
		w.Write(a)
	}
}

// Note appends a note event.
func (w *Writer) Note(note uint8) {
	w.Write(byte(OpNote))
	w.Write(note)
}

// Instrument appends an instrument change.
func (w *Writer) Instrument(ins uint8) {
	w.Write(byte(OpInstrument))
	w.Write(ins)
}

// PTEffect appends ProTracker effect eff (0x0-0xF) with its data byte.
// An arpeggio with no data does nothing, so it is not written.
func (w *Writer) PTEffect(eff, dat uint8) {
	if eff == 0 && dat == 0 {
		return
	}
	w.Write(byte(OpPTEffect0) + eff&0xf)
	w.Write(dat)
}

// VolEffect appends a volume column effect.
func (w *Writer) VolEffect(eff, dat uint8) {
	if eff == 0 && dat == 0 {
		return
	}
	w.Write(byte(OpVolEffects))
	w.Write(eff)
	w.Write(dat)
}

// Newline closes the current row and starts the next one.
func (w *Writer) Newline() {
	prev := w.buf[w.lastRow]
	repeat := int(prev>>repeatShift) + 1
	prevLen := int(prev & lengthMask)
	length := len(w.buf) - w.rowStart

	if w.rowStart != w.lastRow && repeat < maxRepeat && length == prevLen &&
		bytes.Equal(w.buf[w.lastRow+1:w.lastRow+prevLen], w.buf[w.rowStart+1:]) {
		w.buf[w.lastRow] += 1 << repeatShift
		w.buf = w.buf[:w.rowStart+1]
		return
	}

	w.buf[w.rowStart] = byte(length)
	w.lastRow = w.rowStart
	w.rowStart = len(w.buf)
	w.buf = append(w.buf, 0)
}

// Dup returns a copy of the finished track, zero terminated.
// A row that was not closed with Newline is discarded.
func (w *Writer) Dup() ([]byte, error) {
	if w.overflow {
		return nil, ErrRowOverflow
	}
	out := make([]byte, w.rowStart+1)
	copy(out, w.buf[:w.rowStart])
	return out, nil
}

// Size returns the number of bytes Dup would return.
func (w *Writer) Size() int {
	return w.rowStart + 1
}
