package unitrk

import (
	"errors"
	"fmt"
	"strings"
)

// FindRow returns the track slice starting at the entry that covers row,
// or nil if the track ends first.
func FindRow(track []byte, row int) []byte {
	if row < 0 {
		return nil
	}
	for pos := 0; pos < len(track); {
		c := track[pos]
		length := int(c & lengthMask)
		if length == 0 {
			return nil
		}
		repeat := int(c>>repeatShift) + 1
		if row < repeat {
			return track[pos:]
		}
		row -= repeat
		pos += length
	}
	return nil
}

// Rows returns the number of rows a track decodes to.
func Rows(track []byte) int {
	n := 0
	for pos := 0; pos < len(track); {
		c := track[pos]
		length := int(c & lengthMask)
		if length == 0 {
			break
		}
		n += int(c>>repeatShift) + 1
		pos += length
	}
	return n
}

// RowReader walks the opcodes of one row entry.
// The zero value reads as an empty row.
type RowReader struct {
	row []byte
	pc  int
	end int
}

// SetRow points the reader at a row entry as returned by FindRow.
func (r *RowReader) SetRow(row []byte) {
	r.row = row
	r.pc = 0
	r.end = 0
	if len(row) == 0 {
		return
	}
	r.pc = 1
	r.end = min(int(row[0]&lengthMask), len(row))
}

// Reset rewinds the reader to the first opcode of the current row.
func (r *RowReader) Reset() {
	r.pc = 1
}

// GetByte returns the next byte of the row, or 0 past its end.
func (r *RowReader) GetByte() byte {
	if r.pc >= r.end {
		return 0
	}
	b := r.row[r.pc]
	r.pc++
	return b
}

// Next returns the next opcode. Zero means the row is exhausted.
func (r *RowReader) Next() Opcode {
	return Opcode(r.GetByte())
}

// SkipOpcode discards the operands of op.
func (r *RowReader) SkipOpcode(op Opcode) {
	r.pc += Operands(op)
}

// Errors returned by Check.
var (
	ErrNoTerminator = errors.New("unitrk: track has no terminator")
	ErrBadLength    = errors.New("unitrk: row length runs past the end of the track")
	ErrBadOpcode    = errors.New("unitrk: invalid opcode")
	ErrBadOperands  = errors.New("unitrk: operands run past the end of the row")
)

// Check verifies that a track is well formed: every length byte fits the
// buffer, every opcode is known with its operands inside its row,
// and the track ends with a terminator.
func Check(track []byte) error {
	for pos := 0; pos < len(track); {
		c := track[pos]
		length := int(c & lengthMask)
		if length == 0 {
			if c != 0 {
				return fmt.Errorf("%w: byte 0x%02x at offset %d", ErrBadLength, c, pos)
			}
			return nil
		}
		if pos+length > len(track) {
			return fmt.Errorf("%w: offset %d", ErrBadLength, pos)
		}
		for pc := pos + 1; pc < pos+length; {
			op := Opcode(track[pc])
			if !op.isValid() {
				return fmt.Errorf("%w: %d at offset %d", ErrBadOpcode, uint8(op), pc)
			}
			pc += 1 + Operands(op)
			if pc > pos+length {
				return fmt.Errorf("%w: %s at offset %d", ErrBadOperands, op, pc)
			}
		}
		pos += length
	}
	return ErrNoTerminator
}

// Event is one decoded opcode with its operands.
type Event struct {
	Op   Opcode
	Args [2]byte
}

func (e Event) String() string {
	switch Operands(e.Op) {
	case 0:
		return e.Op.String()
	case 1:
		return fmt.Sprintf("%s %02X", e.Op, e.Args[0])
	default:
		return fmt.Sprintf("%s %02X %02X", e.Op, e.Args[0], e.Args[1])
	}
}

// DecodeRow returns the events of one row entry.
func DecodeRow(row []byte) []Event {
	var (
		r      RowReader
		events []Event
	)
	r.SetRow(row)
	for op := r.Next(); op != 0; op = r.Next() {
		e := Event{Op: op}
		for i := 0; i < Operands(op); i++ {
			e.Args[i] = r.GetByte()
		}
		events = append(events, e)
	}
	return events
}

// Decode expands a whole track into one event list per row.
func Decode(track []byte) [][]Event {
	var rows [][]Event
	for pos := 0; pos < len(track); {
		c := track[pos]
		length := int(c & lengthMask)
		if length == 0 || pos+length > len(track) {
			break
		}
		events := DecodeRow(track[pos:])
		for i := int(c>>repeatShift) + 1; i > 0; i-- {
			rows = append(rows, events)
		}
		pos += length
	}
	return rows
}

// FormatRow renders the events of a row as a compact string, e.g. "note 30 inst 01 A 0F".
func FormatRow(events []Event) string {
	var b strings.Builder
	for i, e := range events {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.String())
	}
	return b.String()
}
