package modio

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderFields(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{
		0x01,
		0xfe,
		0x34, 0x12,
		0x12, 0x34,
		0x78, 0x56, 0x34, 0x12,
		'a', 'b', 0, ' ',
	}))
	require.Equal(t, uint8(1), r.U8())
	require.Equal(t, int8(-2), r.S8())
	require.Equal(t, uint16(0x1234), r.U16LE())
	require.Equal(t, uint16(0x1234), r.U16BE())
	require.Equal(t, uint32(0x12345678), r.U32LE())
	require.Equal(t, int64(10), r.Tell())
	require.Equal(t, "ab", r.String(4))
	require.NoError(t, r.Err())
	require.False(t, r.EOF())
}

func TestReaderStickyEOF(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2, 3}))
	require.Equal(t, uint16(0x0201), r.U16LE())
	require.Equal(t, uint16(0), r.U16LE())
	require.True(t, r.EOF())
	require.ErrorIs(t, r.Err(), io.ErrUnexpectedEOF)

	// later reads stay zero, even if seeking back
	r.Seek(0, io.SeekStart)
	require.Equal(t, uint8(0), r.U8())
	require.Equal(t, []byte{0, 0}, r.Bytes(2))
}

func TestReaderSeekAndWarn(t *testing.T) {
	r := NewReader(bytes.NewReader(make([]byte, 32)))
	r.Seek(16, io.SeekStart)
	r.Skip(4)
	require.Equal(t, int64(20), r.Tell())
	r.Warnf("odd value %d", 7)
	require.Len(t, r.Warnings(), 1)
	require.Equal(t, "offset 0x14: odd value 7", r.Warnings()[0].String())
}

func TestLoadError(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := error(NewLoadError("mod", ErrHeaderTruncated, cause))
	require.ErrorIs(t, err, ErrHeaderTruncated)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, "mod: failure loading module header: unexpected EOF", err.Error())
	require.Equal(t, KindFormat, KindOf(err))

	var le *LoadError
	require.True(t, errors.As(err, &le))
	require.Equal(t, "mod", le.Format)

	require.Equal(t, KindResource, KindOf(NewLoadError("", ErrOutOfHandles, nil)))
	require.Equal(t, KindIO, KindOf(NewLoadError("", ErrOpen, nil)))
	require.Equal(t, KindUnknown, KindOf(io.EOF))
	require.Equal(t, "unknown module format", NewLoadError("", ErrNotAModule, nil).Error())
}

func TestPeek(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))
	require.Equal(t, []byte("456"), Peek(r, 4, 3))
	require.Nil(t, Peek(r, 8, 3))
	require.NoError(t, Rewind(r))
}
