package parser

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/QEStudios/unimod/driver"
	"github.com/QEStudios/unimod/parser/modio"
	"github.com/QEStudios/unimod/song"
)

// buildMOD writes a 4 channel M.K. file with one pattern and the given sample lengths in words.
func buildMOD(title string, lengths ...uint16) []byte {
	var b bytes.Buffer
	field := func(s string, n int) {
		f := make([]byte, n)
		copy(f, s)
		b.Write(f)
	}
	field(title, 20)
	for i := range 31 {
		field("", 22)
		var length uint16
		if i < len(lengths) {
			length = lengths[i]
		}
		binary.Write(&b, binary.BigEndian, length)
		b.Write([]byte{0, 64})
		binary.Write(&b, binary.BigEndian, uint16(0))
		binary.Write(&b, binary.BigEndian, uint16(1))
	}
	b.Write([]byte{1, 127})
	field("", 128)
	b.WriteString("M.K.")
	b.Write(make([]byte, 64*4*4))
	for i, l := range lengths {
		b.Write(bytes.Repeat([]byte{byte(i + 1)}, int(l)*2))
	}
	return b.Bytes()
}

type loadCall struct {
	name string
	data []byte
}

// recorder registers samples and can be told to run out of handles.
type recorder struct {
	*driver.NoSound
	limit    int
	loads    []loadCall
	unloaded []int16
}

func (r *recorder) SampleLoad(smp *song.Sample, data []byte) (int16, error) {
	if r.limit > 0 && len(r.loads) >= r.limit {
		return -1, driver.ErrNoHandles
	}
	r.loads = append(r.loads, loadCall{smp.Name, data})
	return int16(len(r.loads) + 9), nil
}

func (r *recorder) SampleUnload(h int16) {
	r.unloaded = append(r.unloaded, h)
}

func TestLoad(t *testing.T) {
	logger, hook := test.NewNullLogger()
	drv := &recorder{NoSound: driver.NewNoSound()}
	data := buildMOD("parser test", 4, 0, 2)

	s, err := Load(bytes.NewReader(data), drv, logger)
	require.NoError(t, err)
	require.Equal(t, "parser test", s.Name)
	require.Equal(t, "module loaded", hook.LastEntry().Message)
	require.Equal(t, "mod", hook.LastEntry().Data["format"])

	// the empty sample is skipped
	require.Len(t, drv.loads, 2)
	require.Equal(t, bytes.Repeat([]byte{1}, 8), drv.loads[0].data)
	require.Equal(t, bytes.Repeat([]byte{3}, 4), drv.loads[1].data)
	require.Equal(t, int16(10), s.Samples[0].Handle)
	require.Equal(t, int16(-1), s.Samples[1].Handle)
	require.Equal(t, int16(11), s.Samples[2].Handle)

	Unload(s, drv)
	require.Equal(t, []int16{10, 11}, drv.unloaded)
	require.Equal(t, int16(-1), s.Samples[0].Handle)
}

func TestClippedSample(t *testing.T) {
	logger, _ := test.NewNullLogger()
	drv := &recorder{NoSound: driver.NewNoSound()}
	data := buildMOD("", 4, 2)
	data = data[:len(data)-3]

	p := NewParser(bytes.NewReader(data), drv, logger)
	_, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, drv.loads[1].data, 1)
	require.Len(t, p.Warnings(), 1)
	require.Contains(t, p.Warnings()[0].Message, "clipped from 4 to 1 bytes")

	_, err = p.Parse()
	require.Error(t, err)
}

func TestOutOfHandles(t *testing.T) {
	logger, _ := test.NewNullLogger()
	drv := &recorder{NoSound: driver.NewNoSound(), limit: 2}

	s, err := Load(bytes.NewReader(buildMOD("", 1, 1, 1)), drv, logger)
	require.Nil(t, s)
	require.ErrorIs(t, err, modio.ErrOutOfHandles)
	require.ErrorIs(t, err, driver.ErrNoHandles)
	require.Equal(t, modio.KindResource, modio.KindOf(err))
	require.Equal(t, []int16{10, 11}, drv.unloaded)
}

func TestWithoutDriver(t *testing.T) {
	s, err := Load(bytes.NewReader(buildMOD("", 1)), nil, nil)
	require.NoError(t, err)
	require.Equal(t, int16(-1), s.Samples[0].Handle)
}

func TestErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := Load(bytes.NewReader([]byte("not a module at all")), nil, logger)
	require.ErrorIs(t, err, modio.ErrNotAModule)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.mod"), nil, logger)
	require.ErrorIs(t, err, modio.ErrOpen)
	require.Equal(t, modio.KindIO, modio.KindOf(err))

	// header present, pattern data cut
	data := buildMOD("", 1)
	_, err = Load(bytes.NewReader(data[:1100]), nil, logger)
	require.ErrorIs(t, err, modio.ErrPatternTruncated)
}

func TestDetect(t *testing.T) {
	data := buildMOD("detect me", 1)
	f, ok := Detect(bytes.NewReader(data))
	require.True(t, ok)
	require.Equal(t, "mod", f.Name())

	title, err := Title(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "detect me", title)

	_, ok = Detect(bytes.NewReader(nil))
	require.False(t, ok)
}
