package mod

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/QEStudios/unimod/parser/modio"
	"github.com/QEStudios/unimod/song"
	"github.com/QEStudios/unimod/unitrk"
)

type testSample struct {
	name     string
	length   uint16 // words
	finetune uint8
	volume   uint8
	reppos   uint16
	replen   uint16
}

type fixture struct {
	title     string
	signature string
	channels  int
	positions []byte
	samples   map[int]testSample
	cells     map[[3]int][4]byte // pattern, row, channel
}

func (f fixture) build() []byte {
	var b bytes.Buffer
	writeFixed := func(s string, n int) {
		field := make([]byte, n)
		copy(field, s)
		b.Write(field)
	}
	writeFixed(f.title, 20)
	for i := range 31 {
		smp := f.samples[i]
		writeFixed(smp.name, 22)
		binary.Write(&b, binary.BigEndian, smp.length)
		b.WriteByte(smp.finetune)
		b.WriteByte(smp.volume)
		binary.Write(&b, binary.BigEndian, smp.reppos)
		binary.Write(&b, binary.BigEndian, smp.replen)
	}
	b.WriteByte(byte(len(f.positions)))
	b.WriteByte(127)
	writeFixed(string(f.positions), 128)
	b.WriteString(f.signature)

	numPatterns := 0
	for _, p := range f.positions {
		numPatterns = max(numPatterns, int(p)+1)
	}
	for pat := range numPatterns {
		for row := range 64 {
			for ch := range f.channels {
				c := f.cells[[3]int{pat, row, ch}]
				b.Write(c[:])
			}
		}
	}
	for i := range 31 {
		b.Write(make([]byte, int(f.samples[i].length)*2))
	}
	return b.Bytes()
}

// cell packs an Amiga note the way ProTracker stores it.
func cell(instrument uint8, period uint16, effect, data uint8) [4]byte {
	return [4]byte{
		instrument&0x10 | uint8(period>>8)&0xf,
		uint8(period),
		instrument<<4 | effect&0xf,
		data,
	}
}

func TestEmptyFourChannel(t *testing.T) {
	data := fixture{title: "empty", signature: "M.K.", channels: 4, positions: []byte{0}}.build()

	require.True(t, Test(bytes.NewReader(data)))
	s, err := Load(bytes.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	require.Equal(t, 4, s.NumChannels)
	require.Equal(t, 1, s.NumPatterns())
	require.Len(t, s.Tracks, 4)
	require.Equal(t, "empty", s.Name)
	require.Equal(t, "Protracker", s.ModType)
	require.Equal(t, uint8(6), s.InitSpeed)
	require.Equal(t, uint8(125), s.InitTempo)
	for _, track := range s.Tracks {
		require.Equal(t, 64, unitrk.Rows(track))
		for row := range 64 {
			require.Empty(t, unitrk.DecodeRow(unitrk.FindRow(track, row)))
		}
	}
}

func TestNotesAndEffects(t *testing.T) {
	f := fixture{
		signature: "6CHN",
		channels:  6,
		positions: []byte{1, 0, 1},
		samples: map[int]testSample{
			0: {name: "kick", length: 100, finetune: 1, volume: 48, reppos: 10, replen: 80},
			1: {name: "snare", length: 50, volume: 64, replen: 1},
		},
		cells: map[[3]int][4]byte{
			{1, 0, 0}: cell(1, 428, 0, 0),
			{1, 0, 5}: cell(2, 856, 0xd, 0x12),
			{1, 1, 0}: cell(0, 0, 0xc, 0x20),
			{0, 63, 2}: cell(17, 113, 0, 0),
		},
	}
	s, err := Load(bytes.NewReader(f.build()))
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	require.Equal(t, "Fasttracker", s.ModType)
	require.Equal(t, []uint16{1, 0, 1}, s.Positions)
	require.Equal(t, 2, s.NumPatterns())
	require.Len(t, s.Tracks, 12)

	row := unitrk.DecodeRow(unitrk.FindRow(s.Track(1, 0), 0))
	require.Equal(t, []unitrk.Event{
		{Op: unitrk.OpInstrument, Args: [2]byte{0}},
		{Op: unitrk.OpNote, Args: [2]byte{48}},
	}, row)

	// pattern break 0x12 means row 12
	row = unitrk.DecodeRow(unitrk.FindRow(s.Track(1, 5), 0))
	require.Equal(t, []unitrk.Event{
		{Op: unitrk.OpInstrument, Args: [2]byte{1}},
		{Op: unitrk.OpNote, Args: [2]byte{36}},
		{Op: unitrk.OpPTEffectD, Args: [2]byte{12}},
	}, row)

	row = unitrk.DecodeRow(unitrk.FindRow(s.Track(1, 0), 1))
	require.Equal(t, []unitrk.Event{{Op: unitrk.OpPTEffectC, Args: [2]byte{0x20}}}, row)

	row = unitrk.DecodeRow(unitrk.FindRow(s.Track(0, 2), 63))
	require.Equal(t, []unitrk.Event{
		{Op: unitrk.OpInstrument, Args: [2]byte{16}},
		{Op: unitrk.OpNote, Args: [2]byte{71}},
	}, row)

	kick := s.Samples[0]
	require.Equal(t, "kick", kick.Name)
	require.Equal(t, uint32(8413), kick.Speed)
	require.Equal(t, uint8(48), kick.Volume)
	require.Equal(t, uint32(200), kick.Length)
	require.Equal(t, uint32(20), kick.LoopStart)
	require.Equal(t, uint32(180), kick.LoopEnd)
	require.True(t, kick.Loops())

	snare := s.Samples[1]
	require.False(t, snare.Loops())
	require.Equal(t, uint32(2), snare.LoopEnd)

	headerAndPatterns := int64(headerSize + 2*64*6*4)
	require.Equal(t, headerAndPatterns, kick.SeekPos)
	require.Equal(t, headerAndPatterns+200, snare.SeekPos)
}

func TestLoopEndClamped(t *testing.T) {
	f := fixture{
		signature: "M.K.",
		channels:  4,
		positions: []byte{0},
		samples:   map[int]testSample{0: {length: 10, reppos: 8, replen: 8}},
	}
	s, err := Load(bytes.NewReader(f.build()))
	require.NoError(t, err)
	require.Equal(t, uint32(20), s.Samples[0].LoopEnd)
}

func TestPeriodToNote(t *testing.T) {
	require.Equal(t, uint8(0), PeriodToNote(0))
	require.Equal(t, uint8(1), PeriodToNote(1712))
	require.Equal(t, uint8(1), PeriodToNote(4000))
	require.Equal(t, uint8(2), PeriodToNote(1700))
	require.Equal(t, uint8(60), PeriodToNote(56))
	require.Equal(t, uint8(0), PeriodToNote(20))
}

func TestErrors(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("too short")))
	require.ErrorIs(t, err, modio.ErrNotAModule)

	data := fixture{signature: "M.K.", channels: 4, positions: []byte{0}}.build()

	_, err = Load(bytes.NewReader(data[:headerSize+100]))
	require.ErrorIs(t, err, modio.ErrPatternTruncated)
	require.Equal(t, modio.KindFormat, modio.KindOf(err))

	// Test only looks at the signature, so a header cut short before it is not a MOD.
	require.False(t, Test(bytes.NewReader(data[:600])))
}

func TestTitle(t *testing.T) {
	data := fixture{title: "my song\x00\x00", signature: "M.K.", channels: 4, positions: []byte{0}}.build()
	title, err := Title(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "my song", title)
	require.Equal(t, "mod", Format.Name())

	s, warnings, err := Format.Load(bytes.NewReader(data))
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, song.PanRight, int(s.Panning[1]))
}
