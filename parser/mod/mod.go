// Package mod decodes ProTracker style MOD files and their multichannel relatives.
package mod

import (
	"bytes"
	"io"

	"github.com/QEStudios/unimod/parser/modio"
	"github.com/QEStudios/unimod/song"
	"github.com/QEStudios/unimod/unitrk"
)

const (
	headerSize     = 1084
	signatureAt    = headerSize - 4
	numSamples     = 31
	rowsPerPattern = 64
	titleLength    = 20
)

// modType identifies a MOD variant by its signature.
type modType struct {
	id       string
	channels int
	tracker  string
}

const (
	protracker   = "Protracker"
	startracker  = "Startracker"
	fasttracker  = "Fasttracker"
	ins15tracker = "15-instrument"
	oktalyzer    = "Oktalyzer"
	taketracker  = "TakeTracker"
)

var modTypes = [...]modType{
	{"M.K.", 4, protracker},
	{"M!K!", 4, protracker},
	{"FLT4", 4, startracker},
	{"2CHN", 2, fasttracker},
	{"4CHN", 4, fasttracker},
	{"6CHN", 6, fasttracker},
	{"8CHN", 8, fasttracker},
	{"10CH", 10, fasttracker},
	{"12CH", 12, fasttracker},
	{"14CH", 14, fasttracker},
	{"16CH", 16, fasttracker},
	{"18CH", 18, fasttracker},
	{"20CH", 20, fasttracker},
	{"22CH", 22, fasttracker},
	{"24CH", 24, fasttracker},
	{"26CH", 26, fasttracker},
	{"28CH", 28, fasttracker},
	{"30CH", 30, fasttracker},
	{"32CH", 32, fasttracker},
	{"CD81", 8, oktalyzer},
	{"OKTA", 8, oktalyzer},
	{"16CN", 16, taketracker},
	{"32CN", 32, taketracker},
	{"    ", 4, ins15tracker},
}

// Amiga periods for the five octaves a MOD can address.
var periodTable = [60]uint16{
	1712, 1616, 1524, 1440, 1356, 1280, 1208, 1140, 1076, 1016, 960, 906,
	856, 808, 762, 720, 678, 640, 604, 570, 538, 508, 480, 453,
	428, 404, 381, 360, 339, 320, 302, 285, 269, 254, 240, 226,
	214, 202, 190, 180, 170, 160, 151, 143, 135, 127, 120, 113,
	107, 101, 95, 90, 85, 80, 75, 71, 67, 63, 60, 56,
}

// Finetune nibble to middle C rate.
var Finetune = [16]uint32{
	8363, 8413, 8463, 8529, 8581, 8651, 8723, 8757,
	7895, 7941, 7985, 8046, 8107, 8169, 8232, 8280,
}

func detect(r io.ReadSeeker) (modType, bool) {
	id := modio.Peek(r, signatureAt, 4)
	if id == nil {
		return modType{}, false
	}
	for _, t := range modTypes {
		if bytes.Equal(id, []byte(t.id)) {
			return t, true
		}
	}
	return modType{}, false
}

// Test reports whether r holds a MOD file.
func Test(r io.ReadSeeker) bool {
	_, ok := detect(r)
	return ok
}

// Title reads the song name.
func Title(r io.ReadSeeker) (string, error) {
	b := modio.Peek(r, 0, titleLength)
	if b == nil {
		return "", modio.NewLoadError(Format.Name(), modio.ErrHeaderTruncated, io.ErrUnexpectedEOF)
	}
	return song.CleanString(b), nil
}

// Load decodes a MOD file.
func Load(r io.ReadSeeker) (*song.Song, error) {
	s, _, err := load(r)
	return s, err
}

type sampleInfo struct {
	name     string
	length   uint16
	finetune uint8
	volume   uint8
	reppos   uint16
	replen   uint16
}

type loader struct {
	r  *modio.Reader
	s  *song.Song
	uw *unitrk.Writer
}

func fail(err, cause error) error {
	return modio.NewLoadError(Format.Name(), err, cause)
}

func load(rs io.ReadSeeker) (*song.Song, []modio.Warning, error) {
	typ, ok := detect(rs)
	if !ok {
		return nil, nil, fail(modio.ErrNotAModule, nil)
	}
	if err := modio.Rewind(rs); err != nil {
		return nil, nil, fail(modio.ErrOpen, err)
	}

	l := &loader{
		r:  modio.NewReader(rs),
		s:  song.New(),
		uw: unitrk.NewWriter(),
	}
	if err := l.load(typ); err != nil {
		return nil, l.r.Warnings(), err
	}
	return l.s, l.r.Warnings(), nil
}

func (l *loader) load(typ modType) error {
	r, s := l.r, l.s

	name := r.String(titleLength)
	var samples [numSamples]sampleInfo
	for i := range samples {
		smp := &samples[i]
		smp.name = r.String(22)
		smp.length = r.U16BE()
		smp.finetune = r.U8()
		smp.volume = r.U8()
		smp.reppos = r.U16BE()
		smp.replen = r.U16BE()
	}
	songLength := int(r.U8())
	r.U8() // restart byte, unused by ProTracker
	positions := r.Bytes(128)
	r.Skip(4) // signature
	if r.EOF() {
		return fail(modio.ErrHeaderTruncated, r.Err())
	}

	s.InitSpeed = 6
	s.InitTempo = 125
	s.NumChannels = typ.channels
	s.ModType = typ.tracker
	s.Name = name

	if songLength > len(positions) {
		r.Warnf("song length %d clamped to %d", songLength, len(positions))
		songLength = len(positions)
	}
	if err := s.AllocPositions(songLength); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}
	numPatterns := 0
	for i := range songLength {
		s.Positions[i] = uint16(positions[i])
		numPatterns = max(numPatterns, int(positions[i]))
	}
	numPatterns++

	if err := s.AllocSamples(numSamples); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}
	if err := s.AllocInstruments(numSamples); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}
	for i, src := range samples {
		q := &s.Samples[i]
		q.Name = src.name
		s.Instruments[i].Name = src.name
		q.Speed = Finetune[src.finetune&0xf]
		q.Volume = src.volume
		q.LoopStart = uint32(src.reppos) << 1
		q.LoopEnd = q.LoopStart + uint32(src.replen)<<1
		q.Length = uint32(src.length) << 1
		q.Flags = song.SampleSigned
		if src.replen > 1 {
			q.Flags |= song.SampleLoop
		}
		if q.LoopEnd > q.Length {
			q.LoopEnd = q.Length
		}
	}

	if err := l.loadPatterns(numPatterns); err != nil {
		return err
	}

	// Sample data follows the patterns, in order.
	pos := r.Tell()
	for i := range s.Samples {
		s.Samples[i].SeekPos = pos
		pos += s.Samples[i].ByteLength()
	}
	return nil
}

type note struct {
	a, b, c, d uint8
}

func (l *loader) loadPatterns(numPatterns int) error {
	r, s := l.r, l.s
	numChannels := s.NumChannels

	if err := s.AllocPatterns(numPatterns); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}
	if err := s.AllocTracks(numPatterns * numChannels); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}

	buf := make([]note, rowsPerPattern*numChannels)
	tracks := 0
	for range numPatterns {
		for i := range buf {
			buf[i] = note{r.U8(), r.U8(), r.U8(), r.U8()}
		}
		if r.EOF() {
			return fail(modio.ErrPatternTruncated, r.Err())
		}
		for ch := range numChannels {
			track, err := l.convertTrack(buf[ch:], numChannels)
			if err != nil {
				return fail(modio.ErrPatternTruncated, err)
			}
			s.Tracks[tracks] = track
			tracks++
		}
	}
	return nil
}

func (l *loader) convertTrack(n []note, stride int) ([]byte, error) {
	l.uw.Reset()
	for row := range rowsPerPattern {
		l.convertNote(n[row*stride])
		l.uw.Newline()
	}
	return l.uw.Dup()
}

// PeriodToNote returns the note number (1-60) for an Amiga period, 0 for no note.
func PeriodToNote(period uint16) uint8 {
	if period == 0 {
		return 0
	}
	for i, p := range periodTable {
		if period >= p {
			return uint8(i + 1)
		}
	}
	return 0
}

func (l *loader) convertNote(n note) {
	instrument := n.a&0x10 | n.c>>4
	period := uint16(n.a&0xf)<<8 | uint16(n.b)
	effect := n.c & 0xf
	effdat := n.d

	nt := PeriodToNote(period)

	if instrument != 0 {
		l.uw.Instrument(instrument - 1)
	}
	if nt != 0 {
		l.uw.Note(nt + 2*song.Octave - 1)
	}

	// Pattern break arguments are decimal.
	if effect == 0xd {
		effdat = (effdat>>4)*10 + effdat&0xf
	}
	l.uw.PTEffect(effect, effdat)
}

type format struct{}

// Format is the MOD entry for format detection.
var Format modio.Format = format{}

func (format) Name() string                           { return "mod" }
func (format) Test(r io.ReadSeeker) bool              { return Test(r) }
func (format) Title(r io.ReadSeeker) (string, error) { return Title(r) }

func (format) Load(r io.ReadSeeker) (*song.Song, []modio.Warning, error) {
	return load(r)
}
