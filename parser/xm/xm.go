// Package xm decodes FastTracker 2 extended modules.
package xm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/QEStudios/unimod/parser/modio"
	"github.com/QEStudios/unimod/song"
	"github.com/QEStudios/unimod/unitrk"
)

const (
	titleAt       = 17
	titleLength   = 20
	headerBase    = 60 // header size is counted from here
	maxOrders     = 256
	numNotes      = 96
	keyOffNote    = 97
	envPoints     = 12
	envScale      = 2 // envelope values are stored at a quarter of their range
	instHeadSize  = 29
	patHeaderSize = 9
)

var signature = []byte("Extended Module: ")

// Test reports whether r holds an XM file.
func Test(r io.ReadSeeker) bool {
	return bytes.Equal(modio.Peek(r, 0, len(signature)), signature)
}

// Title reads the song name.
func Title(r io.ReadSeeker) (string, error) {
	b := modio.Peek(r, titleAt, titleLength+1)
	if b == nil {
		return "", fail(modio.ErrHeaderTruncated, io.ErrUnexpectedEOF)
	}
	return song.CleanString(b), nil
}

// Load decodes an XM file.
func Load(r io.ReadSeeker) (*song.Song, error) {
	s, _, err := load(r)
	return s, err
}

func fail(err, cause error) error {
	return modio.NewLoadError(Format.Name(), err, cause)
}

type header struct {
	name        string
	trackerName string
	version     uint16
	headerSize  uint32
	songLength  uint16
	restart     uint16
	numChannels uint16
	numPatterns uint16
	numInstr    uint16
	flags       uint16
	tempo       uint16
	bpm         uint16
	orders      []byte
}

// wavHeader is a sample header as stored inside an instrument.
type wavHeader struct {
	length     uint32
	loopStart  uint32
	loopLength uint32
	volume     uint8
	finetune   int8
	typ        uint8
	panning    uint8
	relNote    int8
	name       string

	vibType  uint8
	vibSweep uint8
	vibDepth uint8
	vibRate  uint8

	seekPos int64
}

type note struct {
	note, ins, vol, eff, dat uint8
}

type loader struct {
	r  *modio.Reader
	s  *song.Song
	uw *unitrk.Writer
	h  header

	wavs []wavHeader
}

func load(rs io.ReadSeeker) (*song.Song, []modio.Warning, error) {
	if !Test(rs) {
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
	if err := l.load(); err != nil {
		return nil, l.r.Warnings(), err
	}
	return l.s, l.r.Warnings(), nil
}

func (l *loader) readHeader() {
	r, h := l.r, &l.h
	r.Skip(int64(len(signature)))
	h.name = r.String(titleLength + 1)
	h.trackerName = r.String(20)
	h.version = r.U16LE()
	h.headerSize = r.U32LE()
	h.songLength = r.U16LE()
	h.restart = r.U16LE()
	h.numChannels = r.U16LE()
	h.numPatterns = r.U16LE()
	h.numInstr = r.U16LE()
	h.flags = r.U16LE()
	h.tempo = r.U16LE()
	h.bpm = r.U16LE()
	h.orders = r.Bytes(maxOrders)
}

func (l *loader) load() error {
	r, s, h := l.r, l.s, &l.h

	l.readHeader()
	if r.EOF() {
		return fail(modio.ErrHeaderTruncated, r.Err())
	}
	if h.numChannels < 1 || h.numChannels > song.MaxChannels {
		return fail(modio.ErrHeaderTruncated, fmt.Errorf("%d channels", h.numChannels))
	}

	s.InitSpeed = uint8(h.tempo)
	s.InitTempo = uint8(h.bpm)
	s.ModType = h.trackerName
	s.NumChannels = int(h.numChannels)
	s.Name = h.name
	s.Flags |= song.FlagXMPeriods | song.FlagInstruments
	if h.flags&1 != 0 {
		s.Flags |= song.FlagLinear
	}

	songLength := int(h.songLength)
	if songLength > maxOrders {
		r.Warnf("song length %d clamped to %d", songLength, maxOrders)
		songLength = maxOrders
	}
	if err := s.AllocPositions(songLength); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}

	// FastTracker does not always store blank patterns at the end of the song.
	// Orders past the last stored pattern share one silent pattern.
	numPatterns := int(h.numPatterns)
	dummy := false
	for i := range songLength {
		p := uint16(h.orders[i])
		if int(p) >= int(h.numPatterns) {
			p = h.numPatterns
			dummy = true
		}
		s.Positions[i] = p
	}
	if dummy {
		r.Warnf("orders refer to missing patterns, added a silent pattern %d", numPatterns)
		numPatterns++
	}
	if int(h.restart) < songLength {
		s.RepeatPos = h.restart
	}

	if err := s.AllocTracks(numPatterns * s.NumChannels); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}
	if err := s.AllocPatterns(numPatterns); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}

	r.Seek(headerBase+int64(h.headerSize), io.SeekStart)
	track := 0
	for pat := range int(h.numPatterns) {
		if err := l.loadPattern(pat, &track); err != nil {
			return err
		}
	}
	if dummy {
		pat := int(h.numPatterns)
		s.PatternRows[pat] = song.DefaultRows
		empty := make([]note, song.DefaultRows)
		for range s.NumChannels {
			t, err := l.convertTrack(empty)
			if err != nil {
				return fail(modio.ErrPatternTruncated, err)
			}
			s.Tracks[track] = t
			track++
		}
	}

	if err := s.AllocInstruments(int(h.numInstr)); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}
	for i := range s.Instruments {
		if err := l.loadInstrument(&s.Instruments[i]); err != nil {
			return err
		}
	}

	return l.copySamples()
}

func (l *loader) loadPattern(pat int, track *int) error {
	r, s := l.r, l.s

	size := r.U32LE()
	r.U8() // packing type, always 0
	numRows := int(r.U16LE())
	packSize := r.U16LE()
	if r.EOF() {
		return fail(modio.ErrPatternTruncated, r.Err())
	}
	if size > patHeaderSize {
		r.Skip(int64(size) - patHeaderSize)
	}
	dataAt := r.Tell()

	if numRows == 0 {
		numRows = song.DefaultRows
	}
	if numRows > song.MaxRows {
		r.Warnf("pattern %d has %d rows, clamped to %d", pat, numRows, song.MaxRows)
		numRows = song.MaxRows
	}
	s.PatternRows[pat] = uint16(numRows)

	notes := make([]note, numRows*s.NumChannels)
	if packSize > 0 {
		for row := range numRows {
			for ch := range s.NumChannels {
				notes[ch*numRows+row] = l.readNote()
			}
		}
		if r.EOF() {
			return fail(modio.ErrPatternTruncated, r.Err())
		}
		if end := dataAt + int64(packSize); r.Tell() != end {
			r.Warnf("pattern %d data is %d bytes, header says %d", pat, r.Tell()-dataAt, packSize)
			r.Seek(end, io.SeekStart)
		}
	}

	for ch := range s.NumChannels {
		t, err := l.convertTrack(notes[ch*numRows : (ch+1)*numRows])
		if err != nil {
			return fail(modio.ErrPatternTruncated, err)
		}
		s.Tracks[*track] = t
		*track++
	}
	return nil
}

func (l *loader) readNote() note {
	r := l.r
	var n note
	cmp := r.U8()
	if cmp&0x80 == 0 {
		n.note = cmp
		n.ins = r.U8()
		n.vol = r.U8()
		n.eff = r.U8()
		n.dat = r.U8()
		return n
	}
	if cmp&1 != 0 {
		n.note = r.U8()
	}
	if cmp&2 != 0 {
		n.ins = r.U8()
	}
	if cmp&4 != 0 {
		n.vol = r.U8()
	}
	if cmp&8 != 0 {
		n.eff = r.U8()
	}
	if cmp&16 != 0 {
		n.dat = r.U8()
	}
	return n
}

func (l *loader) convertTrack(notes []note) ([]byte, error) {
	uw := l.uw
	uw.Reset()
	for _, n := range notes {
		switch {
		case n.note == 0:
		case n.note == keyOffNote:
			uw.Op(unitrk.OpKeyFade, 0)
		case n.note < keyOffNote:
			uw.Note(n.note - 1)
		default:
			l.r.Warnf("note %d out of range, dropped", n.note)
		}
		if n.ins != 0 {
			uw.Instrument(n.ins - 1)
		}
		writeVolume(uw, n.vol)
		writeEffect(uw, n.eff, n.dat)
		uw.Newline()
	}
	return uw.Dup()
}

func (l *loader) loadInstrument(d *song.Instrument) error {
	r := l.r
	for i := range d.SampleNumber {
		d.SampleNumber[i] = song.NoSample
	}

	headEnd := r.Tell()
	size := r.U32LE()
	headEnd += int64(size)
	d.Name = r.String(22)
	r.U8() // type
	numSamples := int(r.U16LE())
	if r.EOF() {
		return fail(modio.ErrSampleInfoTruncated, r.Err())
	}

	if size <= instHeadSize {
		r.Seek(headEnd, io.SeekStart)
		return nil
	}

	r.U32LE() // sample header size
	if numSamples == 0 {
		r.Seek(headEnd, io.SeekStart)
		return nil
	}

	what := r.Bytes(numNotes)
	var volEnv, panEnv [envPoints * 2]uint16
	for i := range volEnv {
		volEnv[i] = r.U16LE()
	}
	for i := range panEnv {
		panEnv[i] = r.U16LE()
	}
	volPts := r.U8()
	panPts := r.U8()
	volSus := r.U8()
	volBeg := r.U8()
	volEnd := r.U8()
	panSus := r.U8()
	panBeg := r.U8()
	panEnd := r.U8()
	volFlg := r.U8()
	panFlg := r.U8()
	vibType := r.U8()
	vibSweep := r.U8()
	vibDepth := r.U8()
	vibRate := r.U8()
	d.VolFade = r.U16LE()

	r.Seek(headEnd, io.SeekStart)
	if r.EOF() {
		return fail(modio.ErrSampleInfoTruncated, r.Err())
	}

	base := len(l.wavs)
	for i, w := range what {
		if int(w) < numSamples {
			d.SampleNumber[i] = uint16(base + int(w))
		}
	}

	setEnvelope(&d.VolEnv, volEnv, volFlg, volPts, volSus, volBeg, volEnd)
	if d.VolEnv.NumPoints > 0 && d.VolEnv.Points[d.VolEnv.NumPoints-1].Val == 0 {
		d.VolEnv.Flags |= song.EnvVolume
	}
	setEnvelope(&d.PanEnv, panEnv, panFlg, panPts, panSus, panBeg, panEnd)

	// Sample headers come first, then the data of every sample in order.
	if len(l.wavs)+numSamples > song.MaxSamples {
		return fail(modio.ErrOutOfMemory, fmt.Errorf("%d samples", len(l.wavs)+numSamples))
	}
	var next int64
	for range numSamples {
		var w wavHeader
		w.length = r.U32LE()
		w.loopStart = r.U32LE()
		w.loopLength = r.U32LE()
		w.volume = r.U8()
		w.finetune = r.S8()
		w.typ = r.U8()
		w.panning = r.U8()
		w.relNote = r.S8()
		r.U8() // reserved
		w.name = r.String(22)
		w.vibType = vibType
		w.vibSweep = vibSweep
		w.vibDepth = vibDepth << 2
		w.vibRate = vibRate
		if r.EOF() {
			return fail(modio.ErrSampleInfoTruncated, r.Err())
		}
		w.seekPos = next
		next += int64(w.length)
		l.wavs = append(l.wavs, w)
	}
	dataAt := r.Tell()
	for i := base; i < len(l.wavs); i++ {
		l.wavs[i].seekPos += dataAt
	}
	r.Skip(next)

	for i := range numNotes {
		if d.SampleNumber[i] == song.NoSample {
			continue
		}
		rel := int(l.wavs[d.SampleNumber[i]].relNote)
		d.SampleNote[i] = uint8(max(0, min(i+rel, song.NumNotes-1)))
	}
	return nil
}

func setEnvelope(e *song.Envelope, raw [envPoints * 2]uint16, flg, pts, sus, beg, end uint8) {
	for p := range envPoints {
		e.Points[p].Pos = int16(raw[p*2])
		e.Points[p].Val = int16(raw[p*2+1]) << envScale
	}
	if flg&1 != 0 {
		e.Flags |= song.EnvOn
	}
	if flg&2 != 0 {
		e.Flags |= song.EnvSustain
	}
	if flg&4 != 0 {
		e.Flags |= song.EnvLoop
	}
	e.NumPoints = min(pts, envPoints)
	e.SusBegin = sus
	e.SusEnd = sus
	e.LoopBegin = beg
	e.LoopEnd = end
	if e.NumPoints < 2 {
		e.Flags &^= song.EnvOn
	}
}

func (l *loader) copySamples() error {
	s := l.s
	if err := s.AllocSamples(len(l.wavs)); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}
	for i, w := range l.wavs {
		q := &s.Samples[i]
		q.Name = w.name
		q.Length = w.length
		q.LoopStart = w.loopStart
		q.LoopEnd = w.loopStart + w.loopLength
		q.Volume = w.volume
		q.Speed = uint32(int(w.finetune) + 128)
		q.Panning = uint16(w.panning)
		q.SeekPos = w.seekPos
		q.VibType = w.vibType
		q.VibSweep = w.vibSweep
		q.VibDepth = w.vibDepth
		q.VibRate = w.vibRate

		if w.typ&0x10 != 0 {
			q.Length >>= 1
			q.LoopStart >>= 1
			q.LoopEnd >>= 1
			q.Flags |= song.Sample16Bits
		}
		q.Flags |= song.SampleOwnPan
		if w.typ&0x3 != 0 {
			q.Flags |= song.SampleLoop
		}
		if w.typ&0x2 != 0 {
			q.Flags |= song.SampleBidi
		}
		q.Flags |= song.SampleDelta | song.SampleSigned
	}
	return nil
}

type format struct{}

// Format is the XM entry for format detection.
var Format modio.Format = format{}

func (format) Name() string                           { return "xm" }
func (format) Test(r io.ReadSeeker) bool              { return Test(r) }
func (format) Title(r io.ReadSeeker) (string, error) { return Title(r) }

func (format) Load(r io.ReadSeeker) (*song.Song, []modio.Warning, error) {
	return load(r)
}
