// Package s3m decodes Scream Tracker 3 modules.
package s3m

import (
	"bytes"
	"fmt"
	"io"

	"github.com/QEStudios/unimod/parser/modio"
	"github.com/QEStudios/unimod/song"
	"github.com/QEStudios/unimod/unitrk"
)

const (
	signatureAt    = 0x2c
	titleLength    = 28
	rowsPerPattern = 64
	maxChannels    = 32
	panTableMarker = 252

	orderSkip = 254 // "+++" marker
	orderEnd  = 255 // "---" end of song

	noNote  = 255
	noteOff = 254
)

var signature = []byte("SCRM")

// Test reports whether r holds an S3M file.
func Test(r io.ReadSeeker) bool {
	return bytes.Equal(modio.Peek(r, signatureAt, 4), signature)
}

// Title reads the song name.
func Title(r io.ReadSeeker) (string, error) {
	b := modio.Peek(r, 0, titleLength)
	if b == nil {
		return "", fail(modio.ErrHeaderTruncated, io.ErrUnexpectedEOF)
	}
	return song.CleanString(b), nil
}

// Load decodes an S3M file.
func Load(r io.ReadSeeker) (*song.Song, error) {
	s, _, err := load(r)
	return s, err
}

func fail(err, cause error) error {
	return modio.NewLoadError(Format.Name(), err, cause)
}

type header struct {
	name       string
	ordNum     uint16
	insNum     uint16
	patNum     uint16
	flags      uint16
	tracker    uint16
	fileFormat uint16
	masterVol  uint8
	initSpeed  uint8
	initTempo  uint8
	masterMult uint8
	ultraClick uint8
	panTable   uint8
	special    uint16
	channels   [maxChannels]uint8
}

type cell struct {
	note, ins, vol, cmd, inf uint8
}

var emptyCell = cell{noNote, noNote, noNote, noNote, noNote}

type loader struct {
	r  *modio.Reader
	s  *song.Song
	uw *unitrk.Writer

	h         header
	paraPtr   []uint16
	remap     [maxChannels]int
	posLookup [256]uint8
	buf       []cell
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
	h.name = r.String(titleLength)
	r.Skip(4) // 0x1a marker, type, two unused bytes
	h.ordNum = r.U16LE()
	h.insNum = r.U16LE()
	h.patNum = r.U16LE()
	h.flags = r.U16LE()
	h.tracker = r.U16LE()
	h.fileFormat = r.U16LE()
	r.Skip(4) // SCRM
	h.masterVol = r.U8()
	h.initSpeed = r.U8()
	h.initTempo = r.U8()
	h.masterMult = r.U8()
	h.ultraClick = r.U8()
	h.panTable = r.U8()
	r.Skip(8)
	h.special = r.U16LE()
	copy(h.channels[:], r.Bytes(maxChannels))
}

// trackerName spells out the tracker version, e.g. "Screamtracker 3.20".
func trackerName(v uint16) string {
	return fmt.Sprintf("Screamtracker %d.%d%d", v>>8&0xf, v>>4&0xf, v&0xf)
}

func (l *loader) load() error {
	r, s, h := l.r, l.s, &l.h

	l.readHeader()
	if r.EOF() {
		return fail(modio.ErrHeaderTruncated, r.Err())
	}

	s.ModType = trackerName(h.tracker)
	s.Name = h.name
	s.RepeatPos = 0
	s.InitSpeed = h.initSpeed
	s.InitTempo = h.initTempo
	s.InitVolume = uint8(min(int(h.masterVol)<<1, 128))

	numPatterns := int(h.patNum)
	numSamples := int(h.insNum)

	// Orders. Blank and end markers are dropped, so effect B needs a lookup
	// from the stored order index to the position that is actually played.
	orders := r.Bytes(int(h.ordNum))
	if err := s.AllocPositions(len(orders)); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}
	numPos := 0
	for i, o := range orders {
		if i < len(l.posLookup) {
			l.posLookup[i] = uint8(min(numPos, 255))
		}
		switch {
		case o >= orderSkip:
		case int(o) >= numPatterns:
			r.Warnf("order %d plays missing pattern %d, skipped", i, o)
		default:
			s.Positions[numPos] = uint16(o)
			numPos++
		}
	}
	for i := len(orders); i < len(l.posLookup); i++ {
		l.posLookup[i] = uint8(min(numPos, 255))
	}
	s.Positions = s.Positions[:numPos]

	l.paraPtr = make([]uint16, numSamples+numPatterns)
	for i := range l.paraPtr {
		l.paraPtr[i] = r.U16LE()
	}

	var pan []byte
	if h.panTable == panTableMarker {
		pan = r.Bytes(maxChannels)
	}

	if r.EOF() {
		return fail(modio.ErrHeaderTruncated, r.Err())
	}

	if err := l.loadSamples(numSamples); err != nil {
		return err
	}

	// First pass: find which channels are used.
	for i := range l.remap {
		l.remap[i] = -1
	}
	for pat := range numPatterns {
		if err := l.scanPattern(pat); err != nil {
			return err
		}
	}
	numChannels := 0
	for ch := range l.remap {
		if l.remap[ch] == 0 {
			l.remap[ch] = numChannels
			numChannels++
		}
	}
	if numChannels == 0 {
		r.Warnf("no channel carries any data")
		numChannels = 1
	}
	s.NumChannels = numChannels

	// Panning can only be placed once the remap exists.
	for ch := range maxChannels {
		if h.channels[ch] < 16 && l.remap[ch] != -1 {
			if h.channels[ch] < 8 {
				s.Panning[l.remap[ch]] = 0x20
			} else {
				s.Panning[l.remap[ch]] = 0xd0
			}
		}
	}
	if pan != nil {
		for ch := range maxChannels {
			if pan[ch]&0x20 != 0 && h.channels[ch] < 16 && l.remap[ch] != -1 {
				s.Panning[l.remap[ch]] = uint16(pan[ch]&0xf) << 4
			}
		}
	}

	// Second pass: convert.
	if err := s.AllocTracks(numPatterns * numChannels); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}
	if err := s.AllocPatterns(numPatterns); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}
	l.buf = make([]cell, rowsPerPattern*numChannels)
	track := 0
	for pat := range numPatterns {
		if err := l.readPattern(pat); err != nil {
			return err
		}
		for ch := range numChannels {
			t, err := l.convertTrack(l.buf[ch*rowsPerPattern : (ch+1)*rowsPerPattern])
			if err != nil {
				return fail(modio.ErrPatternTruncated, err)
			}
			s.Tracks[track] = t
			track++
		}
	}
	return nil
}

func (l *loader) loadSamples(numSamples int) error {
	r, s := l.r, l.s
	if err := s.AllocSamples(numSamples); err != nil {
		return fail(modio.ErrOutOfMemory, err)
	}
	for i := range s.Samples {
		q := &s.Samples[i]
		r.Seek(int64(l.paraPtr[i])<<4, io.SeekStart)

		r.U8()     // type
		r.Skip(12) // DOS file name
		memSegH := r.U8()
		memSegL := r.U16LE()
		length := r.U32LE()
		loopBeg := r.U32LE()
		loopEnd := r.U32LE()
		volume := r.U8()
		r.Skip(2) // disk, pack
		flags := r.U8()
		c2spd := r.U32LE()
		r.Skip(12)
		name := r.String(28)
		scrs := r.Bytes(4)
		if r.EOF() {
			return fail(modio.ErrSampleInfoTruncated, r.Err())
		}

		q.Name = name
		q.Speed = c2spd
		q.Length = length
		q.LoopStart = loopBeg
		q.LoopEnd = loopEnd
		q.Volume = volume
		q.SeekPos = (int64(memSegH)<<16 | int64(memSegL)) << 4
		if flags&1 != 0 {
			q.Flags |= song.SampleLoop
		}
		if flags&4 != 0 {
			q.Flags |= song.Sample16Bits
		}
		if l.h.fileFormat == 1 {
			q.Flags |= song.SampleSigned
		}
		if !bytes.Equal(scrs, []byte("SCRS")) {
			if length != 0 {
				r.Warnf("sample %d has no SCRS tag, not loaded", i+1)
			}
			q.Length = 0
		}
	}
	return nil
}

// seekPattern moves to pattern pat's packed data and reports whether it has any.
func (l *loader) seekPattern(pat int) bool {
	ptr := l.paraPtr[int(l.h.insNum)+pat]
	if ptr == 0 {
		return false
	}
	// skip the packed length
	l.r.Seek(int64(ptr)<<4+2, io.SeekStart)
	return true
}

// scanPattern walks a pattern without storing it, marking the channels it uses.
func (l *loader) scanPattern(pat int) error {
	r := l.r
	if !l.seekPattern(pat) {
		return nil
	}
	for row := 0; row < rowsPerPattern; {
		flag := r.U8()
		if r.EOF() {
			return fail(modio.ErrPatternTruncated, r.Err())
		}
		if flag == 0 {
			row++
			continue
		}
		ch := flag & 31
		if l.h.channels[ch] < 16 {
			l.remap[ch] = 0
		}
		if flag&32 != 0 {
			r.Skip(2)
		}
		if flag&64 != 0 {
			r.Skip(1)
		}
		if flag&128 != 0 {
			r.Skip(2)
		}
	}
	return nil
}

func (l *loader) readPattern(pat int) error {
	r := l.r
	for i := range l.buf {
		l.buf[i] = emptyCell
	}
	if !l.seekPattern(pat) {
		return nil
	}
	var dummy cell
	for row := 0; row < rowsPerPattern; {
		flag := r.U8()
		if r.EOF() {
			return fail(modio.ErrPatternTruncated, r.Err())
		}
		if flag == 0 {
			row++
			continue
		}
		n := &dummy
		if ch := l.remap[flag&31]; ch != -1 {
			n = &l.buf[ch*rowsPerPattern+row]
		}
		if flag&32 != 0 {
			n.note = r.U8()
			n.ins = r.U8()
		}
		if flag&64 != 0 {
			n.vol = r.U8()
		}
		if flag&128 != 0 {
			n.cmd = r.U8()
			n.inf = r.U8()
		}
	}
	if r.EOF() {
		return fail(modio.ErrPatternTruncated, r.Err())
	}
	return nil
}

func (l *loader) convertTrack(cells []cell) ([]byte, error) {
	uw := l.uw
	uw.Reset()
	for _, c := range cells {
		if c.ins != 0 && c.ins != noNote {
			uw.Instrument(c.ins - 1)
		}
		switch {
		case c.note == noNote:
		case c.note == noteOff:
			uw.PTEffect(0xc, 0)
		default:
			note := int(c.note>>4)*song.Octave + int(c.note&0xf)
			if note < song.NumNotes {
				uw.Note(uint8(note))
			} else {
				l.r.Warnf("note 0x%02x out of range, dropped", c.note)
			}
		}
		if c.vol < 255 {
			uw.PTEffect(0xc, c.vol)
		}
		writeCommand(uw, c.cmd, c.inf, &l.posLookup)
		uw.Newline()
	}
	return uw.Dup()
}

type format struct{}

// Format is the S3M entry for format detection.
var Format modio.Format = format{}

func (format) Name() string                           { return "s3m" }
func (format) Test(r io.ReadSeeker) bool              { return Test(r) }
func (format) Title(r io.ReadSeeker) (string, error) { return Title(r) }

func (format) Load(r io.ReadSeeker) (*song.Song, []modio.Warning, error) {
	return load(r)
}
