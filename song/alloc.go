package song

import (
	"errors"
	"fmt"
	"strings"

	"github.com/QEStudios/unimod/unitrk"
)

// Allocation limits. Anything larger is treated as an out of memory condition.
const (
	MaxPositions   = 1024
	MaxPatterns    = 1024
	MaxTracks      = 1 << 16
	MaxSamples     = 4096
	MaxInstruments = 256
	MaxRows        = 256
)

// ErrTooLarge is returned when a table would exceed its allocation limit.
var ErrTooLarge = errors.New("table exceeds allocation limit")

func checkLimit(what string, n, limit int) error {
	if n < 0 || n > limit {
		return fmt.Errorf("%w: %d %s (max %d)", ErrTooLarge, n, what, limit)
	}
	return nil
}

// AllocPositions sizes the order list.
func (s *Song) AllocPositions(n int) error {
	if err := checkLimit("positions", n, MaxPositions); err != nil {
		return err
	}
	s.Positions = make([]uint16, n)
	return nil
}

// AllocPatterns sizes the pattern tables for n patterns of NumChannels tracks each.
// Every pattern starts with DefaultRows rows and its own run of sequential track indices.
func (s *Song) AllocPatterns(n int) error {
	if err := checkLimit("patterns", n, MaxPatterns); err != nil {
		return err
	}
	if err := checkLimit("tracks", n*s.NumChannels, MaxTracks); err != nil {
		return err
	}
	s.Patterns = make([]uint16, n*s.NumChannels)
	s.PatternRows = make([]uint16, n)
	for t := range n {
		s.PatternRows[t] = DefaultRows
		for c := range s.NumChannels {
			i := t*s.NumChannels + c
			s.Patterns[i] = uint16(i)
		}
	}
	return nil
}

// AllocTracks sizes the track table.
func (s *Song) AllocTracks(n int) error {
	if err := checkLimit("tracks", n, MaxTracks); err != nil {
		return err
	}
	s.Tracks = make([][]byte, n)
	return nil
}

// AllocSamples sizes the sample table with centred, full volume, unregistered samples.
func (s *Song) AllocSamples(n int) error {
	if err := checkLimit("samples", n, MaxSamples); err != nil {
		return err
	}
	s.Samples = make([]Sample, n)
	for i := range s.Samples {
		s.Samples[i].Panning = PanCenter
		s.Samples[i].Handle = -1
		s.Samples[i].GlobalVolume = 64
		s.Samples[i].Volume = 64
	}
	return nil
}

// AllocInstruments sizes the instrument table. Instrument t maps every note to itself on sample t.
func (s *Song) AllocInstruments(n int) error {
	if err := checkLimit("instruments", n, MaxInstruments); err != nil {
		return err
	}
	s.Instruments = make([]Instrument, n)
	for t := range s.Instruments {
		ins := &s.Instruments[t]
		for note := range NumNotes {
			ins.SampleNote[note] = uint8(note)
			ins.SampleNumber[note] = uint16(t)
		}
		ins.GlobalVolume = 64
	}
	return nil
}

// CleanString turns a fixed size, space or zero padded text field into a string.
// Trailing bytes up to and including space are dropped and control characters become spaces.
func CleanString(b []byte) string {
	n := len(b)
	for n > 0 && b[n-1] <= 0x20 {
		n--
	}
	var sb strings.Builder
	sb.Grow(n)
	for _, c := range b[:n] {
		if c < 0x20 {
			c = ' '
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// Errors reported by Validate.
var (
	ErrBadTrackIndex   = errors.New("track index out of range")
	ErrBadTrack        = errors.New("malformed track")
	ErrBadPosition     = errors.New("position refers to a missing pattern")
	ErrBadChannelCount = errors.New("bad channel count")
)

// Validate checks that every pattern refers to existing, well formed tracks
// and that every position refers to an existing pattern.
func (s *Song) Validate() error {
	if s.NumChannels < 1 || s.NumChannels > MaxChannels {
		return fmt.Errorf("%w: %d", ErrBadChannelCount, s.NumChannels)
	}
	if len(s.Patterns) < s.NumPatterns()*s.NumChannels {
		return fmt.Errorf("%w: pattern table holds %d entries, need %d",
			ErrBadTrackIndex, len(s.Patterns), s.NumPatterns()*s.NumChannels)
	}
	for i, t := range s.Patterns {
		if int(t) >= len(s.Tracks) {
			return fmt.Errorf("%w: pattern %d channel %d uses track %d of %d",
				ErrBadTrackIndex, i/s.NumChannels, i%s.NumChannels, t, len(s.Tracks))
		}
	}
	for i, t := range s.Tracks {
		if err := unitrk.Check(t); err != nil {
			return fmt.Errorf("%w %d: %w", ErrBadTrack, i, err)
		}
	}
	for i, p := range s.Positions {
		if int(p) >= s.NumPatterns() {
			return fmt.Errorf("%w: position %d plays pattern %d of %d", ErrBadPosition, i, p, s.NumPatterns())
		}
	}
	for i := range s.Instruments {
		ins := &s.Instruments[i]
		if !ins.NNA.isValid() || !ins.DupCheckType.isValid() || !ins.DupCheckAction.isValid() {
			return fmt.Errorf("instrument %d: invalid new note action settings", i)
		}
	}
	return nil
}
