package song

import "fmt"

// Flags describes how a Song is meant to be played.
type Flags uint16

const (
	FlagXMPeriods   Flags = 1 << iota // Periods follow the FastTracker finetune scheme.
	FlagLinear                        // Linear periods. Only meaningful together with FlagXMPeriods.
	FlagInstruments                   // The instrument layer is used.
	FlagNNA                           // New note actions are in effect, so voices outnumber channels.
)

// PeriodModel selects the numeric model used to turn notes into periods.
type PeriodModel int

const (
	AmigaPeriods  PeriodModel = iota // Per-octave hardware table, halved every octave.
	LogPeriods                       // Logarithmic table with interpolation.
	LinearPeriods                    // Period is a linear function of the note.
)

func (m PeriodModel) String() string {
	switch m {
	case AmigaPeriods:
		return "amiga"
	case LogPeriods:
		return "logarithmic"
	case LinearPeriods:
		return "linear"
	default:
		return fmt.Sprintf("PeriodModel(%d)", int(m))
	}
}

// Panning positions.
const (
	PanLeft     = 0
	PanCenter   = 128
	PanRight    = 255
	PanSurround = 512
)

const (
	NumNotes     = 120 // Size of an instrument's note tables.
	MaxEnvPoints = 32
	MaxChannels  = 64
	DefaultRows  = 64
)

// NoSample marks an instrument note that plays nothing.
const NoSample = 0xffff

// SampleFlags describe the sample data format and its playback loop.
type SampleFlags uint16

const (
	Sample16Bits SampleFlags = 1 << iota
	SampleSigned
	SampleStereo
	SampleDelta
	SampleBigEndian
	SampleLoop
	SampleBidi
	SampleSustain
	SampleReverse
	SampleOwnPan
	SampleUSTLoop
)

// VibITStyle marks auto-vibrato parameters that follow Impulse Tracker rules.
const VibITStyle = 1

// A Sample is a single PCM waveform and its playback defaults.
type Sample struct {
	Name string

	Speed     uint32 // Base rate for middle C, or a finetune value when FlagXMPeriods is set.
	Volume    uint8  // 0-64
	Panning   uint16 // 0-255 or PanSurround
	Length    uint32 // In samples, not bytes.
	LoopStart uint32
	LoopEnd   uint32
	SusBegin  uint32 // Reserved.
	SusEnd    uint32 // Reserved.
	Flags     SampleFlags

	GlobalVolume uint8

	// Auto-vibrato.
	VibFlags uint8
	VibType  uint8
	VibSweep uint8
	VibDepth uint8
	VibRate  uint8

	SeekPos int64 // Offset of the sample data in the module file.
	Handle  int16 // Assigned by the driver. -1 when not registered.
}

// Loops reports whether the sample plays a loop.
func (s *Sample) Loops() bool {
	return s.Flags&SampleLoop != 0
}

// ByteLength returns the size of the sample data in the module file.
func (s *Sample) ByteLength() int64 {
	n := int64(s.Length)
	if s.Flags&Sample16Bits != 0 {
		n *= 2
	}
	return n
}

// EnvelopeFlags controls how an envelope is walked.
type EnvelopeFlags uint8

const (
	EnvOn EnvelopeFlags = 1 << iota
	EnvSustain
	EnvLoop
	EnvVolume // The envelope ends at zero, so reaching its end silences the voice.
)

// EnvelopePoint is one node of an envelope.
type EnvelopePoint struct {
	Pos int16 // Tick
	Val int16
}

// An Envelope is a keyed curve, interpolated linearly between points.
type Envelope struct {
	Flags     EnvelopeFlags
	NumPoints uint8
	SusBegin  uint8
	SusEnd    uint8
	LoopBegin uint8
	LoopEnd   uint8
	Points    [MaxEnvPoints]EnvelopePoint
}

// On reports whether the envelope is active.
func (e *Envelope) On() bool {
	return e.Flags&EnvOn != 0
}

// NNA is the action taken on a still sounding voice when its channel starts a new note.
type NNA uint8

const (
	NNACut NNA = iota
	NNAContinue
	NNAOff
	NNAFade
)

func (n NNA) isValid() bool {
	switch n {
	case NNACut, NNAContinue, NNAOff, NNAFade:
		return true
	default:
		return false
	}
}

func (n NNA) String() string {
	switch n {
	case NNACut:
		return "cut"
	case NNAContinue:
		return "continue"
	case NNAOff:
		return "off"
	case NNAFade:
		return "fade"
	default:
		return fmt.Sprintf("NNA(%d)", uint8(n))
	}
}

// DupCheckType decides which voices count as duplicates of a new note.
type DupCheckType uint8

const (
	DupCheckOff DupCheckType = iota
	DupCheckNote
	DupCheckSample
	DupCheckInstrument
)

func (t DupCheckType) isValid() bool {
	switch t {
	case DupCheckOff, DupCheckNote, DupCheckSample, DupCheckInstrument:
		return true
	default:
		return false
	}
}

// DupCheckAction is applied to duplicate voices.
type DupCheckAction uint8

const (
	DupActionCut DupCheckAction = iota
	DupActionOff
	DupActionFade
)

func (a DupCheckAction) isValid() bool {
	switch a {
	case DupActionCut, DupActionOff, DupActionFade:
		return true
	default:
		return false
	}
}

// InstrumentFlags are per-instrument playback switches.
type InstrumentFlags uint8

const (
	InstOwnPan InstrumentFlags = 1 << iota
	InstPitchPan
)

// An Instrument maps notes to samples and carries envelopes and new note behaviour.
type Instrument struct {
	Name  string
	Flags InstrumentFlags

	SampleNumber [NumNotes]uint16 // Note to sample index, NoSample for none.
	SampleNote   [NumNotes]uint8  // Note to the note actually played.

	NNA            NNA
	DupCheckType   DupCheckType
	DupCheckAction DupCheckAction
	GlobalVolume   uint8
	Panning        uint16

	PitPanSep    uint8 // 0-255
	PitPanCenter uint8 // 0-119
	RVolVar      uint8 // Random volume variation, 0-100%.
	RPanVar      uint8 // Random panning variation, 0-100%.

	VolFade uint16

	VolEnv   Envelope
	PanEnv   Envelope
	PitchEnv Envelope
}

// A Song is a decoded module. It owns all of its tables.
type Song struct {
	Name    string
	ModType string // Tracker that produced the file.
	Comment string

	Flags       Flags
	NumChannels int
	NumVoices   int // Voices wanted for full new note action playback, 0 if unknown.

	Positions   []uint16 // Order list: position to pattern.
	Patterns    []uint16 // pattern*NumChannels + channel to track index.
	PatternRows []uint16
	Tracks      [][]byte

	Samples     []Sample
	Instruments []Instrument

	RepeatPos  uint16
	InitSpeed  uint8
	InitTempo  uint8
	InitVolume uint8 // 0-128

	Panning    [MaxChannels]uint16
	ChanVolume [MaxChannels]uint8
}

// New returns an empty Song with the defaults every loader starts from.
func New() *Song {
	s := &Song{InitVolume: 128}
	for t := range MaxChannels {
		if (t+1)&2 != 0 {
			s.Panning[t] = PanRight
		} else {
			s.Panning[t] = PanLeft
		}
		s.ChanVolume[t] = 64
	}
	return s
}

// NumPositions returns the length of the order list.
func (s *Song) NumPositions() int { return len(s.Positions) }

// NumPatterns returns the number of patterns.
func (s *Song) NumPatterns() int { return len(s.PatternRows) }

// PeriodModel returns the period model selected by the song flags.
func (s *Song) PeriodModel() PeriodModel {
	switch {
	case s.Flags&FlagXMPeriods == 0:
		return AmigaPeriods
	case s.Flags&FlagLinear != 0:
		return LinearPeriods
	default:
		return LogPeriods
	}
}

// Track returns the track played by channel ch in pattern pat, or nil when either is out of range.
func (s *Song) Track(pat, ch int) []byte {
	if pat < 0 || pat >= s.NumPatterns() || ch < 0 || ch >= s.NumChannels {
		return nil
	}
	i := pat*s.NumChannels + ch
	if i >= len(s.Patterns) {
		return nil
	}
	t := int(s.Patterns[i])
	if t >= len(s.Tracks) {
		return nil
	}
	return s.Tracks[t]
}

// Rows returns the row count of pattern pat, or 0 when it is out of range.
func (s *Song) Rows(pat int) int {
	if pat < 0 || pat >= len(s.PatternRows) {
		return 0
	}
	return int(s.PatternRows[pat])
}
