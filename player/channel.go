package player

import "github.com/QEStudios/unimod/song"

// keyState tracks note release. keyKill is both flags.
type keyState uint8

const (
	keyKick keyState = 0
	keyOff  keyState = 1
	keyFade keyState = 2
	keyKill          = keyOff | keyFade
)

// kick requests a voice (re)start on the next hardware update.
type kick uint8

const (
	kickNone   kick = iota
	kickNote        // New note: restart sample and envelopes.
	kickRetrig      // Retrigger: restart the sample only.
)

// noVoice and noChannel mark an empty link between the two arrays.
const (
	noVoice   = -1
	noChannel = -1
)

// Channel is the per song channel state: the note being played and the
// memory of every effect that reuses its last argument.
type Channel struct {
	inst   *song.Instrument
	smp    *song.Sample
	sample int // Instrument or sample index selected by the pattern.
	handle int16
	row    []byte

	kick      kick
	keyoff    keyState
	notedelay bool
	muted     bool
	start     int64 // Sample offset, -1 for the default start.

	anote uint8 // Note as written in the pattern.
	note  uint8 // Note after the instrument's note table.
	speed uint32

	period, tmpPeriod, wantedPeriod int
	newSample                       int // Period at the moment the sample changed.
	ownPeriod, ownVolume            bool

	volume, tmpVolume, outVolume int
	chanVol                      int
	panning                      int
	fadeVol                      int

	volFlags, panFlags, pitchFlags song.EnvelopeFlags
	nna                            song.NNA
	dct                            song.DupCheckType
	dca                            song.DupCheckAction

	slave int // Voice index, noVoice when the channel has none.

	retrig      int
	s3mTremor   int
	s3mTremorOn uint8
	s3mVolSlide uint8
	s3mRtgSpeed uint8
	s3mRtgSlide uint8

	glissando   uint8
	waveControl uint8
	vibPos      int8
	vibSpeed    uint8
	vibDepth    uint8
	trmPos      int8
	trmSpeed    uint8
	trmDepth    uint8

	slideSpeed int
	portSpeed  int

	fineUp, fineDown           uint8
	extraFineUp, extraFineDown uint8
	fineVolUp, fineVolDown     uint8
	chanVolSlide               uint8
	panSlide                   uint8

	sOffset, hiOffset int64

	ssEffect, ssData   uint8
	volEffect, volData uint8

	panbWave  uint8
	panbPos   uint8
	panbSpeed uint8
	panbDepth uint8
}

func (c *Channel) reset(chanVol uint8, pan uint16) {
	*c = Channel{
		chanVol: int(chanVol),
		panning: int(pan),
		slave:   noVoice,
		start:   -1,
	}
}

// Voice is one slot of the voice pool. A voice follows its master channel
// until a new note action releases it.
type Voice struct {
	inst   *song.Instrument
	smp    *song.Sample
	sample int
	handle int16

	kick    kick
	keyoff  keyState
	start   int64
	period  int
	panning int
	chanVol int
	fadeVol int
	volume  int // Channel output volume, 0-256.
	note    uint8
	nna     song.NNA

	volFlags, panFlags, pitchFlags song.EnvelopeFlags
	volEnv, panEnv, pitchEnv       envelope

	// master is the channel that last played on this voice. It stays set after
	// a new note action, attached tells whether the channel still follows it.
	master   int
	attached bool

	totalVol int // Volume before envelopes, used to pick voices to steal.
	sweepPos int
	avibPos  uint8
}

func (v *Voice) reset() {
	*v = Voice{master: noChannel, start: -1}
}
