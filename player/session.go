// Package player plays a decoded Song through a driver, one tick at a time.
package player

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/QEStudios/unimod/driver"
	"github.com/QEStudios/unimod/song"
	"github.com/QEStudios/unimod/unitrk"
)

// Session is one playback context. It owns the channel and voice arrays of the
// song being played and is the only thing that talks to the driver's voices.
// All methods are safe to call from the goroutine that drives HandleTick.
type Session struct {
	mu     sync.Mutex
	drv    driver.Driver
	cfg    Config
	logger logrus.FieldLogger
	rng    *rand.Rand

	mod      *song.Song
	model    song.PeriodModel
	nna      bool
	channels []Channel
	voices   []Voice

	sfx     []SfxFlags
	sfxPool int

	ended  bool
	paused bool

	pos, row    int // Order list position and row within its pattern.
	numRows     int
	tick        int // Tick within the row, 0 on the row boundary.
	speed       int // Ticks per row.
	bpm         int
	lastBPM     int
	volume      int // Song volume, 0-128.
	patDelay    int // Requested pattern delay, moved to patDelayRun on the next row.
	patDelayRun int
	loopRow     int
	loopCount   int
	jump        int // Pending position change: 1 back, 2 stay, 3 forward, 0 none.
	breakRow    int
	globalSlide uint8
	panning     [song.MaxChannels]int

	rr unitrk.RowReader
}

// NewSession creates an idle session. A nil drv plays into driver.NoSound and a
// nil logger means the logrus standard logger.
func NewSession(drv driver.Driver, cfg Config, logger logrus.FieldLogger) *Session {
	if drv == nil {
		drv = driver.NewNoSound()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Session{
		drv:    drv,
		cfg:    cfg,
		logger: logger.WithField("component", "player"),
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		sfx:    make([]SfxFlags, cfg.SfxVoices),
	}
}

// musicVoices returns the voice pool size for mod, and whether new note
// actions have to be used to fit the song in it.
func (s *Session) musicVoices(mod *song.Song) (int, bool) {
	nna := mod.Flags&song.FlagNNA != 0
	n := s.cfg.MusicVoices
	if n <= 0 {
		n = song.MaxChannels
		if mod.NumVoices > 0 {
			n = mod.NumVoices
		}
	}
	switch {
	case !nna && mod.NumChannels < n:
		n = mod.NumChannels
	case mod.NumVoices != 0 && mod.NumVoices < n:
		n = mod.NumVoices
	}
	if n < mod.NumChannels {
		nna = true
	}
	return n, nna
}

// Play starts mod from its first position, replacing whatever was playing.
func (s *Session) Play(mod *song.Song) error {
	if mod == nil {
		return errors.New("no song to play")
	}
	if mod.NumChannels < 1 || mod.NumChannels > song.MaxChannels {
		return fmt.Errorf("%w: %d", song.ErrBadChannelCount, mod.NumChannels)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stop()

	n, nna := s.musicVoices(mod)
	if err := s.drv.SetNumVoices(n + len(s.sfx)); err != nil {
		return fmt.Errorf("error setting %d voices: %w", n+len(s.sfx), err)
	}
	if err := s.drv.PlayStart(); err != nil {
		return fmt.Errorf("error starting driver: %w", err)
	}

	s.mod = mod
	s.model = mod.PeriodModel()
	s.nna = nna
	s.channels = make([]Channel, mod.NumChannels)
	for t := range s.channels {
		s.channels[t].reset(mod.ChanVolume[t], mod.Panning[t])
	}
	s.voices = make([]Voice, n)
	for i := range s.voices {
		s.voices[i].reset()
		s.drv.VoiceStop(i)
	}
	for t := range s.panning {
		s.panning[t] = int(mod.Panning[t])
	}
	s.sfxPool = 0
	clear(s.sfx)

	s.restart()
	s.lastBPM = 0
	s.pos, s.row = 0, 0
	s.tick = s.speed
	s.patDelay, s.patDelayRun = 0, 0
	s.loopRow, s.loopCount = -1, 0
	s.jump, s.breakRow = 2, 0
	s.globalSlide = 0
	s.paused = false
	s.ended = mod.NumPositions() == 0
	s.numRows = 0
	if !s.ended {
		s.numRows = mod.Rows(int(mod.Positions[0]))
	}

	s.logger.WithFields(logrus.Fields{
		"song":   mod.Name,
		"voices": n,
		"nna":    nna,
		"model":  s.model,
	}).Debug("play")
	return nil
}

// Stop ends playback and releases the song. Calling it again does nothing.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
}

func (s *Session) stop() {
	if s.mod == nil {
		return
	}
	s.ended = true
	s.drv.PlayStop()
	for i := range s.voices {
		s.drv.VoiceStop(i)
	}
	s.channels = nil
	s.voices = nil
	s.logger.WithField("song", s.mod.Name).Debug("stop")
	s.mod = nil
}

// Active reports whether a song is loaded and has not reached its end.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mod != nil && !s.ended
}

// Position returns the current order list position and row.
func (s *Session) Position() (pos, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos, s.row
}

// BPM returns the current tempo.
func (s *Session) BPM() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bpm
}

// Voices returns the number of voices used by the song.
func (s *Session) Voices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.voices)
}

// ChannelVoice returns the voice currently following channel ch, or -1.
func (s *Session) ChannelVoice(ch int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch < 0 || ch >= len(s.channels) || s.slaveOf(ch) == nil {
		return noVoice
	}
	return s.channels[ch].slave
}

// SetVolume sets the song volume, clamped to 0-128.
func (s *Session) SetVolume(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = min(max(v, 0), 128)
}

// TogglePause stops or resumes tick processing.
func (s *Session) TogglePause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
}

// Paused reports whether tick processing is paused.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SetPosition jumps to order list position pos. Every voice is silenced.
func (s *Session) SetPosition(pos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mod == nil {
		return
	}
	pos = min(max(pos, 0), s.mod.NumPositions())
	s.pos = pos
	s.seek(2)
	s.logger.WithField("position", pos).Debug("set position")
}

// NextPosition skips to the start of the next position.
func (s *Session) NextPosition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seek(3)
}

// PrevPosition goes back to the start of the previous position.
func (s *Session) PrevPosition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seek(1)
}

func (s *Session) seek(jump int) {
	if s.mod == nil {
		return
	}
	s.jump = jump
	s.breakRow = 0
	s.tick = s.speed
	s.patDelay, s.patDelayRun = 0, 0
	s.ended = false
	for i := range s.voices {
		s.drv.VoiceStop(i)
		s.voices[i].inst = nil
		s.voices[i].smp = nil
	}
	for t := range s.channels {
		s.channels[t].inst = nil
		s.channels[t].smp = nil
	}
}

// slaveOf returns the voice owned by channel ch, or nil when the channel has
// none or the voice has since been taken by another channel.
func (s *Session) slaveOf(ch int) *Voice {
	i := s.channels[ch].slave
	if i < 0 || i >= len(s.voices) || s.voices[i].master != ch {
		return nil
	}
	return &s.voices[i]
}

// HandleTick advances playback by one tick. It is meant to be called at
// TickRate(BPM()) times per second.
func (s *Session) HandleTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mod == nil || s.paused || s.ended {
		return
	}

	s.tick++
	if s.tick >= s.speed {
		s.tick = 0
		s.row++

		if s.patDelay != 0 {
			s.patDelayRun = s.patDelay
			s.patDelay = 0
		}
		if s.patDelayRun != 0 {
			s.patDelayRun--
			if s.patDelayRun != 0 {
				s.row--
			}
		}

		if s.jump == 0 && s.row >= s.numRows {
			s.jump = 3
		}
		if s.jump != 0 && !s.nextPattern() {
			return
		}
		if s.patDelayRun == 0 {
			s.fetchRow()
		}
	}

	s.updateEffects()
	if s.nna {
		s.newNoteActions()
	}
	s.assignVoices()
	s.updateVoices()
}

// nextPattern applies a pending jump or break. It returns false when the song
// ended.
func (s *Session) nextPattern() bool {
	s.row = s.breakRow
	s.pos += s.jump - 2
	s.breakRow, s.jump = 0, 0

	n := s.mod.NumPositions()
	if s.pos >= n {
		if !s.cfg.Loop {
			s.end()
			return false
		}
		s.pos = int(s.mod.RepeatPos)
		if s.pos >= n {
			s.pos = 0
		}
		if s.pos == 0 {
			s.restart()
		}
	}
	if s.pos < 0 {
		s.pos = n - 1
	}

	s.numRows = s.mod.Rows(int(s.mod.Positions[s.pos]))
	if s.row >= s.numRows {
		s.row = max(s.numRows-1, 0)
	}
	s.loopRow, s.loopCount = -1, 0
	return true
}

// restart sets the song's initial speed, tempo and volume. A zero speed or
// tempo means the ProTracker defaults.
func (s *Session) restart() {
	s.speed = int(s.mod.InitSpeed)
	if s.speed == 0 {
		s.speed = 6
	}
	s.bpm = int(s.mod.InitTempo)
	if s.bpm == 0 {
		s.bpm = 125
	}
	s.volume = int(s.mod.InitVolume)
}

func (s *Session) end() {
	s.ended = true
	s.pos = s.mod.NumPositions()
	for i := range s.voices {
		s.drv.VoiceStop(i)
	}
}

func (s *Session) numInstruments() int {
	if s.mod.Flags&song.FlagInstruments != 0 {
		return len(s.mod.Instruments)
	}
	return len(s.mod.Samples)
}

// fetchRow reads the notes and instruments of the new row on every channel.
func (s *Session) fetchRow() {
	pat := int(s.mod.Positions[s.pos])
	s.numRows = s.mod.Rows(pat)

	for t := range s.channels {
		c := &s.channels[t]
		c.row = unitrk.FindRow(s.mod.Track(pat, t), s.row)
		c.newSample = 0
		c.notedelay = false
		if c.row == nil {
			continue
		}

		s.rr.SetRow(c.row)
		var noteOn, instOn bool
		for op := s.rr.Next(); op != 0; op = s.rr.Next() {
			switch op {
			case unitrk.OpNote:
				noteOn = true
				c.anote = s.rr.GetByte()
				c.kick = kickNote
				c.start = -1
				if c.waveControl&0x80 == 0 {
					c.trmPos = 0
				}
				if c.waveControl&0x08 == 0 {
					c.vibPos = 0
				}
				if c.panbWave == 0 {
					c.panbPos = 0
				}
			case unitrk.OpInstrument:
				instOn = true
				inst := int(s.rr.GetByte())
				if inst >= s.numInstruments() {
					break
				}
				c.inst = nil
				if s.mod.Flags&song.FlagInstruments != 0 {
					c.inst = &s.mod.Instruments[inst]
				}
				c.retrig = 0
				c.s3mTremor = 0
				c.sample = inst
			default:
				s.rr.SkipOpcode(op)
			}
		}
		if noteOn || instOn {
			s.startNote(t, c, instOn)
		}
	}
}

// startNote resolves the channel's note to a sample and sets up the new note.
func (s *Session) startNote(t int, c *Channel, newInst bool) {
	ins := c.inst
	var smp *song.Sample
	if ins != nil {
		if int(c.anote) >= song.NumNotes {
			return
		}
		n := int(ins.SampleNumber[c.anote])
		if n >= len(s.mod.Samples) {
			return
		}
		smp = &s.mod.Samples[n]
		c.note = ins.SampleNote[c.anote]
	} else {
		if c.sample >= len(s.mod.Samples) {
			return
		}
		c.note = c.anote
		smp = &s.mod.Samples[c.sample]
	}

	if c.smp != smp {
		c.smp = smp
		c.newSample = c.period
	}

	c.panning = s.panning[t]
	switch {
	case smp.Flags&song.SampleOwnPan != 0:
		c.panning = int(smp.Panning)
	case ins != nil && ins.Flags&song.InstOwnPan != 0:
		c.panning = int(ins.Panning)
	}
	c.handle = smp.Handle
	c.speed = smp.Speed

	if ins != nil {
		if ins.Flags&song.InstPitchPan != 0 && c.panning != song.PanSurround {
			c.panning += (int(c.anote) - int(ins.PitPanCenter)) * int(ins.PitPanSep) / 8
			c.panning = clampPan(c.panning)
		}
		c.pitchFlags = ins.PitchEnv.Flags
		c.volFlags = ins.VolEnv.Flags
		c.panFlags = ins.PanEnv.Flags
		c.nna = ins.NNA
		c.dca = ins.DupCheckAction
		c.dct = ins.DupCheckType
	} else {
		c.pitchFlags, c.volFlags, c.panFlags = 0, 0, 0
		c.nna = song.NNACut
		c.dca = song.DupActionCut
		c.dct = song.DupCheckOff
	}

	if newInst {
		c.volume = int(smp.Volume)
		c.tmpVolume = c.volume
		if ins != nil {
			c.volume += int(smp.Volume) * (int(ins.RVolVar) * s.variance()) / 25600
			c.volume = min(max(c.volume, 0), 64)
			c.tmpVolume = c.volume
			if c.panning != song.PanSurround {
				c.panning += c.panning * (int(ins.RPanVar) * s.variance()) / 25600
				c.panning = clampPan(c.panning)
			}
		}
	}

	p := Period(s.model, c.note, c.speed)
	c.wantedPeriod = p
	c.tmpPeriod = p
	c.keyoff = keyKick
}

// variance returns a random value in [-255, 256].
func (s *Session) variance() int {
	return s.rng.IntN(512) - 255
}

func clampPan(p int) int {
	return min(max(p, song.PanLeft), song.PanRight)
}

// updateEffects runs the effects of the current row on every channel.
func (s *Session) updateEffects() {
	for t := range s.channels {
		c := &s.channels[t]
		if v := s.slaveOf(t); v != nil {
			c.fadeVol = v.fadeVol
			c.period = v.period
			if c.kick != kickNote {
				c.keyoff = v.keyoff
			}
		}

		if c.row == nil {
			continue
		}
		s.rr.SetRow(c.row)
		c.ownPeriod, c.ownVolume = false, false
		s.playEffects(t, c)
		if !c.ownPeriod {
			c.period = c.tmpPeriod
		}
		if !c.ownVolume {
			c.volume = c.tmpVolume
		}

		if c.smp != nil {
			var out int
			if c.inst != nil {
				out = c.volume * int(c.smp.GlobalVolume) * int(c.inst.GlobalVolume) / 1024
			} else {
				out = c.volume * int(c.smp.GlobalVolume) / 16
			}
			c.outVolume = min(max(out, 0), 256)
		}
	}
}
