package player

import "github.com/QEStudios/unimod/song"

// Voice stealing scores a voice by its volume, doubled when its sample loops
// and quadrupled while its channel still follows it. Voices scoring above
// stealLimit are never taken: the new note is dropped instead.
const (
	loopShift       = 1
	foregroundShift = 2
	stealLimit      = 8000 * 7
)

// noteOff releases the key. Without a sustaining volume envelope there is
// nothing to release into, so the voice fades right away.
func (v *Voice) noteOff() {
	v.keyoff |= keyOff
	if v.volFlags&song.EnvOn == 0 || v.volFlags&song.EnvLoop != 0 {
		v.keyoff = keyKill
	}
}

// free reports whether voice i can be reused without cutting anything.
func (s *Session) free(i int) bool {
	return s.voices[i].smp == nil || s.drv.VoiceStopped(i)
}

// newNoteActions handles the voices left behind by channels that start a new
// note: the previous voice is released per its new note action, and voices
// holding a duplicate of the new note are cut, released or faded.
func (s *Session) newNoteActions() {
	for t := range s.channels {
		c := &s.channels[t]
		if c.kick != kickNote {
			continue
		}

		if v := s.slaveOf(t); v != nil && v.nna != song.NNACut {
			c.slave = noVoice
			v.attached = false
			switch v.nna {
			case song.NNAOff:
				v.noteOff()
			case song.NNAFade:
				v.keyoff |= keyFade
			}
		}

		if c.dct == song.DupCheckOff {
			continue
		}
		for i := range s.voices {
			v := &s.voices[i]
			if v.master != t || v.sample != c.sample || s.free(i) {
				continue
			}
			var dup bool
			switch c.dct {
			case song.DupCheckNote:
				dup = v.note == c.note
			case song.DupCheckSample:
				dup = v.handle == c.handle
			case song.DupCheckInstrument:
				dup = true
			}
			if !dup {
				continue
			}
			switch c.dca {
			case song.DupActionCut:
				v.fadeVol = 0
				c.slave = i
			case song.DupActionOff:
				v.noteOff()
			case song.DupActionFade:
				v.keyoff |= keyFade
			}
		}
	}
}

// findVoice picks a voice for a new note: a stopped one if there is any,
// otherwise the quietest by score. It returns noVoice when every voice is too
// loud to steal.
func (s *Session) findVoice() int {
	for i := range s.voices {
		if s.voices[i].kick == kickNone && s.free(i) {
			return i
		}
	}

	best, score := noVoice, stealLimit+1
	for i := range s.voices {
		v := &s.voices[i]
		if v.kick != kickNone {
			continue
		}
		pp := v.totalVol
		if v.smp.Loops() {
			pp <<= loopShift
		}
		if v.attached && v.master != noChannel && s.channels[v.master].slave == i {
			pp <<= foregroundShift
		}
		if pp < score {
			best, score = i, pp
		}
	}
	return best
}

// assignVoices hands every kicked note a voice and copies the channel state
// to the voice each channel drives.
func (s *Session) assignVoices() {
	for t := range s.channels {
		c := &s.channels[t]
		if c.notedelay {
			continue
		}

		if c.kick == kickNote {
			switch {
			case !s.nna && t < len(s.voices):
				c.slave = t
			case !s.nna:
				c.slave = noVoice
			case s.slaveOf(t) == nil:
				c.slave = s.findVoice()
			}
			if i := c.slave; i != noVoice {
				v := &s.voices[i]
				if m := v.master; m != noChannel && s.channels[m].slave == i {
					s.channels[m].slave = noVoice
				}
				c.slave = i
				v.master = t
				v.attached = true
			}
		}

		if v := s.slaveOf(t); v != nil {
			v.kick = c.kick
			v.inst = c.inst
			v.smp = c.smp
			v.sample = c.sample
			v.handle = c.handle
			v.period = c.period
			v.panning = c.panning
			v.chanVol = c.chanVol
			v.fadeVol = c.fadeVol
			v.start = c.start
			v.volFlags = c.volFlags
			v.panFlags = c.panFlags
			v.pitchFlags = c.pitchFlags
			v.volume = c.outVolume
			v.keyoff = c.keyoff
			v.note = c.note
			v.nna = c.nna
		}
		c.kick = kickNone
	}
}

// instrumentEffects runs the IT S7x commands: past note actions, the new note
// action of the channel and envelope switches on its voice.
func (s *Session) instrumentEffects(t int, dat uint8) {
	c := &s.channels[t]
	v := s.slaveOf(t)
	past := func(f func(*Voice)) {
		for i := range s.voices {
			if s.voices[i].master == t {
				f(&s.voices[i])
			}
		}
	}
	// The walker keeps its own flags, the voice copy is refreshed from the
	// channel on every tick.
	toggle := func(flags *song.EnvelopeFlags, env *envelope, on bool) {
		if on {
			*flags |= song.EnvOn
		} else {
			*flags &^= song.EnvOn
		}
		env.flags = *flags
	}

	switch dat & 0xf {
	case 0x0:
		past(func(p *Voice) { p.fadeVol = 0 })
	case 0x1:
		past(func(p *Voice) {
			p.keyoff |= keyOff
			if p.volEnv.flags&song.EnvOn == 0 {
				p.keyoff = keyKill
			}
		})
	case 0x2:
		past(func(p *Voice) { p.keyoff |= keyFade })
	case 0x3:
		c.nna = song.NNACut
	case 0x4:
		c.nna = song.NNAContinue
	case 0x5:
		c.nna = song.NNAOff
	case 0x6:
		c.nna = song.NNAFade
	case 0x7, 0x8:
		if v != nil {
			toggle(&v.volFlags, &v.volEnv, dat&0xf == 0x8)
		}
	case 0x9, 0xa:
		if v != nil {
			toggle(&v.panFlags, &v.panEnv, dat&0xf == 0xa)
		}
	case 0xb, 0xc:
		if v != nil {
			toggle(&v.pitchFlags, &v.pitchEnv, dat&0xf == 0xc)
		}
	}
}
