package player

import "github.com/QEStudios/unimod/song"

const (
	fadeMax     = 32768 // Fade volume of a note that has not started fading.
	envVolMid   = 256
	envPanMid   = 128
	envPitchMid = 32
)

// updateVoices pushes the state of every music voice to the driver: it starts
// kicked samples, walks the envelopes and computes volume, panning and
// frequency for the tick.
func (s *Session) updateVoices() {
	for i := range s.voices {
		v := &s.voices[i]
		smp := v.smp
		if smp == nil {
			continue
		}

		v.period = clampPeriod(v.period)
		if v.kick != kickNone {
			start := v.start
			if start == -1 {
				start = 0
				if smp.Flags&song.SampleUSTLoop != 0 {
					start = int64(smp.LoopStart)
				}
			}
			s.voicePlay(i, smp, start)
			v.fadeVol = fadeMax
			v.sweepPos = 0
			if ins := v.inst; ins != nil && v.kick != kickRetrig {
				v.volEnv.start(v.volFlags, &ins.VolEnv, v.keyoff)
				v.panEnv.start(v.panFlags, &ins.PanEnv, v.keyoff)
				v.pitchEnv.start(v.pitchFlags, &ins.PitchEnv, v.keyoff)
			}
			v.kick = kickNone
		}

		envVol, envPan, envPitch := envVolMid, envPanMid, envPitchMid
		if v.inst != nil {
			var ended bool
			envVol, ended = v.volEnv.process(envVolMid, v.keyoff)
			if ended {
				v.keyoff |= keyFade
				if envVol == 0 {
					v.fadeVol = 0
				}
			}
			envPan, _ = v.panEnv.process(envPanMid, v.keyoff)
			envPitch, _ = v.pitchEnv.process(envPitchMid, v.keyoff)
		}

		vol := v.fadeVol * v.chanVol * v.volume / 16384
		v.totalVol = vol >> 2
		vol = vol * envVol * s.volume / 4194304
		if v.master != noChannel && v.master < len(s.channels) && s.channels[v.master].muted {
			vol = 0
		}
		s.setVolume(i, vol, s.cfg.MusicVolume)

		switch {
		case v.panning == song.PanSurround:
			s.setPanning(i, song.PanSurround)
		case v.panEnv.on():
			s.setPanning(i, doPan(envPan, v.panning))
		default:
			s.setPanning(i, v.panning)
		}

		period := v.period - s.autoVibrato(v, smp)
		if v.pitchEnv.on() {
			period -= envPitch - envPitchMid
		}
		s.drv.VoiceSetFrequency(i, Frequency(s.model, clampPeriod(period)))

		if v.fadeVol == 0 {
			s.stopVoice(i)
		} else if v.inst != nil && v.keyoff&keyFade != 0 {
			v.fadeVol = max(v.fadeVol-int(v.inst.VolFade), 0)
		}
	}

	if s.bpm != s.lastBPM {
		s.drv.SetBPM(uint8(s.bpm))
		s.lastBPM = s.bpm
	}
}

// doPan applies a panning envelope value around pan, scaled down as pan gets
// closer to either side.
func doPan(envPan, pan int) int {
	d := pan - envPanMid
	if d < 0 {
		d = -d
	}
	return clampPan(pan + (envPan-envPanMid)*(envPanMid-d)/envPanMid)
}

// autoVibrato returns the period offset of the sample's auto-vibrato for this
// tick and advances it.
func (s *Session) autoVibrato(v *Voice, smp *song.Sample) int {
	if smp.VibDepth == 0 {
		return 0
	}
	pos := v.avibPos
	var vib int
	switch smp.VibType {
	case 0:
		vib = int(autoVibratoTable[pos&127])
		if pos&0x80 != 0 {
			vib = -vib
		}
	case 1:
		vib = 64
		if pos&0x80 != 0 {
			vib = -vib
		}
	case 2:
		vib = 63 - int((pos+128)>>1)
	default:
		vib = int((pos+128)>>1) - 64
	}
	v.avibPos += smp.VibRate

	depth := int(smp.VibDepth)
	sweep := int(smp.VibSweep)
	if smp.VibFlags&song.VibITStyle != 0 {
		var dpt int
		if v.sweepPos>>8 < depth {
			v.sweepPos += sweep
			dpt = v.sweepPos
		} else {
			dpt = depth << 8
		}
		vib = vib * dpt >> 16
		if !v.attached {
			return 0
		}
		if s.model != song.LinearPeriods {
			vib >>= 1
		}
		return vib
	}

	var dpt int
	switch {
	case v.sweepPos < sweep && v.keyoff&keyOff == 0:
		dpt = v.sweepPos * depth / sweep
		v.sweepPos++
	case v.sweepPos < sweep:
		dpt = 0
	default:
		dpt = depth
	}
	return vib * dpt >> 8
}

// voicePlay starts smp on voice i at start, in samples.
func (s *Session) voicePlay(i int, smp *song.Sample, start int64) {
	if start < 0 || start >= int64(smp.Length) {
		return
	}
	loopEnd := smp.LoopEnd
	if smp.Loops() {
		loopEnd = min(loopEnd, smp.Length)
	}
	s.drv.VoicePlay(i, smp.Handle, uint32(start), smp.Length, smp.LoopStart, loopEnd, smp.Flags)
}

// setVolume scales vol, 0-256, by the master volume and the music or sound
// effect volume before handing it to the driver.
func (s *Session) setVolume(i, vol, group int) {
	vol = vol * s.cfg.Volume * group / 16384
	s.drv.VoiceSetVolume(i, uint16(min(max(vol, 0), 256)))
}

// setPanning applies the stereo separation and reversal settings.
func (s *Session) setPanning(i, pan int) {
	if pan != song.PanSurround {
		if s.cfg.Reverse {
			pan = song.PanRight - pan
		}
		pan = (pan-envPanMid)*s.cfg.PanSeparation/128 + envPanMid
	}
	s.drv.VoiceSetPanning(i, uint16(pan))
}

// stopVoice stops voice i. Sound effect voices lose their flags so the pool
// can reuse them.
func (s *Session) stopVoice(i int) {
	s.drv.VoiceStop(i)
	if k := i - len(s.voices); k >= 0 && k < len(s.sfx) {
		s.sfx[k] = 0
	}
}
