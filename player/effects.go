package player

import (
	"github.com/QEStudios/unimod/song"
	"github.com/QEStudios/unimod/unitrk"
)

// playEffects runs every effect of channel t's current row. s.rr must be
// positioned on the row.
func (s *Session) playEffects(t int, c *Channel) {
	for op := s.rr.Next(); op != 0; op = s.rr.Next() {
		switch op {
		case unitrk.OpNote, unitrk.OpInstrument:
			s.rr.SkipOpcode(op)

		case unitrk.OpPTEffect0:
			s.arpeggio(c, s.rr.GetByte())

		case unitrk.OpPTEffect1:
			if dat := s.rr.GetByte(); dat != 0 {
				c.slideSpeed = int(dat) << 2
			}
			if s.tick != 0 {
				c.tmpPeriod -= c.slideSpeed
			}

		case unitrk.OpPTEffect2:
			if dat := s.rr.GetByte(); dat != 0 {
				c.slideSpeed = int(dat) << 2
			}
			if s.tick != 0 {
				c.tmpPeriod += c.slideSpeed
			}

		case unitrk.OpPTEffect3:
			if dat := s.rr.GetByte(); dat != 0 {
				c.portSpeed = int(dat) << 2
			}
			if c.period != 0 {
				c.kick = kickNone
				s.toneSlide(c)
				c.ownPeriod = true
			}

		case unitrk.OpPTEffect4:
			c.setVibrato(s.rr.GetByte())
			s.vibrato(c)
			c.ownPeriod = true

		case unitrk.OpPTEffect5:
			dat := s.rr.GetByte()
			c.kick = kickNone
			s.toneSlide(c)
			s.volSlide(c, dat)
			c.ownPeriod = true

		case unitrk.OpPTEffect6:
			dat := s.rr.GetByte()
			s.vibrato(c)
			s.volSlide(c, dat)
			c.ownPeriod = true

		case unitrk.OpPTEffect7:
			c.setTremolo(s.rr.GetByte())
			s.tremolo(c, 6)
			c.ownVolume = true

		case unitrk.OpPTEffect8:
			dat := s.rr.GetByte()
			if s.cfg.PanEffects {
				c.panning = int(dat)
				s.panning[t] = int(dat)
			}

		case unitrk.OpPTEffect9:
			if dat := s.rr.GetByte(); dat != 0 {
				c.sOffset = int64(dat) << 8
			}
			c.start = c.hiOffset | c.sOffset
			if c.smp != nil && c.start > int64(c.smp.Length) {
				c.start = int64(c.smp.LoopStart)
			}

		case unitrk.OpPTEffectA:
			s.volSlide(c, s.rr.GetByte())

		case unitrk.OpPTEffectB:
			dat := s.rr.GetByte()
			if s.patDelayRun != 0 {
				break
			}
			s.breakRow = 0
			s.pos = int(dat) - 1
			s.jump = 3

		case unitrk.OpPTEffectC:
			dat := s.rr.GetByte()
			if s.tick != 0 {
				break
			}
			c.tmpVolume = min(int(dat), 64)

		case unitrk.OpPTEffectD:
			dat := s.rr.GetByte()
			if s.patDelayRun != 0 {
				break
			}
			s.breakRow = int(dat)
			s.jump = 3

		case unitrk.OpPTEffectE:
			s.extended(t, c, s.rr.GetByte())

		case unitrk.OpPTEffectF:
			dat := s.rr.GetByte()
			if s.tick != 0 || s.patDelayRun != 0 {
				break
			}
			if s.cfg.ExtendedSpeed && dat >= 0x20 {
				s.bpm = int(dat)
			} else if dat != 0 {
				s.speed = int(dat)
				s.tick = 0
			}

		case unitrk.OpS3MEffectA:
			s.s3mSpeed(s.rr.GetByte())
		case unitrk.OpS3MEffectD:
			s.s3mVolSlide(c, s.rr.GetByte())
		case unitrk.OpS3MEffectE:
			s.s3mSlideDown(c, s.rr.GetByte())
		case unitrk.OpS3MEffectF:
			s.s3mSlideUp(c, s.rr.GetByte())
		case unitrk.OpS3MEffectI:
			s.tremor(c, s.rr.GetByte(), 1)
			c.ownVolume = true
		case unitrk.OpS3MEffectQ:
			s.s3mRetrig(c, s.rr.GetByte())
		case unitrk.OpS3MEffectR:
			c.setTremolo(s.rr.GetByte())
			s.tremolo(c, 7)
			c.ownVolume = true
		case unitrk.OpS3MEffectT:
			dat := s.rr.GetByte()
			if s.tick == 0 && s.patDelayRun == 0 {
				s.bpm = int(dat)
			}
		case unitrk.OpS3MEffectU:
			c.setVibrato(s.rr.GetByte())
			s.fineVibrato(c)
			c.ownPeriod = true

		case unitrk.OpKeyOff:
			c.keyoff |= keyOff
			if c.inst != nil && (!c.inst.VolEnv.On() || c.inst.VolEnv.Flags&song.EnvLoop != 0) {
				c.keyoff = keyKill
			}

		case unitrk.OpKeyFade:
			if s.tick >= int(s.rr.GetByte()) {
				c.keyoff = keyKill
				if c.inst != nil && !c.inst.VolEnv.On() {
					c.fadeVol = 0
				}
			}

		case unitrk.OpVolEffects:
			eff := s.rr.GetByte()
			s.volumeColumn(t, c, eff, s.rr.GetByte())

		case unitrk.OpXMEffect4:
			dat := s.rr.GetByte()
			if s.tick != 0 {
				c.setVibrato(dat)
			}
			s.vibrato(c)
			c.ownPeriod = true

		case unitrk.OpXMEffectA:
			s.xmVolSlide(c, s.rr.GetByte())

		case unitrk.OpXMEffectE1:
			dat := s.rr.GetByte()
			if s.tick == 0 {
				dat = remember(&c.fineUp, dat)
				c.tmpPeriod -= int(dat) << 2
			}

		case unitrk.OpXMEffectE2:
			dat := s.rr.GetByte()
			if s.tick == 0 {
				dat = remember(&c.fineDown, dat)
				c.tmpPeriod += int(dat) << 2
			}

		case unitrk.OpXMEffectEA:
			dat := s.rr.GetByte()
			if s.tick == 0 {
				dat = remember(&c.fineVolUp, dat)
				c.tmpVolume = min(c.tmpVolume+int(dat), 64)
			}

		case unitrk.OpXMEffectEB:
			dat := s.rr.GetByte()
			if s.tick == 0 {
				dat = remember(&c.fineVolDown, dat)
				c.tmpVolume = max(c.tmpVolume-int(dat), 0)
			}

		case unitrk.OpXMEffectG:
			// Global volume is 0-64 in the pattern, the song volume runs to 128.
			s.volume = min(int(s.rr.GetByte())*2, 128)

		case unitrk.OpXMEffectH:
			s.xmGlobalSlide(s.rr.GetByte())

		case unitrk.OpXMEffectL:
			dat := s.rr.GetByte()
			if s.tick == 0 && c.inst != nil {
				if v := s.slaveOf(t); v != nil {
					v.volEnv.seek(int(dat))
					v.panEnv.seek(int(dat))
				}
			}

		case unitrk.OpXMEffectP:
			s.xmPanSlide(c, s.rr.GetByte())

		case unitrk.OpXMEffectX1:
			dat := s.rr.GetByte()
			if s.tick == 0 {
				c.period -= int(remember(&c.extraFineUp, dat))
			}
			c.tmpPeriod = c.period
			c.ownPeriod = true

		case unitrk.OpXMEffectX2:
			dat := s.rr.GetByte()
			if s.tick == 0 {
				c.period += int(remember(&c.extraFineDown, dat))
			}
			c.tmpPeriod = c.period
			c.ownPeriod = true

		case unitrk.OpITEffectG:
			if dat := s.rr.GetByte(); dat != 0 {
				c.slideSpeed = int(dat)
			}
			if c.period != 0 {
				if s.tick < 1 && c.newSample != 0 {
					c.kick = kickNote
					c.start = -1
				} else {
					c.kick = kickNone
				}
				s.itToneSlide(c)
				c.ownPeriod = true
			}

		case unitrk.OpITEffectH:
			c.setVibrato(s.rr.GetByte())
			s.itVibrato(c)
			c.ownPeriod = true

		case unitrk.OpITEffectI:
			s.tremor(c, s.rr.GetByte(), 0)
			c.ownVolume = true

		case unitrk.OpITEffectM:
			c.chanVol = min(int(s.rr.GetByte()), 64)

		case unitrk.OpITEffectN:
			dat := remember(&c.chanVolSlide, s.rr.GetByte())
			c.chanVol = min(max(nibbleSlide(c.chanVol, dat, s.tick), 0), 64)

		case unitrk.OpITEffectP:
			s.itPanSlide(c, s.rr.GetByte())

		case unitrk.OpITEffectU:
			c.setVibrato(s.rr.GetByte())
			s.fineVibrato(c)
			c.ownPeriod = true

		case unitrk.OpITEffectW:
			s.itGlobalSlide(s.rr.GetByte())

		case unitrk.OpITEffectY:
			dat := s.rr.GetByte()
			if dat&0x0f != 0 {
				c.panbDepth = dat & 0xf
			}
			if dat&0xf0 != 0 {
				c.panbSpeed = dat >> 4
			}
			s.panbrello(t, c)

		case unitrk.OpITEffectS0:
			s.ssEffects(t, c, s.rr.GetByte())

		default:
			s.rr.SkipOpcode(op)
		}
	}
}

// remember returns dat, or the last nonzero dat stored in mem when dat is zero.
func remember(mem *uint8, dat uint8) uint8 {
	if dat != 0 {
		*mem = dat
	}
	return *mem
}

func (c *Channel) setVibrato(dat uint8) {
	if dat&0x0f != 0 {
		c.vibDepth = dat & 0xf
	}
	if dat&0xf0 != 0 {
		c.vibSpeed = (dat & 0xf0) >> 2
	}
}

func (c *Channel) setTremolo(dat uint8) {
	if dat&0x0f != 0 {
		c.trmDepth = dat & 0xf
	}
	if dat&0xf0 != 0 {
		c.trmSpeed = (dat & 0xf0) >> 2
	}
}

// extended runs the ProTracker Exy effects.
func (s *Session) extended(t int, c *Channel, dat uint8) {
	nib := dat & 0xf
	switch dat >> 4 {
	case 0x1:
		if s.tick == 0 {
			c.tmpPeriod -= int(nib) << 2
		}
	case 0x2:
		if s.tick == 0 {
			c.tmpPeriod += int(nib) << 2
		}
	case 0x3:
		c.glissando = nib
	case 0x4:
		c.waveControl = c.waveControl&0xf0 | nib
	case 0x6:
		if s.tick != 0 {
			break
		}
		if nib == 0 {
			s.loopRow = s.row - 1
			break
		}
		if s.loopCount > 0 {
			s.loopCount--
		} else {
			s.loopCount = int(nib)
		}
		if s.loopCount != 0 {
			s.row = s.loopRow
		}
	case 0x7:
		c.waveControl = c.waveControl&0x0f | nib<<4
	case 0x8:
		if s.cfg.PanEffects {
			pan := int(nib) * 17
			if nib <= 8 {
				pan = int(nib) * 16
			}
			c.panning = pan
			s.panning[t] = pan
		}
	case 0x9:
		if nib > 0 {
			if c.retrig == 0 {
				c.kick = kickNote
				c.retrig = int(nib)
			}
			c.retrig--
		}
	case 0xa:
		if s.tick == 0 {
			c.tmpVolume = min(c.tmpVolume+int(nib), 64)
		}
	case 0xb:
		if s.tick == 0 {
			c.tmpVolume = max(c.tmpVolume-int(nib), 0)
		}
	case 0xc:
		if s.tick >= int(nib) {
			c.tmpVolume = 0
		}
	case 0xd:
		if s.tick == int(nib) {
			c.notedelay = false
		} else if s.tick == 0 {
			c.notedelay = true
		}
	case 0xe:
		if s.tick == 0 && s.patDelayRun == 0 {
			s.patDelay = int(nib) + 1
		}
	}
	// 0: filter, 5: finetune, F: invert loop. Not supported.
}

// waveform returns the value of a vibrato or tremolo waveform at pos, 0-255.
func (s *Session) waveform(wave uint8, pos int8) int {
	q := (int(pos) >> 2) & 0x1f
	switch wave & 3 {
	case 0:
		return int(vibratoTable[q])
	case 1:
		q <<= 3
		if pos < 0 {
			q = 255 - q
		}
		return q
	case 2:
		return 255
	default:
		return s.rng.IntN(256)
	}
}

func (c *Channel) vibratoPeriod(delta int) {
	if c.vibPos >= 0 {
		c.period = c.tmpPeriod + delta
	} else {
		c.period = c.tmpPeriod - delta
	}
}

func (s *Session) vibrato(c *Channel) {
	c.vibratoPeriod(s.waveform(c.waveControl, c.vibPos) * int(c.vibDepth) >> 7 << 2)
	if s.tick != 0 {
		c.vibPos += int8(c.vibSpeed)
	}
}

// fineVibrato is the S3M and IT Ux effect: a quarter of the depth of vibrato.
func (s *Session) fineVibrato(c *Channel) {
	c.vibratoPeriod(s.waveform(c.waveControl, c.vibPos) * int(c.vibDepth) >> 8)
	c.vibPos += int8(c.vibSpeed)
}

func (s *Session) itVibrato(c *Channel) {
	c.vibratoPeriod(s.waveform(c.waveControl, c.vibPos) * int(c.vibDepth) >> 8 << 2)
	c.vibPos += int8(c.vibSpeed)
}

// tremolo scales the waveform by the depth and shift.
func (s *Session) tremolo(c *Channel, shift uint) {
	delta := s.waveform(c.waveControl>>4, c.trmPos) * int(c.trmDepth) >> shift
	if c.trmPos >= 0 {
		c.volume = min(c.tmpVolume+delta, 64)
	} else {
		c.volume = max(c.tmpVolume-delta, 0)
	}
	if s.tick != 0 {
		c.trmPos += int8(c.trmSpeed)
	}
}

func (s *Session) volSlide(c *Channel, dat uint8) {
	if s.tick == 0 {
		return
	}
	c.tmpVolume += int(dat >> 4)
	c.tmpVolume -= int(dat & 0xf)
	c.tmpVolume = min(max(c.tmpVolume, 0), 64)
}

func (s *Session) toneSlide(c *Channel) {
	slideTowards(c, s.tick, c.portSpeed)
}

func (s *Session) itToneSlide(c *Channel) {
	slideTowards(c, s.tick, c.slideSpeed<<2)
}

// slideTowards moves the period by speed towards the note's period on ticks after the first.
func slideTowards(c *Channel, tick, speed int) {
	if c.period == 0 {
		return
	}
	if tick == 0 {
		c.tmpPeriod = c.period
		return
	}
	dist := c.period - c.wantedPeriod
	switch {
	case dist == 0 || speed > abs(dist):
		c.period = c.wantedPeriod
	case dist > 0:
		c.period -= speed
	default:
		c.period += speed
	}
	c.tmpPeriod = c.period
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (s *Session) arpeggio(c *Channel, dat uint8) {
	if dat == 0 {
		return
	}
	note := c.note
	switch s.tick % 3 {
	case 1:
		note += dat >> 4
	case 2:
		note += dat & 0xf
	}
	c.period = Period(s.model, note, c.speed)
	c.ownPeriod = true
}

// nibbleSlide applies an S3M style slide: x0 slides up and 0y slides down
// on every tick, xF and Fy slide once on the first tick.
func nibbleSlide(v int, dat uint8, tick int) int {
	hi, lo := int(dat>>4), int(dat&0xf)
	switch {
	case hi == 0:
		v -= lo
	case lo == 0:
		v += hi
	case hi == 0xf:
		if tick == 0 {
			v -= lo
		}
	case lo == 0xf:
		if tick == 0 {
			v += hi
		}
	}
	return v
}

func (s *Session) s3mVolSlide(c *Channel, dat uint8) {
	dat = remember(&c.s3mVolSlide, dat)
	c.tmpVolume = min(max(nibbleSlide(c.tmpVolume, dat, s.tick), 0), 64)
}

// s3mSlide returns the period change of an S3M pitch slide for this tick.
func (s *Session) s3mSlide(c *Channel, dat uint8) int {
	if dat != 0 {
		c.slideSpeed = int(dat)
	} else {
		dat = uint8(c.slideSpeed)
	}
	hi, lo := dat>>4, int(dat&0xf)
	switch {
	case hi == 0xf:
		if s.tick == 0 {
			return lo << 2
		}
	case hi == 0xe:
		if s.tick == 0 {
			return lo
		}
	default:
		if s.tick != 0 {
			return int(dat) << 2
		}
	}
	return 0
}

func (s *Session) s3mSlideDown(c *Channel, dat uint8) {
	c.tmpPeriod += s.s3mSlide(c, dat)
}

func (s *Session) s3mSlideUp(c *Channel, dat uint8) {
	c.tmpPeriod -= s.s3mSlide(c, dat)
}

// tremor alternates the volume between on and off ticks. S3M counts one
// extra tick for each phase, IT does not.
func (s *Session) tremor(c *Channel, dat uint8, extra int) {
	dat = remember(&c.s3mTremorOn, dat)
	if s.tick == 0 {
		return
	}
	on := int(dat>>4) + extra
	off := int(dat&0xf) + extra
	if on+off == 0 {
		return
	}
	c.s3mTremor %= on + off
	if c.s3mTremor < on {
		c.volume = c.tmpVolume
	} else {
		c.volume = 0
	}
	c.s3mTremor++
}

func (s *Session) s3mRetrig(c *Channel, dat uint8) {
	if dat != 0 {
		c.s3mRtgSlide = dat >> 4
		c.s3mRtgSpeed = dat & 0xf
	}
	if c.s3mRtgSpeed == 0 {
		return
	}
	if c.retrig == 0 {
		if c.kick == kickNone {
			c.kick = kickRetrig
		}
		c.retrig = int(c.s3mRtgSpeed)

		if s.tick != 0 {
			v := c.tmpVolume
			switch sl := c.s3mRtgSlide; {
			case sl >= 1 && sl <= 5:
				v -= 1 << (sl - 1)
			case sl == 6:
				v = 2 * v / 3
			case sl == 7:
				v >>= 1
			case sl >= 9 && sl <= 0xd:
				v += 1 << (sl - 9)
			case sl == 0xe:
				v = 3 * v / 2
			case sl == 0xf:
				v <<= 1
			}
			c.tmpVolume = min(max(v, 0), 64)
		}
	}
	c.retrig--
}

func (s *Session) s3mSpeed(dat uint8) {
	if s.tick != 0 || s.patDelayRun != 0 || dat == 0 {
		return
	}
	s.speed = int(dat)
	s.tick = 0
}

func (s *Session) xmVolSlide(c *Channel, dat uint8) {
	dat = remember(&c.s3mVolSlide, dat)
	if s.tick == 0 {
		return
	}
	if dat>>4 == 0 {
		c.tmpVolume -= int(dat & 0xf)
	} else {
		c.tmpVolume += int(dat >> 4)
	}
	c.tmpVolume = min(max(c.tmpVolume, 0), 64)
}

func (s *Session) xmGlobalSlide(dat uint8) {
	if s.tick == 0 {
		return
	}
	dat = remember(&s.globalSlide, dat)
	if dat&0xf0 != 0 {
		dat &= 0xf0
	}
	s.volume += (int(dat>>4) - int(dat&0xf)) * 2
	s.volume = min(max(s.volume, 0), 128)
}

func (s *Session) itGlobalSlide(dat uint8) {
	dat = remember(&s.globalSlide, dat)
	hi, lo := int(dat>>4), int(dat&0xf)
	switch {
	case lo == 0:
		s.volume += hi
	case hi == 0:
		s.volume -= lo
	case lo == 0xf:
		if s.tick == 0 {
			s.volume += hi
		}
	case hi == 0xf:
		if s.tick == 0 {
			s.volume -= lo
		}
	}
	s.volume = min(max(s.volume, 0), 128)
}

func (s *Session) xmPanSlide(c *Channel, dat uint8) {
	dat = remember(&c.panSlide, dat)
	if s.tick == 0 {
		return
	}
	hi, lo := int(dat>>4), int(dat&0xf)
	if hi != 0 {
		lo = 0
	}
	pan := c.panning
	if pan == song.PanSurround {
		pan = song.PanCenter
	}
	c.panning = clampPan(pan - lo + hi)
}

func (s *Session) itPanSlide(c *Channel, dat uint8) {
	dat = remember(&c.panSlide, dat)
	pan := c.panning
	if pan == song.PanSurround {
		pan = song.PanCenter
	}
	hi, lo := int(dat>>4), int(dat&0xf)
	switch {
	case hi == 0:
		pan += lo << 2
	case lo == 0:
		pan -= hi << 2
	case hi == 0xf:
		if s.tick == 0 {
			pan += lo << 2
		}
	case lo == 0xf:
		if s.tick == 0 {
			pan -= hi << 2
		}
	}
	c.panning = clampPan(pan)
}

func (s *Session) panbrello(t int, c *Channel) {
	var delta int
	switch c.panbWave {
	case 0:
		delta = int(panbrelloTable[c.panbPos])
	case 1:
		delta = int(c.panbPos << 3)
	case 2:
		delta = 64
	default:
		if c.panbPos >= c.panbSpeed {
			c.panbPos = 0
		}
		delta = s.rng.IntN(256)
	}
	delta = delta * int(c.panbDepth) / 8
	c.panning = clampPan(s.panning[t] + delta)
	c.panbPos += c.panbSpeed
}

// ssEffects runs the IT and S3M Sxy effects. They share one memory slot.
func (s *Session) ssEffects(t int, c *Channel, dat uint8) {
	if dat == 0 {
		dat = c.ssEffect<<4 | c.ssData
	} else {
		c.ssEffect = dat >> 4
		c.ssData = dat & 0xf
	}
	inf := dat & 0xf

	switch dat >> 4 {
	case unitrk.SSGlissando:
		s.extended(t, c, 0x30|inf)
	case unitrk.SSFinetune:
		s.extended(t, c, 0x50|inf)
	case unitrk.SSVibWave:
		s.extended(t, c, 0x40|inf)
	case unitrk.SSTremWave:
		s.extended(t, c, 0x70|inf)
	case unitrk.SSPanWave:
		c.panbWave = inf
	case unitrk.SSFrameDelay:
		s.extended(t, c, 0xe0|inf)
	case unitrk.SSS7Effects:
		s.instrumentEffects(t, inf)
	case unitrk.SSPanning:
		s.extended(t, c, 0x80|inf)
	case unitrk.SSSurround:
		c.panning = song.PanSurround
		s.panning[t] = song.PanSurround
	case unitrk.SSHiOffset:
		c.hiOffset = int64(inf) << 16
	case unitrk.SSPatLoop:
		s.extended(t, c, 0x60|inf)
	case unitrk.SSNoteCut:
		s.extended(t, c, 0xc0|inf)
	case unitrk.SSNoteDelay:
		s.extended(t, c, 0xd0|inf)
	case unitrk.SSPatDelay:
		s.extended(t, c, 0xe0|inf)
	}
}

// volumeColumn runs a volume column effect. The column keeps its own memory.
func (s *Session) volumeColumn(t int, c *Channel, eff, dat uint8) {
	if eff == 0 && dat == 0 {
		eff, dat = c.volEffect, c.volData
	} else {
		c.volEffect, c.volData = eff, dat
	}

	switch eff {
	case unitrk.VolVolume:
		if s.tick == 0 {
			c.tmpVolume = min(int(dat), 64)
		}
	case unitrk.VolPanning:
		if s.cfg.PanEffects {
			c.panning = int(dat)
			s.panning[t] = int(dat)
		}
	case unitrk.VolVolSlide:
		s.s3mVolSlide(c, dat)
	case unitrk.VolPitchSlideDown:
		s.s3mSlideDown(c, dat)
	case unitrk.VolPitchSlideUp:
		s.s3mSlideUp(c, dat)
	case unitrk.VolPortamento:
		if dat != 0 {
			c.slideSpeed = int(dat)
		}
		if c.period != 0 {
			if s.tick != s.speed-1 && c.newSample != 0 {
				c.kick = kickNote
				c.start = -1
			} else {
				c.kick = kickNone
			}
			s.itToneSlide(c)
			c.ownPeriod = true
		}
	case unitrk.VolVibrato:
		c.setVibrato(dat)
		s.itVibrato(c)
		c.ownPeriod = true
	}
}
