package xm

import "github.com/QEStudios/unimod/unitrk"

// FastTracker effect numbers past F are letters, G = 16.
const (
	effVibrato        = 0x4
	effVolumeSlide    = 0xa
	effPatternBreak   = 0xd
	effExtended       = 0xe
	effGlobalVolume   = 'G' - 55
	effGlobalVolSlide = 'H' - 55
	effKeyOff         = 'K' - 55
	effEnvelopePos    = 'L' - 55
	effPanSlide       = 'P' - 55
	effRetrig         = 'R' - 55
	effTremor         = 'T' - 55
	effExtraFine      = 'X' - 55
)

// writeVolume translates the volume column.
func writeVolume(uw *unitrk.Writer, vol uint8) {
	lo := vol & 0xf
	switch vol >> 4 {
	case 0x6: // slide down
		if lo != 0 {
			uw.Op(unitrk.OpXMEffectA, lo)
		}
	case 0x7: // slide up
		if lo != 0 {
			uw.Op(unitrk.OpXMEffectA, vol<<4)
		}
	// A zero nibble on the fine slides means no slide, as with ProTracker EAx and EBx.
	case 0x8:
		uw.PTEffect(0xe, 0xb0|lo)
	case 0x9:
		uw.PTEffect(0xe, 0xa0|lo)
	case 0xa: // vibrato speed
		uw.PTEffect(0x4, vol<<4)
	case 0xb: // vibrato depth
		uw.PTEffect(0x4, lo)
	case 0xc:
		uw.PTEffect(0x8, vol<<4)
	case 0xd: // pan left
		if lo != 0 {
			uw.Op(unitrk.OpXMEffectP, lo)
		}
	case 0xe: // pan right
		if lo != 0 {
			uw.Op(unitrk.OpXMEffectP, vol<<4)
		}
	case 0xf:
		uw.PTEffect(0x3, vol<<4)
	default:
		if vol >= 0x10 && vol <= 0x50 {
			uw.PTEffect(0xc, vol-0x10)
		}
	}
}

// writeEffect translates the effect column.
func writeEffect(uw *unitrk.Writer, eff, dat uint8) {
	switch eff {
	case effVibrato:
		uw.Op(unitrk.OpXMEffect4, dat)
	case effVolumeSlide:
		uw.Op(unitrk.OpXMEffectA, dat)
	case effExtended:
		switch dat >> 4 {
		case 0x1:
			uw.Op(unitrk.OpXMEffectE1, dat&0xf)
		case 0x2:
			uw.Op(unitrk.OpXMEffectE2, dat&0xf)
		case 0xa:
			uw.Op(unitrk.OpXMEffectEA, dat&0xf)
		case 0xb:
			uw.Op(unitrk.OpXMEffectEB, dat&0xf)
		default:
			uw.PTEffect(0xe, dat)
		}
	case effGlobalVolume:
		uw.Op(unitrk.OpXMEffectG, min(dat, 64))
	case effGlobalVolSlide:
		uw.Op(unitrk.OpXMEffectH, dat)
	case effKeyOff:
		uw.Op(unitrk.OpKeyFade, dat)
	case effEnvelopePos:
		uw.Op(unitrk.OpXMEffectL, dat)
	case effPanSlide:
		uw.Op(unitrk.OpXMEffectP, dat)
	case effRetrig:
		uw.Op(unitrk.OpS3MEffectQ, dat)
	case effTremor:
		uw.Op(unitrk.OpS3MEffectI, dat)
	case effExtraFine:
		switch dat >> 4 {
		case 1:
			uw.Op(unitrk.OpXMEffectX1, dat&0xf)
		case 2:
			uw.Op(unitrk.OpXMEffectX2, dat&0xf)
		}
	default:
		if eff <= 0xf {
			if eff == effPatternBreak {
				dat = (dat>>4)*10 + dat&0xf
			}
			uw.PTEffect(eff, dat)
		}
	}
}
