package s3m

import "github.com/QEStudios/unimod/unitrk"

// Scream Tracker command letters, A = 1.
const (
	cmdSpeed           = 0x01 // Axx
	cmdPositionJump    = 0x02 // Bxx
	cmdPatternBreak    = 0x03 // Cxx, decimal
	cmdVolumeSlide     = 0x04 // Dxy
	cmdSlideDown       = 0x05 // Exy
	cmdSlideUp         = 0x06 // Fxy
	cmdTonePortamento  = 0x07 // Gxx
	cmdVibrato         = 0x08 // Hxy
	cmdTremor          = 0x09 // Ixy
	cmdArpeggio        = 0x0a // Jxy
	cmdVibratoVolSlide = 0x0b // Kxy
	cmdPortaVolSlide   = 0x0c // Lxy
	cmdChannelVolume   = 0x0d // Mxx
	cmdChannelVolSlide = 0x0e // Nxy
	cmdSampleOffset    = 0x0f // Oxx
	cmdPanSlide        = 0x10 // Pxy
	cmdRetrig          = 0x11 // Qxy
	cmdTremolo         = 0x12 // Rxy
	cmdSpecial         = 0x13 // Sxy
	cmdTempo           = 0x14 // Txx
	cmdFineVibrato     = 0x15 // Uxy
	cmdGlobalVolume    = 0x16 // Vxx
	cmdGlobalVolSlide  = 0x17 // Wxy
	cmdPanning         = 0x18 // Xxx
	cmdPanbrello       = 0x19 // Yxy
)

// writeCommand translates one Scream Tracker command into track opcodes.
// posLookup maps order list indices to positions after blank orders were removed.
func writeCommand(uw *unitrk.Writer, cmd, inf uint8, posLookup *[256]uint8) {
	switch cmd {
	case cmdSpeed:
		uw.Op(unitrk.OpS3MEffectA, inf)
	case cmdPositionJump:
		uw.PTEffect(0xb, posLookup[inf])
	case cmdPatternBreak:
		uw.PTEffect(0xd, (inf>>4)*10+inf&0xf)
	case cmdVolumeSlide:
		uw.Op(unitrk.OpS3MEffectD, inf)
	case cmdSlideDown:
		uw.Op(unitrk.OpS3MEffectE, inf)
	case cmdSlideUp:
		uw.Op(unitrk.OpS3MEffectF, inf)
	case cmdTonePortamento:
		uw.Op(unitrk.OpITEffectG, inf)
	case cmdVibrato:
		uw.PTEffect(0x4, inf)
	case cmdTremor:
		uw.Op(unitrk.OpS3MEffectI, inf)
	case cmdArpeggio:
		uw.PTEffect(0x0, inf)
	case cmdVibratoVolSlide:
		uw.PTEffect(0x4, 0)
		uw.Op(unitrk.OpS3MEffectD, inf)
	case cmdPortaVolSlide:
		uw.PTEffect(0x3, 0)
		uw.Op(unitrk.OpS3MEffectD, inf)
	case cmdChannelVolume:
		uw.Op(unitrk.OpITEffectM, inf)
	case cmdChannelVolSlide:
		uw.Op(unitrk.OpITEffectN, inf)
	case cmdSampleOffset:
		uw.PTEffect(0x9, inf)
	case cmdPanSlide:
		uw.Op(unitrk.OpITEffectP, inf)
	case cmdRetrig:
		uw.Op(unitrk.OpS3MEffectQ, inf)
	case cmdTremolo:
		uw.Op(unitrk.OpS3MEffectR, inf)
	case cmdSpecial:
		uw.Op(unitrk.OpITEffectS0, inf)
	case cmdTempo:
		if inf > 0x20 {
			uw.Op(unitrk.OpS3MEffectT, inf)
		}
	case cmdFineVibrato:
		uw.Op(unitrk.OpS3MEffectU, inf)
	case cmdGlobalVolume:
		uw.Op(unitrk.OpXMEffectG, inf)
	case cmdGlobalVolSlide:
		uw.Op(unitrk.OpITEffectW, inf)
	case cmdPanning:
		// 0x00-0x80 maps onto the full 0-255 range.
		pan := int(inf) << 1
		if pan == 256 {
			pan = 255
		}
		uw.PTEffect(0x8, uint8(pan))
	case cmdPanbrello:
		uw.Op(unitrk.OpITEffectY, inf)
	}
}
