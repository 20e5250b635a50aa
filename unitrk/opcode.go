package unitrk

import "fmt"

// Opcode identifies one instruction in a track row.
// Zero is reserved: it marks the end of a row.
type Opcode uint8

const (
	OpNote       Opcode = iota + 1 // Start a note. Operand: note number.
	OpInstrument                   // Select an instrument. Operand: instrument index.

	// ProTracker effects 0 through F. Operand: effect data.
	OpPTEffect0
	OpPTEffect1
	OpPTEffect2
	OpPTEffect3
	OpPTEffect4
	OpPTEffect5
	OpPTEffect6
	OpPTEffect7
	OpPTEffect8
	OpPTEffect9
	OpPTEffectA
	OpPTEffectB
	OpPTEffectC
	OpPTEffectD
	OpPTEffectE
	OpPTEffectF

	// Scream Tracker 3 effects.
	OpS3MEffectA
	OpS3MEffectD
	OpS3MEffectE
	OpS3MEffectF
	OpS3MEffectI
	OpS3MEffectQ
	OpS3MEffectR
	OpS3MEffectT
	OpS3MEffectU

	OpKeyOff     // No operand.
	OpKeyFade    // Operand: tick at which the key fades.
	OpVolEffects // Operands: volume column effect, data.

	// FastTracker 2 effects.
	OpXMEffect4
	OpXMEffectA
	OpXMEffectE1
	OpXMEffectE2
	OpXMEffectEA
	OpXMEffectEB
	OpXMEffectG
	OpXMEffectH
	OpXMEffectL
	OpXMEffectP
	OpXMEffectX1
	OpXMEffectX2

	// Impulse Tracker effects.
	OpITEffectG
	OpITEffectH
	OpITEffectI
	OpITEffectM
	OpITEffectN
	OpITEffectP
	OpITEffectU
	OpITEffectW
	OpITEffectY
	OpITEffectS0

	OpLast
)

// operands is the static operand count table, indexed by opcode.
var operands = [256]uint8{
	OpNote: 1, OpInstrument: 1,

	OpPTEffect0: 1, OpPTEffect1: 1, OpPTEffect2: 1, OpPTEffect3: 1,
	OpPTEffect4: 1, OpPTEffect5: 1, OpPTEffect6: 1, OpPTEffect7: 1,
	OpPTEffect8: 1, OpPTEffect9: 1, OpPTEffectA: 1, OpPTEffectB: 1,
	OpPTEffectC: 1, OpPTEffectD: 1, OpPTEffectE: 1, OpPTEffectF: 1,

	OpS3MEffectA: 1, OpS3MEffectD: 1, OpS3MEffectE: 1, OpS3MEffectF: 1,
	OpS3MEffectI: 1, OpS3MEffectQ: 1, OpS3MEffectR: 1, OpS3MEffectT: 1,
	OpS3MEffectU: 1,

	OpKeyOff: 0, OpKeyFade: 1, OpVolEffects: 2,

	OpXMEffect4: 1, OpXMEffectA: 1, OpXMEffectE1: 1, OpXMEffectE2: 1,
	OpXMEffectEA: 1, OpXMEffectEB: 1, OpXMEffectG: 1, OpXMEffectH: 1,
	OpXMEffectL: 1, OpXMEffectP: 1, OpXMEffectX1: 1, OpXMEffectX2: 1,

	OpITEffectG: 1, OpITEffectH: 1, OpITEffectI: 1, OpITEffectM: 1,
	OpITEffectN: 1, OpITEffectP: 1, OpITEffectU: 1, OpITEffectW: 1,
	OpITEffectY: 1, OpITEffectS0: 1,
}

// Operands returns how many operand bytes follow op in a row.
func Operands(op Opcode) int {
	return int(operands[op])
}

func (op Opcode) isValid() bool {
	return op >= OpNote && op < OpLast
}

var opcodeNames = [...]string{
	OpNote:       "note",
	OpInstrument: "inst",
	OpPTEffect0:  "0",
	OpPTEffect1:  "1",
	OpPTEffect2:  "2",
	OpPTEffect3:  "3",
	OpPTEffect4:  "4",
	OpPTEffect5:  "5",
	OpPTEffect6:  "6",
	OpPTEffect7:  "7",
	OpPTEffect8:  "8",
	OpPTEffect9:  "9",
	OpPTEffectA:  "A",
	OpPTEffectB:  "B",
	OpPTEffectC:  "C",
	OpPTEffectD:  "D",
	OpPTEffectE:  "E",
	OpPTEffectF:  "F",
	OpS3MEffectA: "sA",
	OpS3MEffectD: "sD",
	OpS3MEffectE: "sE",
	OpS3MEffectF: "sF",
	OpS3MEffectI: "sI",
	OpS3MEffectQ: "sQ",
	OpS3MEffectR: "sR",
	OpS3MEffectT: "sT",
	OpS3MEffectU: "sU",
	OpKeyOff:     "off",
	OpKeyFade:    "fade",
	OpVolEffects: "vol",
	OpXMEffect4:  "x4",
	OpXMEffectA:  "xA",
	OpXMEffectE1: "xE1",
	OpXMEffectE2: "xE2",
	OpXMEffectEA: "xEA",
	OpXMEffectEB: "xEB",
	OpXMEffectG:  "xG",
	OpXMEffectH:  "xH",
	OpXMEffectL:  "xL",
	OpXMEffectP:  "xP",
	OpXMEffectX1: "xX1",
	OpXMEffectX2: "xX2",
	OpITEffectG:  "iG",
	OpITEffectH:  "iH",
	OpITEffectI:  "iI",
	OpITEffectM:  "iM",
	OpITEffectN:  "iN",
	OpITEffectP:  "iP",
	OpITEffectU:  "iU",
	OpITEffectW:  "iW",
	OpITEffectY:  "iY",
	OpITEffectS0: "iS",
}

func (op Opcode) String() string {
	if !op.isValid() {
		return fmt.Sprintf("op(%d)", uint8(op))
	}
	return opcodeNames[op]
}

// Sub-commands of OpITEffectS0, selected by the high nibble of the operand.
const (
	SSGlissando = iota + 1
	SSFinetune
	SSVibWave
	SSTremWave
	SSPanWave
	SSFrameDelay
	SSS7Effects
	SSPanning
	SSSurround
	SSHiOffset
	SSPatLoop
	SSNoteCut
	SSNoteDelay
	SSPatDelay
)

// Volume column effects carried by OpVolEffects.
const (
	VolVolume = iota + 1
	VolPanning
	VolVolSlide
	VolPitchSlideDown
	VolPitchSlideUp
	VolPortamento
	VolVibrato
)
