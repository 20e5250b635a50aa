package player

import "github.com/QEStudios/unimod/song"

// Periods are clamped to this range before they are turned into a rate.
const (
	MinPeriod = 40
	MaxPeriod = 50000
)

// MaxLinearPeriod is the longest period the linear model turns into a rate.
// Past 24 octaves the 16.16 result no longer falls with every period step.
const MaxLinearPeriod = 24*768 - 1

// c4Rate is the playback rate of middle C at zero finetune.
const c4Rate = 8363

// LinearPeriod returns the period of note under the linear model. fine is the
// sample's finetune biased by 128, so 128 means no detune.
func LinearPeriod(note uint8, fine uint32) int {
	return 10*12*16*4 - int(note)*16*4 - int(fine)/2 + 64
}

// LogPeriod returns the period of note under the logarithmic model, interpolating
// between the eighth-note steps of the table. fine is biased by 128 like LinearPeriod.
func LogPeriod(note uint8, fine uint32) int {
	n := int(note % 12)
	o := int(note / 12)
	fine &= 0xff
	i := n<<3 + int(fine>>4)

	p1 := int(logTable[i])
	var p2 int
	if i+1 < len(logTable) {
		p2 = int(logTable[i+1])
	} else {
		p2 = int(logTable[i+1-96]) >> 1
	}
	return interpolate(int(fine&0xf), 0, 16, p1, p2) >> o
}

// AmigaPeriod returns the hardware period of note for a sample with the given
// middle C rate. A zero rate yields a fixed, harmless period.
func AmigaPeriod(note uint8, speed uint32) int {
	if speed == 0 {
		return 4242
	}
	n := note % 12
	o := note / 12
	return int((c4Rate * amigaTable[n] >> o) / speed)
}

// Period returns the period of note under model m.
func Period(m song.PeriodModel, note uint8, speed uint32) int {
	switch m {
	case song.LinearPeriods:
		return LinearPeriod(note, speed)
	case song.LogPeriods:
		return LogPeriod(note, speed)
	default:
		return AmigaPeriod(note, speed)
	}
}

func clampPeriod(p int) int {
	return min(max(p, MinPeriod), MaxPeriod)
}

// Frequency16 returns the playback rate of period in 16.16 fixed point.
// The period is clamped to [MinPeriod, MaxPeriod] first, and to
// MaxLinearPeriod under the linear model.
func Frequency16(m song.PeriodModel, period int) uint64 {
	p := clampPeriod(period)
	if m == song.LinearPeriods {
		p = min(p, MaxLinearPeriod)
		return uint64(linearTable[p%768]) << 16 >> (p / 768)
	}
	return (c4Rate * 1712 << 16) / uint64(p)
}

// Frequency returns the playback rate of period in Hz.
func Frequency(m song.PeriodModel, period int) uint32 {
	return uint32(Frequency16(m, period) >> 16)
}

func interpolate(p, p1, p2, v1, v2 int) int {
	if p1 == p2 {
		return v1
	}
	return v1 + (p-p1)*(v2-v1)/(p2-p1)
}
