package player

import (
	"math"
	"time"
)

// A song at 125 BPM plays 50 ticks per second.

// TickRate returns how many times per second HandleTick has to be called at bpm.
func TickRate(bpm int) float64 {
	return float64(bpm) * 2 / 5
}

// TickInterval returns the time between two ticks at bpm.
func TickInterval(bpm int) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return 2500 * time.Millisecond / time.Duration(bpm)
}

// SamplesPerTick returns the whole number of output frames closest to one tick
// at bpm for a mixer running at mixRate, with the relative error of the
// resulting tick rate.
func SamplesPerTick(mixRate, bpm int) (frames int, relErr float64) {
	if bpm <= 0 || mixRate <= 0 {
		return 0, 0
	}
	target := TickRate(bpm)
	frames = max(int(math.Round(float64(mixRate)/target)), 1)
	achieved := float64(mixRate) / float64(frames)
	return frames, math.Abs(achieved-target) / target
}
