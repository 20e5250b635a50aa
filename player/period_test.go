package player

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/QEStudios/unimod/song"
)

func TestMiddleC(t *testing.T) {
	require.Equal(t, 1712, AmigaPeriod(48, c4Rate))
	require.Equal(t, 1712, LogPeriod(48, 128))
	require.Equal(t, 4608, LinearPeriod(48, 128))

	require.Equal(t, uint32(c4Rate), Frequency(song.AmigaPeriods, 1712))
	require.Equal(t, uint32(c4Rate), Frequency(song.LogPeriods, 1712))
	require.Equal(t, uint32(c4Rate), Frequency(song.LinearPeriods, 4608))
}

func TestOctaves(t *testing.T) {
	for _, m := range []song.PeriodModel{song.AmigaPeriods, song.LogPeriods, song.LinearPeriods} {
		speed := uint32(128)
		if m == song.AmigaPeriods {
			speed = c4Rate
		}
		low := Frequency(m, Period(m, 0, speed))
		require.InDelta(t, c4Rate/16, low, 2, m.String())
		high := Frequency(m, Period(m, 60, speed))
		require.InDelta(t, c4Rate*2, high, 2, m.String())
	}
}

func TestLinearFrequencyDecreases(t *testing.T) {
	prev := Frequency16(song.LinearPeriods, MinPeriod)
	for p := MinPeriod + 1; p <= MaxLinearPeriod; p++ {
		f := Frequency16(song.LinearPeriods, p)
		require.Less(t, f, prev, "period %d", p)
		prev = f
	}

	// Longer periods play at the slowest linear rate.
	for _, p := range []int{MaxLinearPeriod + 1, 19168, MaxPeriod, 1 << 20} {
		require.Equal(t, prev, Frequency16(song.LinearPeriods, p), "period %d", p)
	}
}

func TestPeriodClamp(t *testing.T) {
	require.Equal(t, Frequency(song.AmigaPeriods, MinPeriod), Frequency(song.AmigaPeriods, 1))
	require.Equal(t, Frequency(song.AmigaPeriods, MaxPeriod), Frequency(song.AmigaPeriods, 1<<20))
	require.Equal(t, 4242, AmigaPeriod(48, 0))
}

func TestFinetune(t *testing.T) {
	// A higher finetune gives a shorter period.
	require.Less(t, LogPeriod(48, 128+64), LogPeriod(48, 128))
	require.Greater(t, LogPeriod(48, 128-64), LogPeriod(48, 128))
	require.Equal(t, LinearPeriod(48, 128)-32, LinearPeriod(48, 192))
}
