package driver

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/QEStudios/unimod/song"
)

func TestNoSoundHandles(t *testing.T) {
	d := NewNoSound()
	var smp song.Sample
	for i := range MaxSampleHandles {
		h, err := d.SampleLoad(&smp, nil)
		require.NoError(t, err)
		require.Equal(t, int16(i), h)
	}
	_, err := d.SampleLoad(&smp, nil)
	require.ErrorIs(t, err, ErrNoHandles)
}

func TestNoSoundVoices(t *testing.T) {
	d := NewNoSound()
	require.NoError(t, d.SetNumVoices(2))
	require.True(t, d.VoiceStopped(0))

	d.VoicePlay(0, 0, 0, 100, 0, 0, 0)
	d.VoicePlay(5, 0, 0, 100, 0, 0, 0) // out of range, ignored
	require.False(t, d.VoiceStopped(0))
	require.True(t, d.VoiceStopped(1))
	require.True(t, d.VoiceStopped(5))

	d.VoiceStop(0)
	require.True(t, d.VoiceStopped(0))
}

func TestTrace(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	d := NewTrace(NewNoSound(), logger)
	require.NoError(t, d.SetNumVoices(4))
	d.VoicePlay(3, 7, 0, 64, 0, 32, song.SampleLoop)
	d.VoiceSetFrequency(3, 8363)
	require.False(t, d.VoiceStopped(3))

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	require.Equal(t, "voice play", entries[1].Message)
	require.Equal(t, 3, entries[1].Data["voice"])
	require.Equal(t, int16(7), entries[1].Data["handle"])
	require.Equal(t, uint32(8363), hook.LastEntry().Data["frequency"])
}
