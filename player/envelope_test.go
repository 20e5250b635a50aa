package player

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/QEStudios/unimod/song"
)

func testEnvelope(flags song.EnvelopeFlags) *song.Envelope {
	env := &song.Envelope{
		Flags:     flags,
		NumPoints: 3,
		SusBegin:  1,
		SusEnd:    1,
		LoopBegin: 0,
		LoopEnd:   2,
	}
	env.Points[0] = song.EnvelopePoint{Pos: 0, Val: 0}
	env.Points[1] = song.EnvelopePoint{Pos: 4, Val: 64}
	env.Points[2] = song.EnvelopePoint{Pos: 8, Val: 32}
	return env
}

func walk(e *envelope, n int, key keyState) (values []int, ended []bool) {
	for range n {
		v, end := e.process(-1, key)
		values = append(values, v)
		ended = append(ended, end)
	}
	return values, ended
}

func TestEnvelopeSustain(t *testing.T) {
	flags := song.EnvOn | song.EnvSustain | song.EnvVolume
	env := testEnvelope(flags)

	var e envelope
	e.start(flags, env, keyKick)
	values, _ := walk(&e, 7, keyKick)
	require.Equal(t, []int{0, 16, 32, 48, 64, 64, 64}, values)

	values, ended := walk(&e, 5, keyOff)
	require.Equal(t, []int{64, 56, 48, 40, 32}, values)
	require.Equal(t, []bool{false, false, false, true, true}, ended)

	// The envelope holds its last value.
	values, _ = walk(&e, 2, keyOff)
	require.Equal(t, []int{32, 32}, values)
}

func TestEnvelopeLoop(t *testing.T) {
	flags := song.EnvOn | song.EnvLoop
	env := testEnvelope(flags)
	env.LoopBegin = 1

	var e envelope
	e.start(flags, env, keyKick)
	values, ended := walk(&e, 14, keyKick)
	require.Equal(t, []int{0, 16, 32, 48, 64, 56, 48, 40, 64, 56, 48, 40, 64, 56}, values)
	require.NotContains(t, ended, true)
}

// A loop that ends before the sustain point keeps looping while the key is
// held: sustain only catches the walk once it passes the sustain end.
func TestEnvelopeLoopBeforeSustain(t *testing.T) {
	flags := song.EnvOn | song.EnvSustain | song.EnvLoop
	env := testEnvelope(flags)
	env.SusBegin, env.SusEnd = 2, 2
	env.LoopBegin, env.LoopEnd = 0, 1

	var e envelope
	e.start(flags, env, keyKick)
	values, ended := walk(&e, 8, keyKick)
	require.Equal(t, []int{0, 16, 32, 48, 0, 16, 32, 48}, values)
	require.NotContains(t, ended, true)
}

func TestEnvelopeOff(t *testing.T) {
	env := testEnvelope(0)
	var e envelope
	e.start(0, env, keyKick)
	v, ended := e.process(256, keyKick)
	require.Equal(t, 256, v)
	require.False(t, ended)

	// No points means no envelope even when the flag is set.
	e.start(song.EnvOn, &song.Envelope{}, keyKick)
	require.False(t, e.on())
}

func TestEnvelopeSeek(t *testing.T) {
	flags := song.EnvOn
	env := testEnvelope(flags)

	var e envelope
	e.start(flags, env, keyKick)
	e.seek(6)
	v, _ := e.process(0, keyKick)
	require.Equal(t, 48, v)

	e.seek(100)
	v, _ = e.process(0, keyKick)
	require.Equal(t, 32, v)
}

func TestDoPan(t *testing.T) {
	require.Equal(t, 128, doPan(envPanMid, 128))
	require.Equal(t, 192, doPan(192, 128))
	// Hard left leaves no room for the envelope.
	require.Equal(t, 0, doPan(255, 0))
	require.Equal(t, 32, doPan(64, 64))
}
