package player

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modplay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "music_voices: 32\nloop: true\nreverse: true\nseed: 7\n"))
	require.NoError(t, err)

	want := DefaultConfig()
	want.MusicVoices = 32
	want.Loop = true
	want.Reverse = true
	want.Seed = 7
	require.Equal(t, want, cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "voices: 4\n"))
	require.ErrorContains(t, err, "voices")

	_, err = LoadConfig(writeConfig(t, "volume: 300\n"))
	require.ErrorContains(t, err, "volume must be between 0 and 128")
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.PanSeparation = -1
	require.Error(t, cfg.Validate())
}

func TestReverseStereo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reverse = true
	cfg.PanSeparation = 64
	s, _ := newTestSession(t, cfg)
	rec := &panRecorder{recorder: newRecorder(), pans: map[int]uint16{}}
	s.drv = rec

	s.setPanning(0, 0)
	require.Equal(t, uint16(191), rec.pans[0])
	s.setPanning(1, 512)
	require.Equal(t, uint16(512), rec.pans[1])
}

type panRecorder struct {
	*recorder
	pans map[int]uint16
}

func (r *panRecorder) VoiceSetPanning(voice int, pan uint16) {
	r.pans[voice] = pan
}
