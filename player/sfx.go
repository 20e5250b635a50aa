package player

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/QEStudios/unimod/song"
)

// SfxFlags mark a sound effect voice.
type SfxFlags uint8

// SfxCritical keeps a sound effect from being cut by the next one: its voice
// is only reused once it has stopped.
const SfxCritical SfxFlags = 1

// SetNumVoices resizes the music and sound effect pools. A negative value keeps
// the current size. The music pool size applies from the next Play.
func (s *Session) SetNumVoices(music, sfx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if music >= 0 {
		s.cfg.MusicVoices = music
	}
	if sfx < 0 {
		sfx = len(s.sfx)
	}
	if err := s.drv.SetNumVoices(len(s.voices) + sfx); err != nil {
		return fmt.Errorf("error setting %d voices: %w", len(s.voices)+sfx, err)
	}
	s.cfg.SfxVoices = sfx
	s.sfx = make([]SfxFlags, sfx)
	s.sfxPool = 0
	for k := range s.sfx {
		s.drv.VoiceStop(len(s.voices) + k)
	}
	s.logger.WithFields(logrus.Fields{
		"music": s.cfg.MusicVoices,
		"sfx":   sfx,
	}).Debug("set voices")
	return nil
}

// PlaySample plays smp as a sound effect from start, in samples, on the next
// free voice of the sound effect pool. Busy critical voices are skipped. It
// returns the voice used, or -1 when every voice is busy and critical.
func (s *Session) PlaySample(smp *song.Sample, start uint32, flags SfxFlags) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.sfx)
	if n == 0 || smp == nil {
		return noVoice
	}
	for range n {
		k := s.sfxPool
		s.sfxPool = (s.sfxPool + 1) % n
		c := len(s.voices) + k
		if s.sfx[k]&SfxCritical != 0 && !s.drv.VoiceStopped(c) {
			continue
		}
		s.sfx[k] = flags
		s.voicePlay(c, smp, int64(start))
		s.setVolume(c, int(min(smp.Volume, 64))<<2, s.cfg.SfxVolume)
		s.setPanning(c, int(smp.Panning))
		s.drv.VoiceSetFrequency(c, smp.Speed)
		return c
	}
	return noVoice
}
