package player

import "fmt"

// MuteMode selects the channels a mute call applies to.
type MuteMode int

const (
	MuteSingle    MuteMode = iota // Only channel from. to is ignored.
	MuteInclusive                 // Channels from to to, both included.
	MuteExclusive                 // Every channel outside from to to.
)

func (m MuteMode) String() string {
	switch m {
	case MuteSingle:
		return "single"
	case MuteInclusive:
		return "inclusive"
	case MuteExclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("MuteMode(%d)", int(m))
	}
}

// Mute silences the channels selected by mode. Invalid ranges are ignored.
func (s *Session) Mute(mode MuteMode, from, to int) {
	s.setMute(mode, from, to, func(bool) bool { return true })
}

// Unmute undoes Mute.
func (s *Session) Unmute(mode MuteMode, from, to int) {
	s.setMute(mode, from, to, func(bool) bool { return false })
}

// ToggleMute flips the mute state of every selected channel.
func (s *Session) ToggleMute(mode MuteMode, from, to int) {
	s.setMute(mode, from, to, func(m bool) bool { return !m })
}

// Muted reports whether channel ch is muted. Channels that do not exist count
// as muted.
func (s *Session) Muted(ch int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch < 0 || ch >= len(s.channels) {
		return true
	}
	return s.channels[ch].muted
}

func (s *Session) setMute(mode MuteMode, from, to int, f func(bool) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.channels)
	switch mode {
	case MuteSingle:
		if from >= 0 && from < n {
			s.channels[from].muted = f(s.channels[from].muted)
		}
	case MuteInclusive, MuteExclusive:
		if from < 0 || from > to || to >= n {
			return
		}
		for t := range s.channels {
			if (t >= from && t <= to) == (mode == MuteInclusive) {
				s.channels[t].muted = f(s.channels[t].muted)
			}
		}
	}
}
