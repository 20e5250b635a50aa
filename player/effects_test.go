package player

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/QEStudios/unimod/song"
	"github.com/QEStudios/unimod/unitrk"
)

// pattern lists the events of each row of a one channel pattern. A nil row
// stays empty.
type pattern []func(w *unitrk.Writer)

func events(fs ...func(w *unitrk.Writer)) func(w *unitrk.Writer) {
	return func(w *unitrk.Writer) {
		for _, f := range fs {
			f(w)
		}
	}
}

// noteOn plays note with the first sample.
func noteOn(note uint8) func(w *unitrk.Writer) {
	return func(w *unitrk.Writer) {
		w.Instrument(0)
		w.Note(note)
	}
}

func fx(op unitrk.Opcode, args ...byte) func(w *unitrk.Writer) {
	return func(w *unitrk.Writer) { w.Op(op, args...) }
}

func ptfx(eff, dat uint8) func(w *unitrk.Writer) {
	return func(w *unitrk.Writer) { w.PTEffect(eff, dat) }
}

// buildPatterns makes a one channel song that plays pats in order.
func buildPatterns(t *testing.T, pats ...pattern) *song.Song {
	t.Helper()
	s := song.New()
	s.Name = "effects"
	s.NumChannels = 1
	s.InitSpeed = 6
	s.InitTempo = 125
	require.NoError(t, s.AllocPositions(len(pats)))
	require.NoError(t, s.AllocPatterns(len(pats)))
	require.NoError(t, s.AllocTracks(len(pats)))

	w := unitrk.NewWriter()
	for p, rows := range pats {
		s.Positions[p] = uint16(p)
		s.PatternRows[p] = uint16(len(rows))
		w.Reset()
		for _, cell := range rows {
			if cell != nil {
				cell(w)
			}
			w.Newline()
		}
		track, err := w.Dup()
		require.NoError(t, err)
		s.Tracks[p] = track
	}

	require.NoError(t, s.AllocSamples(1))
	s.Samples[0].Length = 10000
	s.Samples[0].Speed = c4Rate
	s.Samples[0].Handle = 0
	require.NoError(t, s.Validate())
	return s
}

// traceTicks plays n ticks of mod and records get after each one.
func traceTicks(t *testing.T, mod *song.Song, n int, get func(s *Session) int) ([]int, *recorder) {
	t.Helper()
	s, rec := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Play(mod))
	out := make([]int, 0, n)
	for range n {
		s.HandleTick()
		out = append(out, get(s))
	}
	return out, rec
}

func channelVolume(s *Session) int { return s.channels[0].volume }
func channelPeriod(s *Session) int { return s.channels[0].period }

func TestChannelEffects(t *testing.T) {
	amiga := func(note uint8) int { return Period(song.AmigaPeriods, note, c4Rate) }

	for _, tc := range []struct {
		name string
		pat  pattern
		get  func(s *Session) int
		want []int
	}{
		{
			name: "volume slide",
			pat:  pattern{events(noteOn(48), ptfx(0xa, 0x02)), nil},
			get:  channelVolume,
			want: []int{64, 62, 60, 58, 56, 54},
		},
		{
			name: "set volume then slide up",
			pat:  pattern{events(noteOn(48), ptfx(0xc, 0x20)), ptfx(0xa, 0x30)},
			get:  channelVolume,
			want: []int{32, 32, 32, 32, 32, 32, 32, 35, 38, 41, 44, 47},
		},
		{
			name: "s3m volume slide reuses its argument",
			pat:  pattern{events(noteOn(48), fx(unitrk.OpS3MEffectD, 0x02)), fx(unitrk.OpS3MEffectD, 0)},
			get:  channelVolume,
			want: []int{62, 60, 58, 56, 54, 52, 50, 48, 46, 44, 42, 40},
		},
		{
			name: "s3m fine volume slide",
			pat:  pattern{events(noteOn(48), fx(unitrk.OpS3MEffectD, 0xf4)), fx(unitrk.OpS3MEffectD, 0)},
			get:  channelVolume,
			want: []int{60, 60, 60, 60, 60, 60, 56, 56, 56, 56, 56, 56},
		},
		{
			name: "s3m pitch slides share their memory",
			pat:  pattern{events(noteOn(48), fx(unitrk.OpS3MEffectE, 0x02)), fx(unitrk.OpS3MEffectF, 0)},
			get:  channelPeriod,
			want: []int{1712, 1720, 1728, 1736, 1744, 1752, 1752, 1744, 1736, 1728, 1720, 1712},
		},
		{
			name: "portamento up",
			pat:  pattern{events(noteOn(48), ptfx(0x1, 0x02))},
			get:  channelPeriod,
			want: []int{1712, 1704, 1696, 1688, 1680, 1672},
		},
		{
			name: "xm fine slide reuses its argument",
			pat:  pattern{events(noteOn(48), fx(unitrk.OpXMEffectE1, 3)), fx(unitrk.OpXMEffectE1, 0)},
			get:  channelPeriod,
			want: []int{1700, 1700, 1700, 1700, 1700, 1700, 1688, 1688, 1688, 1688, 1688, 1688},
		},
		{
			name: "xm fine volume slide reuses its argument",
			pat:  pattern{events(noteOn(48), ptfx(0xc, 0x20), fx(unitrk.OpXMEffectEA, 4)), fx(unitrk.OpXMEffectEA, 0)},
			get:  channelVolume,
			want: []int{36, 36, 36, 36, 36, 36, 40, 40, 40, 40, 40, 40},
		},
		{
			name: "it channel volume slide reuses its argument",
			pat:  pattern{fx(unitrk.OpITEffectN, 0x02), fx(unitrk.OpITEffectN, 0)},
			get:  func(s *Session) int { return s.channels[0].chanVol },
			want: []int{62, 60, 58, 56, 54, 52, 50, 48, 46, 44, 42, 40},
		},
		{
			name: "it global volume slide reuses its argument",
			pat:  pattern{fx(unitrk.OpITEffectW, 0x01), fx(unitrk.OpITEffectW, 0)},
			get:  func(s *Session) int { return s.volume },
			want: []int{127, 126, 125, 124, 123, 122, 121, 120, 119, 118, 117, 116},
		},
		{
			name: "tone portamento",
			pat: pattern{
				noteOn(48),
				events(func(w *unitrk.Writer) { w.Note(60) }, ptfx(0x3, 0x10)),
				ptfx(0x3, 0),
				ptfx(0x3, 0),
			},
			get: channelPeriod,
			want: []int{
				1712, 1712, 1712, 1712, 1712, 1712,
				1712, 1648, 1584, 1520, 1456, 1392,
				1392, 1328, 1264, 1200, 1136, 1072,
				1072, 1008, 944, 880, 856, 856,
			},
		},
		{
			name: "vibrato",
			pat:  pattern{events(noteOn(48), ptfx(0x4, 0x48)), ptfx(0x4, 0)},
			get:  channelPeriod,
			want: []int{1712, 1712, 1736, 1756, 1768, 1772, 1768, 1768, 1756, 1736, 1712, 1688},
		},
		{
			name: "arpeggio",
			pat:  pattern{events(noteOn(48), ptfx(0x0, 0x37))},
			get:  channelPeriod,
			want: []int{amiga(48), amiga(51), amiga(55), amiga(48), amiga(51), amiga(55)},
		},
		{
			name: "tremor",
			pat:  pattern{events(noteOn(48), fx(unitrk.OpS3MEffectI, 0x21)), fx(unitrk.OpS3MEffectI, 0)},
			get:  channelVolume,
			want: []int{64, 64, 64, 64, 0, 0, 0, 64, 64, 64, 0, 0},
		},
		{
			name: "note cut",
			pat:  pattern{events(noteOn(48), ptfx(0xe, 0xc3))},
			get:  channelVolume,
			want: []int{64, 64, 64, 0, 0, 0},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := traceTicks(t, buildPatterns(t, tc.pat), len(tc.want), tc.get)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestTonePortamentoKeepsVoice(t *testing.T) {
	mod := buildPatterns(t, pattern{
		noteOn(48),
		events(func(w *unitrk.Writer) { w.Note(60) }, ptfx(0x3, 0x10)),
	})
	_, rec := traceTicks(t, mod, 12, channelPeriod)
	require.Equal(t, []int{0}, rec.plays)
}

func TestRetrigger(t *testing.T) {
	for _, tc := range []struct {
		name  string
		pat   pattern
		plays []int
		vols  []int
	}{
		{
			name:  "protracker",
			pat:   pattern{events(noteOn(48), ptfx(0xe, 0x92))},
			plays: []int{1, 1, 2, 2, 3, 3},
			vols:  []int{64, 64, 64, 64, 64, 64},
		},
		{
			name:  "s3m with volume slide",
			pat:   pattern{events(noteOn(48), fx(unitrk.OpS3MEffectQ, 0x22))},
			plays: []int{1, 1, 2, 2, 3, 3},
			vols:  []int{64, 64, 62, 62, 60, 60},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, rec := newTestSession(t, DefaultConfig())
			require.NoError(t, s.Play(buildPatterns(t, tc.pat)))
			var plays, vols []int
			for range len(tc.plays) {
				s.HandleTick()
				plays = append(plays, len(rec.plays))
				vols = append(vols, channelVolume(s))
			}
			require.Equal(t, tc.plays, plays)
			require.Equal(t, tc.vols, vols)
		})
	}
}

func TestNoteDelay(t *testing.T) {
	s, rec := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Play(buildPatterns(t, pattern{events(noteOn(48), ptfx(0xe, 0xd3)), nil})))

	var got []int
	for range 6 {
		s.HandleTick()
		got = append(got, len(rec.plays))
	}
	require.Equal(t, []int{0, 0, 0, 1, 1, 1}, got)
}

func TestPatternJump(t *testing.T) {
	empty := make(pattern, 4)
	mod := buildPatterns(t, pattern{nil, ptfx(0xb, 2), nil, nil}, empty, empty)
	s, _ := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Play(mod))

	for range 6*2 + 1 {
		s.HandleTick()
	}
	pos, row := s.Position()
	require.Equal(t, 2, pos)
	require.Equal(t, 0, row)

	// Position 1 is skipped, the song ends after position 2.
	for range 6*4 - 1 {
		s.HandleTick()
	}
	require.True(t, s.Active())
	s.HandleTick()
	require.False(t, s.Active())
}

func TestPatternBreak(t *testing.T) {
	for _, tc := range []struct {
		name string
		dat  uint8
		want []int // pos*10+row on every row boundary
	}{
		{"to row 2", 2, []int{0, 1, 12, 13}},
		{"past the pattern end", 9, []int{0, 1, 13}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mod := buildPatterns(t, pattern{nil, ptfx(0xd, tc.dat), nil, nil}, make(pattern, 4))
			s, _ := newTestSession(t, DefaultConfig())
			require.NoError(t, s.Play(mod))

			var seen []int
			for s.Active() {
				s.HandleTick()
				if s.Active() && s.tick == 0 {
					pos, row := s.Position()
					seen = append(seen, pos*10+row)
				}
			}
			require.Equal(t, tc.want, seen)
		})
	}
}

func TestPatternLoop(t *testing.T) {
	mod := buildPatterns(t, pattern{
		nil,
		ptfx(0xe, 0x60),
		events(noteOn(48), ptfx(0xe, 0x62)),
		nil,
	})
	s, rec := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Play(mod))

	// Rows 0, 1, 2, 1, 2, 1, 2, 3.
	for range 6 * 8 {
		s.HandleTick()
	}
	require.True(t, s.Active())
	require.Equal(t, []int{0, 0, 0}, rec.plays)

	s.HandleTick()
	require.False(t, s.Active())
}

// instrumentSong makes a one instrument song of pat, with the instrument
// changed by set.
func instrumentSong(t *testing.T, pat pattern, set func(ins *song.Instrument)) *song.Song {
	t.Helper()
	mod := buildPatterns(t, pat)
	mod.Flags |= song.FlagInstruments
	require.NoError(t, mod.AllocInstruments(1))
	if set != nil {
		set(&mod.Instruments[0])
	}
	return mod
}

func TestKeyFadeWithoutEnvelopeStops(t *testing.T) {
	mod := instrumentSong(t, pattern{noteOn(48), fx(unitrk.OpKeyFade, 0), nil}, nil)
	s, rec := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Play(mod))

	for range 6 {
		s.HandleTick()
	}
	require.False(t, rec.VoiceStopped(0))
	s.HandleTick()
	require.True(t, rec.VoiceStopped(0))
}

func TestKeyFadeFadesOut(t *testing.T) {
	mod := instrumentSong(t, pattern{noteOn(48), fx(unitrk.OpKeyFade, 0), nil, nil}, func(ins *song.Instrument) {
		ins.VolFade = 4096
		ins.VolEnv = song.Envelope{Flags: song.EnvOn | song.EnvSustain, NumPoints: 2}
		ins.VolEnv.Points[0] = song.EnvelopePoint{Pos: 0, Val: 256}
		ins.VolEnv.Points[1] = song.EnvelopePoint{Pos: 10, Val: 256}
	})
	s, rec := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Play(mod))

	for range 6 {
		s.HandleTick()
	}
	require.Equal(t, fadeMax, s.voices[0].fadeVol)

	var fades []int
	for range 8 {
		s.HandleTick()
		fades = append(fades, s.voices[0].fadeVol)
		require.False(t, rec.VoiceStopped(0))
	}
	require.Equal(t, []int{28672, 24576, 20480, 16384, 12288, 8192, 4096, 0}, fades)

	s.HandleTick()
	require.True(t, rec.VoiceStopped(0))
}

func TestNewNoteActions(t *testing.T) {
	const fade = 1024
	for _, tc := range []struct {
		name    string
		nna     song.NNA
		dct     song.DupCheckType
		dca     song.DupCheckAction
		second  uint8
		plays   []int
		keyoff  keyState // of the first voice
		fadeVol int
	}{
		{"continue", song.NNAContinue, song.DupCheckOff, song.DupActionCut, 48, []int{0, 1}, keyKick, fadeMax},
		{"fade", song.NNAFade, song.DupCheckOff, song.DupActionCut, 48, []int{0, 1}, keyFade, fadeMax - fade},
		{"duplicate note cut", song.NNAContinue, song.DupCheckNote, song.DupActionCut, 48, []int{0, 0}, keyKick, fadeMax},
		{"duplicate note off", song.NNAContinue, song.DupCheckNote, song.DupActionOff, 48, []int{0, 1}, keyKill, fadeMax - fade},
		{"duplicate note fade", song.NNAContinue, song.DupCheckNote, song.DupActionFade, 48, []int{0, 1}, keyFade, fadeMax - fade},
		{"different note", song.NNAContinue, song.DupCheckNote, song.DupActionCut, 50, []int{0, 1}, keyKick, fadeMax},
		{"duplicate sample", song.NNAContinue, song.DupCheckSample, song.DupActionOff, 50, []int{0, 1}, keyKill, fadeMax - fade},
		{"duplicate instrument", song.NNAContinue, song.DupCheckInstrument, song.DupActionFade, 50, []int{0, 1}, keyFade, fadeMax - fade},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mod := instrumentSong(t, pattern{noteOn(48), noteOn(tc.second), nil, nil}, func(ins *song.Instrument) {
				ins.NNA = tc.nna
				ins.DupCheckType = tc.dct
				ins.DupCheckAction = tc.dca
				ins.VolFade = fade
			})
			mod.Flags |= song.FlagNNA

			cfg := DefaultConfig()
			cfg.MusicVoices = 4
			s, rec := newTestSession(t, cfg)
			require.NoError(t, s.Play(mod))
			for range 7 {
				s.HandleTick()
			}

			require.Equal(t, tc.plays, rec.plays)
			first := &s.voices[0]
			require.Equal(t, tc.keyoff, first.keyoff)
			require.Equal(t, tc.fadeVol, first.fadeVol)
			require.False(t, rec.VoiceStopped(0))

			restarted := tc.plays[1] == 0
			require.Equal(t, restarted, first.attached)
			require.Equal(t, tc.plays[1], s.ChannelVoice(0))
		})
	}
}
