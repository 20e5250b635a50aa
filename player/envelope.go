package player

import "github.com/QEStudios/unimod/song"

// envelope walks one instrument envelope for a voice.
// a and b are the points being interpolated, p is the current tick.
type envelope struct {
	flags song.EnvelopeFlags
	env   *song.Envelope
	p     int
	a, b  int
}

// start rewinds the envelope. While the key is held and the envelope has a
// sustain range, the walk starts on the first point so the sustain can catch it.
func (e *envelope) start(flags song.EnvelopeFlags, env *song.Envelope, key keyState) {
	e.flags = flags
	e.env = env
	e.p = 0
	e.a = 0
	if flags&song.EnvSustain != 0 && key&keyOff == 0 {
		e.b = 0
	} else {
		e.b = 1
	}
}

func (e *envelope) on() bool {
	return e.flags&song.EnvOn != 0 && e.env != nil && e.env.NumPoints > 0
}

func (e *envelope) point(i int) song.EnvelopePoint {
	return e.env.Points[min(max(i, 0), song.MaxEnvPoints-1)]
}

// process returns the envelope value for this tick and moves on by one tick.
// v is returned unchanged when the envelope is off. ended is set when a volume
// envelope has run past its last point.
func (e *envelope) process(v int, key keyState) (value int, ended bool) {
	if !e.on() {
		return v, false
	}
	a, b, p := e.a, e.b, e.p
	pa, pb := e.point(a), e.point(b)
	if a == b {
		v = int(pa.Val)
	} else {
		v = interpolate(p, int(pa.Pos), int(pb.Pos), int(pa.Val), int(pb.Val))
	}
	p++

	if p >= int(pb.Pos) {
		a = b
		b++
		pts := int(e.env.NumPoints)
		switch {
		case e.flags&song.EnvSustain != 0 && key&keyOff == 0 && b > int(e.env.SusEnd):
			a = int(e.env.SusBegin)
			b = a
			if e.env.SusBegin != e.env.SusEnd {
				b++
			}
			p = int(e.point(a).Pos)
		case e.flags&song.EnvLoop != 0 && b > int(e.env.LoopEnd):
			a = int(e.env.LoopBegin)
			b = a
			if e.env.LoopBegin != e.env.LoopEnd {
				b++
			}
			p = int(e.point(a).Pos)
		case b >= pts:
			ended = e.flags&song.EnvVolume != 0
			b--
			p--
		}
	}
	e.a, e.b, e.p = a, b, p
	return v, ended
}

// seek moves the envelope to tick pos, clamped to its last point.
func (e *envelope) seek(pos int) {
	if e.env == nil || e.env.NumPoints == 0 {
		return
	}
	last := int(e.env.NumPoints) - 1
	pos = min(pos, int(e.point(last).Pos))
	a := 0
	for a < last && int(e.point(a+1).Pos) <= pos {
		a++
	}
	e.a = a
	e.b = min(a+1, last)
	e.p = pos
}
