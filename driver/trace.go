package driver

import (
	"github.com/sirupsen/logrus"

	"github.com/QEStudios/unimod/song"
)

// Trace logs every call at debug level before passing it on.
type Trace struct {
	next   Driver
	logger logrus.FieldLogger
}

// NewTrace wraps next. A nil logger means the logrus standard logger.
func NewTrace(next Driver, logger logrus.FieldLogger) *Trace {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Trace{next: next, logger: logger.WithField("component", "driver")}
}

func (t *Trace) voice(v int) logrus.FieldLogger {
	return t.logger.WithField("voice", v)
}

func (t *Trace) SampleLoad(smp *song.Sample, data []byte) (int16, error) {
	h, err := t.next.SampleLoad(smp, data)
	t.logger.WithFields(logrus.Fields{
		"sample": smp.Name,
		"bytes":  len(data),
		"handle": h,
	}).Debug("sample load")
	return h, err
}

func (t *Trace) SampleUnload(handle int16) {
	t.logger.WithField("handle", handle).Debug("sample unload")
	t.next.SampleUnload(handle)
}

func (t *Trace) SetNumVoices(n int) error {
	t.logger.WithField("voices", n).Debug("set voices")
	return t.next.SetNumVoices(n)
}

func (t *Trace) PlayStart() error {
	t.logger.Debug("play start")
	return t.next.PlayStart()
}

func (t *Trace) PlayStop() {
	t.logger.Debug("play stop")
	t.next.PlayStop()
}

func (t *Trace) SetBPM(bpm uint8) {
	t.logger.WithField("bpm", bpm).Debug("set bpm")
	t.next.SetBPM(bpm)
}

func (t *Trace) VoicePlay(voice int, handle int16, start, length, loopStart, loopEnd uint32, flags song.SampleFlags) {
	t.voice(voice).WithFields(logrus.Fields{
		"handle": handle,
		"start":  start,
		"length": length,
		"loop":   [2]uint32{loopStart, loopEnd},
		"flags":  flags,
	}).Debug("voice play")
	t.next.VoicePlay(voice, handle, start, length, loopStart, loopEnd, flags)
}

func (t *Trace) VoiceStop(voice int) {
	t.voice(voice).Debug("voice stop")
	t.next.VoiceStop(voice)
}

func (t *Trace) VoiceStopped(voice int) bool {
	return t.next.VoiceStopped(voice)
}

func (t *Trace) VoiceSetVolume(voice int, vol uint16) {
	t.voice(voice).WithField("volume", vol).Debug("voice volume")
	t.next.VoiceSetVolume(voice, vol)
}

func (t *Trace) VoiceSetFrequency(voice int, freq uint32) {
	t.voice(voice).WithField("frequency", freq).Debug("voice frequency")
	t.next.VoiceSetFrequency(voice, freq)
}

func (t *Trace) VoiceSetPanning(voice int, pan uint16) {
	t.voice(voice).WithField("panning", pan).Debug("voice panning")
	t.next.VoiceSetPanning(voice, pan)
}

func (t *Trace) VoiceGetPosition(voice int) int32 {
	return t.next.VoiceGetPosition(voice)
}
