package driver

import "github.com/QEStudios/unimod/song"

// NoSound accepts every call and produces no output. It remembers which
// voices were started so VoiceStopped gives sensible answers, but a voice
// never finishes on its own.
type NoSound struct {
	handles int16
	playing []bool
}

// NewNoSound returns a silent driver.
func NewNoSound() *NoSound {
	return &NoSound{}
}

func (d *NoSound) SampleLoad(*song.Sample, []byte) (int16, error) {
	if d.handles >= MaxSampleHandles {
		return -1, ErrNoHandles
	}
	h := d.handles
	d.handles++
	return h, nil
}

func (d *NoSound) SampleUnload(int16) {}

func (d *NoSound) SetNumVoices(n int) error {
	d.playing = make([]bool, n)
	return nil
}

func (d *NoSound) PlayStart() error { return nil }
func (d *NoSound) PlayStop()        {}
func (d *NoSound) SetBPM(uint8)     {}

func (d *NoSound) VoicePlay(voice int, _ int16, _, _, _, _ uint32, _ song.SampleFlags) {
	if voice >= 0 && voice < len(d.playing) {
		d.playing[voice] = true
	}
}

func (d *NoSound) VoiceStop(voice int) {
	if voice >= 0 && voice < len(d.playing) {
		d.playing[voice] = false
	}
}

func (d *NoSound) VoiceStopped(voice int) bool {
	return voice < 0 || voice >= len(d.playing) || !d.playing[voice]
}

func (d *NoSound) VoiceSetVolume(int, uint16)    {}
func (d *NoSound) VoiceSetFrequency(int, uint32) {}
func (d *NoSound) VoiceSetPanning(int, uint16)   {}
func (d *NoSound) VoiceGetPosition(int) int32    { return 0 }
