// Package driver defines the output device a playback session drives.
// Mixing and resampling happen behind this interface.
package driver

import (
	"errors"

	"github.com/QEStudios/unimod/song"
)

// MaxSampleHandles is how many samples a driver is expected to hold at once.
const MaxSampleHandles = 384

// ErrNoHandles is returned by SampleLoad when the driver has no handle left.
var ErrNoHandles = errors.New("no sample handles left")

// Driver is an output device. Voice indices outside the range last given
// to SetNumVoices must be ignored.
type Driver interface {
	// SampleLoad registers the raw data of smp and returns its handle.
	// data may be shorter than smp.ByteLength() when the file was cut short.
	SampleLoad(smp *song.Sample, data []byte) (int16, error)
	SampleUnload(handle int16)

	SetNumVoices(n int) error
	PlayStart() error
	PlayStop()
	SetBPM(bpm uint8)

	// VoicePlay starts handle at start, in samples. Loop bounds only apply
	// when flags has song.SampleLoop.
	VoicePlay(voice int, handle int16, start, length, loopStart, loopEnd uint32, flags song.SampleFlags)
	VoiceStop(voice int)
	VoiceStopped(voice int) bool
	// VoiceSetVolume takes 0 to 256.
	VoiceSetVolume(voice int, vol uint16)
	// VoiceSetFrequency takes a rate in Hz.
	VoiceSetFrequency(voice int, freq uint32)
	// VoiceSetPanning takes 0 (left) to 255 (right), or song.PanSurround.
	VoiceSetPanning(voice int, pan uint16)
	VoiceGetPosition(voice int) int32
}
