package player

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the playback settings of a Session.
type Config struct {
	// MusicVoices caps the voices used by the song. Zero leaves the choice to the song.
	// A cap below the song's channel count turns on new note actions.
	MusicVoices int `yaml:"music_voices"`
	// SfxVoices is the size of the sound effect pool, placed after the music voices.
	SfxVoices int `yaml:"sfx_voices"`

	Loop          bool `yaml:"loop"`           // Restart at the song's repeat position instead of stopping.
	ExtendedSpeed bool `yaml:"extended_speed"` // Speed values of 0x20 and up set the tempo.
	PanEffects    bool `yaml:"pan_effects"`    // Honor panning effects.

	Volume        int  `yaml:"volume"`       // Master volume, 0-128.
	MusicVolume   int  `yaml:"music_volume"` // 0-128
	SfxVolume     int  `yaml:"sfx_volume"`   // 0-128
	PanSeparation int  `yaml:"pan_separation"`
	Reverse       bool `yaml:"reverse"` // Swap left and right.

	// Seed feeds the random waveforms and the instrument volume and panning variation.
	Seed uint64 `yaml:"seed"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		ExtendedSpeed: true,
		PanEffects:    true,
		Volume:        96,
		MusicVolume:   128,
		SfxVolume:     128,
		PanSeparation: 128,
	}
}

// Validate reports settings outside their range.
func (c Config) Validate() error {
	check := func(name string, v, hi int) error {
		if v < 0 || v > hi {
			return fmt.Errorf("%s must be between 0 and %d, got %d", name, hi, v)
		}
		return nil
	}
	for _, err := range []error{
		check("music_voices", c.MusicVoices, 255),
		check("sfx_voices", c.SfxVoices, 255),
		check("volume", c.Volume, 128),
		check("music_volume", c.MusicVolume, 128),
		check("sfx_volume", c.SfxVolume, 128),
		check("pan_separation", c.PanSeparation, 128),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
