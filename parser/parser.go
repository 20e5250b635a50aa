// Package parser is the entry point for loading a module of any supported format.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/QEStudios/unimod/driver"
	"github.com/QEStudios/unimod/parser/mod"
	"github.com/QEStudios/unimod/parser/modio"
	"github.com/QEStudios/unimod/parser/s3m"
	"github.com/QEStudios/unimod/parser/xm"
	"github.com/QEStudios/unimod/song"
)

// Formats lists the decoders in the order they are tried.
// MOD goes last since its signature test is the weakest.
var Formats = []modio.Format{xm.Format, s3m.Format, mod.Format}

// Detect returns the first format whose signature matches r.
func Detect(r io.ReadSeeker) (modio.Format, bool) {
	for _, f := range Formats {
		if f.Test(r) {
			return f, true
		}
	}
	return nil, false
}

// Title reads only the song name of a module.
func Title(r io.ReadSeeker) (string, error) {
	f, ok := Detect(r)
	if !ok {
		return "", modio.NewLoadError("", modio.ErrNotAModule, nil)
	}
	return f.Title(r)
}

// Parser loads one module from a reader and registers its samples with a driver.
type Parser struct {
	r      io.ReadSeeker
	drv    driver.Driver
	logger logrus.FieldLogger

	warnings []modio.Warning

	// A Parser loads one module only.
	used bool
}

// NewParser creates a parser for one module. Samples are registered with drv
// after decoding; a nil drv leaves them unregistered. A nil logger means the
// logrus standard logger.
func NewParser(r io.ReadSeeker, drv driver.Driver, logger logrus.FieldLogger) *Parser {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Parser{r: r, drv: drv, logger: logger}
}

// Warnings returns the non fatal problems found by Parse.
func (p *Parser) Warnings() []modio.Warning {
	return p.warnings
}

// Parse detects the format, decodes the module, checks it and registers its samples.
// On error no Song is returned and nothing stays registered with the driver.
func (p *Parser) Parse() (*song.Song, error) {
	if p.used {
		return nil, errors.New("parser has already been used")
	}
	p.used = true

	f, ok := Detect(p.r)
	if !ok {
		return nil, modio.NewLoadError("", modio.ErrNotAModule, nil)
	}
	logger := p.logger.WithField("format", f.Name())

	s, warnings, err := f.Load(p.r)
	p.warnings = warnings
	if len(warnings) > 0 {
		logger.Warnf("%d warnings produced while loading:", len(warnings))
		for _, w := range warnings {
			logger.Warn(w.String())
		}
	}
	if err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		sentinel := modio.ErrHeaderTruncated
		if errors.Is(err, song.ErrBadTrack) || errors.Is(err, song.ErrBadTrackIndex) {
			sentinel = modio.ErrTrackTruncated
		}
		return nil, modio.NewLoadError(f.Name(), sentinel, err)
	}

	if p.drv != nil {
		if err := p.loadSamples(s); err != nil {
			return nil, modio.NewLoadError(f.Name(), sampleError(err), err)
		}
	}

	logger.WithFields(logrus.Fields{
		"name":     s.Name,
		"type":     s.ModType,
		"channels": s.NumChannels,
		"patterns": s.NumPatterns(),
		"samples":  len(s.Samples),
	}).Info("module loaded")
	return s, nil
}

func sampleError(err error) error {
	switch {
	case errors.Is(err, driver.ErrNoHandles):
		return modio.ErrOutOfHandles
	case errors.Is(err, modio.ErrOpen):
		return modio.ErrOpen
	default:
		return modio.ErrDevice
	}
}

// loadSamples hands every sample's data to the driver. If one fails,
// the ones already registered are released again.
func (p *Parser) loadSamples(s *song.Song) error {
	for i := range s.Samples {
		q := &s.Samples[i]
		q.Handle = -1
		if q.Length == 0 {
			continue
		}
		data, err := p.readSample(i, q)
		if err != nil {
			Unload(s, p.drv)
			return err
		}
		h, err := p.drv.SampleLoad(q, data)
		if err != nil {
			Unload(s, p.drv)
			return fmt.Errorf("sample %d: %w", i, err)
		}
		q.Handle = h
	}
	return nil
}

func (p *Parser) readSample(i int, q *song.Sample) ([]byte, error) {
	if _, err := p.r.Seek(q.SeekPos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: sample %d: %w", modio.ErrOpen, i, err)
	}
	data := make([]byte, q.ByteLength())
	n, err := io.ReadFull(p.r, data)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		p.warn(q.SeekPos+int64(n), "sample %d data clipped from %d to %d bytes", i, len(data), n)
		data = data[:n]
	default:
		return nil, fmt.Errorf("%w: sample %d: %w", modio.ErrOpen, i, err)
	}
	return data, nil
}

func (p *Parser) warn(offset int64, format string, args ...any) {
	w := modio.Warning{Offset: offset, Message: fmt.Sprintf(format, args...)}
	p.warnings = append(p.warnings, w)
	p.logger.Warn(w.String())
}

// Unload releases every sample handle of s.
func Unload(s *song.Song, drv driver.Driver) {
	for i := range s.Samples {
		q := &s.Samples[i]
		if q.Handle >= 0 {
			drv.SampleUnload(q.Handle)
			q.Handle = -1
		}
	}
}

// Load decodes a module and registers its samples with drv.
func Load(r io.ReadSeeker, drv driver.Driver, logger logrus.FieldLogger) (*song.Song, error) {
	return NewParser(r, drv, logger).Parse()
}

// LoadFile opens path and loads it.
func LoadFile(path string, drv driver.Driver, logger logrus.FieldLogger) (*song.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, modio.NewLoadError("", modio.ErrOpen, err)
	}
	defer f.Close()
	return Load(f, drv, logger)
}
