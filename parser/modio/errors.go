package modio

import (
	"errors"
	"fmt"
)

// Kind is the broad category of a load error.
type Kind int

const (
	KindUnknown Kind = iota
	KindIO
	KindFormat
	KindResource
	KindDevice
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindFormat:
		return "format"
	case KindResource:
		return "resource"
	case KindDevice:
		return "device"
	default:
		return "unknown"
	}
}

var (
	ErrOpen = errors.New("cannot open requested file")

	ErrHeaderTruncated     = errors.New("failure loading module header")
	ErrPatternTruncated    = errors.New("failure loading module pattern")
	ErrTrackTruncated      = errors.New("failure loading module track")
	ErrSampleInfoTruncated = errors.New("failure loading sampleinfo")
	ErrNotAModule          = errors.New("unknown module format")

	ErrOutOfMemory  = errors.New("out of memory")
	ErrOutOfHandles = errors.New("sample load failed - out of sample handles")

	ErrDevice = errors.New("sound device failure")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrOpen, KindIO},
	{ErrHeaderTruncated, KindFormat},
	{ErrPatternTruncated, KindFormat},
	{ErrTrackTruncated, KindFormat},
	{ErrSampleInfoTruncated, KindFormat},
	{ErrNotAModule, KindFormat},
	{ErrOutOfMemory, KindResource},
	{ErrOutOfHandles, KindResource},
	{ErrDevice, KindDevice},
}

// KindOf returns the category of err, or KindUnknown if it carries none of the sentinels above.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

// A LoadError reports why a module could not be loaded.
// Err is one of the sentinels above, Cause the underlying failure if there is one.
type LoadError struct {
	Format string
	Err    error
	Cause  error
}

// NewLoadError wraps cause with a sentinel, for the named format.
func NewLoadError(format string, err, cause error) *LoadError {
	return &LoadError{Format: format, Err: err, Cause: cause}
}

func (e *LoadError) Error() string {
	msg := e.Err.Error()
	if e.Format != "" {
		msg = e.Format + ": " + msg
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *LoadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}
