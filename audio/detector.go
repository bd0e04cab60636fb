// Package audio classifies and inspects WAV files through go-audio
package audio

import (
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// Detector decides whether a WAV container can be read by a standard decoder
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// IsCorrupt opens path and reports whether its RIFF/WAVE header cannot be
// parsed. Failing to open the file at all is returned as an error.
func (d *Detector) IsCorrupt(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	return d.IsCorruptReader(f), nil
}

// IsCorruptReader classifies an already opened stream. The stream is rewound first.
func (d *Detector) IsCorruptReader(rs io.ReadSeeker) bool {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return true
	}
	decoder := wav.NewDecoder(rs)
	if !decoder.IsValidFile() {
		return true
	}
	return decoder.SampleRate == 0 || decoder.NumChans == 0
}
