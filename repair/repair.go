// Package repair rebuilds a standard RIFF/WAVE header in front of the audio of a corrupted file
package repair

import (
	"encoding/binary"
	"io"
	"math"

	"fixwav/models"
	"fixwav/wavparser"

	goaudio "github.com/go-audio/audio"
	"github.com/pkg/errors"
)

// FmtDataHeader is a 16-bit stereo 44.1kHz PCM fmt chunk followed by the "data" tag
var FmtDataHeader = []byte{
	0x66, 0x6D, 0x74, 0x20, // "fmt "
	0x12, 0x00, 0x00, 0x00, // chunk size 18
	0x01, 0x00, // PCM
	0x02, 0x00, // channels
	0x44, 0xAC, 0x00, 0x00, // 44100 Hz
	0x10, 0xB1, 0x02, 0x00, // 176400 bytes/s
	0x04, 0x00, // block align
	0x10, 0x00, // bits per sample
	0x00, 0x00, // cbSize
	0x64, 0x61, 0x74, 0x61, // "data"
}

// OutputFormat is the format FmtDataHeader declares
var OutputFormat = &goaudio.Format{NumChannels: 2, SampleRate: 44100}

// OutputBitDepth is the bit depth FmtDataHeader declares
const OutputBitDepth = 16

const (
	riffHeaderSize = 16 // "RIFF" + size + "WAVELIST" as counted by the legacy layout
	lengthSize     = 4
)

var formList = []byte("WAVELIST")

// ErrTooLarge means a length does not fit the signed 32-bit RIFF size fields
var ErrTooLarge = errors.New("file too large for a RIFF header")

// Reconstruct parses a corrupted file from rs and writes the repaired file to w
func Reconstruct(rs io.ReadSeeker, w io.Writer, opts models.RepairOptions) (*models.RepairResult, error) {
	layout, err := wavparser.ParseCorrupt(rs, opts.Limit())
	if err != nil {
		return nil, err
	}
	return Write(rs, w, layout, opts)
}

// Write emits the synthesized header for layout followed by the payload read from rs
func Write(rs io.ReadSeeker, w io.Writer, layout *wavparser.Layout, opts models.RepairOptions) (*models.RepairResult, error) {
	dataLength := layout.PayloadLength
	padded := dataLength%2 == 1
	if padded {
		dataLength++
	}

	var riffLength int64
	headerBytes := int64(layout.InfoLength) + int64(len(FmtDataHeader)) + lengthSize + dataLength
	if opts.Layout == models.LayoutLegacy {
		riffLength = riffHeaderSize + lengthSize + headerBytes
	} else {
		riffLength = int64(len(formList)) + lengthSize + headerBytes
	}
	if riffLength > math.MaxInt32 {
		return nil, errors.Wrapf(ErrTooLarge, "riff length %d", riffLength)
	}

	result := &models.RepairResult{
		InfoLength:    layout.InfoLength,
		Frames:        len(layout.Frames),
		PayloadOffset: layout.PayloadOffset,
		PayloadLength: layout.PayloadLength,
		DataLength:    int32(dataLength),
		RiffLength:    int32(riffLength),
		Padded:        padded,
		Layout:        opts.Layout.String(),
		Tag:           layout.Tag(),
	}

	cw := &countingWriter{w: w}
	if err := writeHeader(cw, layout, result, opts.Layout); err != nil {
		return nil, err
	}

	if _, err := rs.Seek(layout.PayloadOffset, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seek to payload")
	}
	copied, err := io.CopyN(cw, rs, layout.PayloadLength)
	if err != nil {
		return nil, errors.Wrapf(err, "copy payload (%d of %d bytes)", copied, layout.PayloadLength)
	}

	if padded && opts.Layout == models.LayoutStandard {
		if _, err := cw.Write([]byte{0x00}); err != nil {
			return nil, errors.Wrap(err, "write pad byte")
		}
	}

	result.BytesWritten = cw.n
	return result, nil
}

func writeHeader(w io.Writer, layout *wavparser.Layout, result *models.RepairResult, l models.Layout) error {
	if _, err := w.Write([]byte("RIFF")); err != nil {
		return errors.Wrap(err, "write RIFF")
	}
	if err := binary.Write(w, binary.LittleEndian, result.RiffLength); err != nil {
		return errors.Wrap(err, "write riff length")
	}
	if _, err := w.Write(formList); err != nil {
		return errors.Wrap(err, "write WAVELIST")
	}
	if _, err := w.Write(layout.InfoLengthField[:]); err != nil {
		return errors.Wrap(err, "write info length")
	}
	if _, err := w.Write(layout.Info); err != nil {
		return errors.Wrap(err, "write info header")
	}
	if _, err := w.Write(FmtDataHeader); err != nil {
		return errors.Wrap(err, "write fmt/data header")
	}

	// legacy files carry the pad byte ahead of the size field
	if result.Padded && l == models.LayoutLegacy {
		if _, err := w.Write([]byte{0x00}); err != nil {
			return errors.Wrap(err, "write pad byte")
		}
	}
	if err := binary.Write(w, binary.LittleEndian, result.DataLength); err != nil {
		return errors.Wrap(err, "write data length")
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
