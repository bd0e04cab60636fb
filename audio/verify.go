package audio

import (
	"fmt"
	"io"
	"math"

	"fixwav/models"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/pkg/errors"
)

// ErrVerifyFailed is returned when a repaired file does not hold up to a standard reader
var ErrVerifyFailed = errors.New("repaired file failed verification")

// VerifyReport is what Verify learned about a repaired file
type VerifyReport struct {
	Chunks     []string
	RiffSize   uint32
	DataSize   int
	Params     *models.AudioMetadata
	BytePSNR   float64
	SamplePSNR float64
}

// Verify walks the RIFF chunks of a repaired file, checks that the declared
// sizes add up, that the format matches want and that the data chunk holds
// payload byte for byte, followed only by zero padding.
func Verify(repaired io.ReadSeeker, payload []byte, want *goaudio.Format, bitDepth int) (*VerifyReport, error) {
	if _, err := repaired.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "rewind")
	}

	report := &VerifyReport{}
	parser := riff.New(repaired)
	if err := parser.ParseHeaders(); err != nil {
		return nil, errors.Wrap(ErrVerifyFailed, err.Error())
	}
	if parser.Format != riff.WavFormatID {
		return nil, errors.Wrapf(ErrVerifyFailed, "form type %q", parser.Format[:])
	}
	report.RiffSize = parser.Size

	var data []byte
	chunkBytes := int64(4) // form type
	for {
		chunk, err := parser.NextChunk()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(ErrVerifyFailed, "chunk header after %v: %v", report.Chunks, err)
		}
		report.Chunks = append(report.Chunks, string(chunk.ID[:]))
		chunkBytes += 8 + int64(chunk.Size)

		switch chunk.ID {
		case riff.FmtID:
			if err := chunk.DecodeWavHeader(parser); err != nil {
				return nil, errors.Wrapf(ErrVerifyFailed, "fmt chunk: %v", err)
			}
		case riff.DataFormatID:
			data = make([]byte, chunk.Size)
			if _, err := io.ReadFull(chunk, data); err != nil {
				return nil, errors.Wrapf(ErrVerifyFailed, "data chunk: %v", err)
			}
		default:
			chunk.Drain()
		}
	}

	if chunkBytes != int64(report.RiffSize) {
		return nil, errors.Wrapf(ErrVerifyFailed, "riff size %d, chunks add up to %d", report.RiffSize, chunkBytes)
	}
	if data == nil {
		return nil, errors.Wrap(ErrVerifyFailed, "no data chunk")
	}
	report.DataSize = len(data)
	if len(data) < len(payload) {
		return nil, errors.Wrapf(ErrVerifyFailed, "data chunk holds %d bytes, payload is %d", len(data), len(payload))
	}
	for _, b := range data[len(payload):] {
		if b != 0 {
			return nil, errors.Wrap(ErrVerifyFailed, "non-zero padding after payload")
		}
	}
	report.BytePSNR = CalculatePSNR(payload, data[:len(payload)])
	if !math.IsInf(report.BytePSNR, 1) {
		return nil, errors.Wrapf(ErrVerifyFailed, "payload differs, PSNR %.2f dB", report.BytePSNR)
	}

	params, err := ReadParams(repaired)
	if err != nil {
		return nil, errors.Wrap(ErrVerifyFailed, err.Error())
	}
	report.Params = params
	if err := matchFormat(params, want, bitDepth); err != nil {
		return nil, err
	}

	decoded, err := DecodeSamples(repaired)
	if err != nil {
		return nil, errors.Wrap(ErrVerifyFailed, err.Error())
	}
	expected := SamplesFromPCM(data, want)
	if len(decoded.Data) < len(expected.Data) {
		return nil, errors.Wrapf(ErrVerifyFailed, "decoded %d samples, want %d", len(decoded.Data), len(expected.Data))
	}
	report.SamplePSNR = CalculatePSNRSamples(expected.Data, decoded.Data[:len(expected.Data)], bitDepth)
	if !ValidatePSNR(report.SamplePSNR, math.Inf(1)) {
		return nil, errors.Wrapf(ErrVerifyFailed, "decoded samples differ, PSNR %.2f dB", report.SamplePSNR)
	}

	return report, nil
}

func matchFormat(params *models.AudioMetadata, want *goaudio.Format, bitDepth int) error {
	var mismatch string
	switch {
	case params.Channels != want.NumChannels:
		mismatch = fmt.Sprintf("%d channels, want %d", params.Channels, want.NumChannels)
	case params.SampleRate != want.SampleRate:
		mismatch = fmt.Sprintf("%d Hz, want %d", params.SampleRate, want.SampleRate)
	case params.BitDepth != bitDepth:
		mismatch = fmt.Sprintf("%d bits, want %d", params.BitDepth, bitDepth)
	default:
		return nil
	}
	return errors.Wrap(ErrVerifyFailed, mismatch)
}
