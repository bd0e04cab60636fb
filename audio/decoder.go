package audio

import (
	"encoding/binary"
	"io"

	"fixwav/models"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// ErrNotWav is returned when a stream has no readable fmt or data chunk
var ErrNotWav = errors.New("not a readable WAV file")

const BitsInByte = 8

// ReadParams decodes the format parameters and PCM size of a WAV stream
func ReadParams(rs io.ReadSeeker) (*models.AudioMetadata, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "rewind")
	}

	decoder := wav.NewDecoder(rs)
	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		return nil, errors.Wrap(ErrNotWav, err.Error())
	}
	if decoder.NumChans == 0 || decoder.SampleRate == 0 || decoder.BitDepth == 0 {
		return nil, errors.Wrap(ErrNotWav, "missing fmt chunk")
	}
	if err := decoder.FwdToPCM(); err != nil {
		return nil, errors.Wrap(ErrNotWav, err.Error())
	}

	metadata := &models.AudioMetadata{
		SampleRate:  int(decoder.SampleRate),
		Channels:    int(decoder.NumChans),
		BitDepth:    int(decoder.BitDepth),
		AudioFormat: int(decoder.WavAudioFormat),
		TotalBytes:  int(decoder.PCMLen()),
	}

	bytesPerSecond := metadata.SampleRate * metadata.Channels * metadata.BitDepth / BitsInByte
	if bytesPerSecond > 0 {
		metadata.Duration = float64(metadata.TotalBytes) / float64(bytesPerSecond)
	}
	return metadata, nil
}

// DecodeSamples reads every PCM sample of a WAV stream
func DecodeSamples(rs io.ReadSeeker) (*goaudio.IntBuffer, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "rewind")
	}
	decoder := wav.NewDecoder(rs)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "decode PCM")
	}
	return buf, nil
}

// SamplesFromPCM interprets raw little-endian 16-bit PCM the way a WAV decoder would.
// A trailing odd byte is ignored.
func SamplesFromPCM(pcmData []byte, format *goaudio.Format) *goaudio.IntBuffer {
	sampleCount := len(pcmData) / 2
	samples := make([]int, sampleCount)

	for i := 0; i < sampleCount; i++ {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcmData[i*2:])))
	}

	return &goaudio.IntBuffer{
		Format:         format,
		Data:           samples,
		SourceBitDepth: 16,
	}
}
