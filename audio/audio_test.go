package audio_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	. "fixwav/audio"
	"fixwav/fixtures"
	"fixwav/models"
	"fixwav/repair"

	goaudio "github.com/go-audio/audio"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectorValidWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.wav")
	require.NoError(t, os.WriteFile(path, fixtures.Standard(2, 44100, 16, fixtures.PCM(4410*4)), 0644))

	corrupt, err := NewDetector().IsCorrupt(path)
	require.NoError(t, err)
	assert.False(t, corrupt)
}

func TestDetectorCorruptedLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	data := fixtures.Corrupt(fixtures.InfoList(), []fixtures.Frame{fixtures.TextFrame("TIT2", "x")}, fixtures.PCM(4000))
	require.NoError(t, os.WriteFile(path, data, 0644))

	corrupt, err := NewDetector().IsCorrupt(path)
	require.NoError(t, err)
	assert.True(t, corrupt)
}

func TestDetectorGarbage(t *testing.T) {
	detector := NewDetector()
	assert.True(t, detector.IsCorruptReader(bytes.NewReader(nil)))
	assert.True(t, detector.IsCorruptReader(bytes.NewReader([]byte("RIF"))))
	assert.True(t, detector.IsCorruptReader(bytes.NewReader([]byte("not a wav file at all, just text"))))

	truncated := fixtures.Standard(2, 44100, 16, fixtures.PCM(64))[:30]
	assert.True(t, detector.IsCorruptReader(bytes.NewReader(truncated)))
}

func TestDetectorMissingFile(t *testing.T) {
	_, err := NewDetector().IsCorrupt(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadParams(t *testing.T) {
	data := fixtures.Standard(1, 22050, 16, fixtures.PCM(22050*2))

	params, err := ReadParams(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, params.Channels)
	assert.Equal(t, 22050, params.SampleRate)
	assert.Equal(t, 16, params.BitDepth)
	assert.Equal(t, 22050*2, params.TotalBytes)
	assert.InDelta(t, 1.0, params.Duration, 1e-9)
}

func TestReadParamsNotWav(t *testing.T) {
	_, err := ReadParams(bytes.NewReader([]byte("definitely not RIFF data")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotWav))
}

func TestSamplesFromPCM(t *testing.T) {
	buf := SamplesFromPCM([]byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80, 0x07}, &goaudio.Format{NumChannels: 1, SampleRate: 8000})
	assert.Equal(t, []int{1, -1, -32768}, buf.Data)
	assert.Equal(t, 16, buf.SourceBitDepth)
}

func TestCalculatePSNR(t *testing.T) {
	assert.True(t, math.IsInf(CalculatePSNR([]byte{1, 2, 3}, []byte{1, 2, 3}), 1))
	assert.Equal(t, 0.0, CalculatePSNR([]byte{1, 2}, []byte{1}))
	assert.InDelta(t, 20*math.Log10(255), CalculatePSNR([]byte{0}, []byte{1}), 1e-9)

	assert.True(t, math.IsInf(CalculatePSNRSamples([]int{-5, 5}, []int{-5, 5}, 16), 1))
	assert.InDelta(t, 20*math.Log10(32768), CalculatePSNRSamples([]int{0}, []int{1}, 16), 1e-9)
	assert.True(t, ValidatePSNR(50, 40))
	assert.False(t, ValidatePSNR(30, 40))
}

func repaired(t *testing.T, payload []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	_, err := repair.Reconstruct(bytes.NewReader(fixtures.Corrupt(fixtures.InfoList(), nil, payload)), &out, models.RepairOptions{})
	require.NoError(t, err)
	return out.Bytes()
}

func TestVerifyAcceptsRepairedFile(t *testing.T) {
	payload := fixtures.PCM(1001)
	report, err := Verify(bytes.NewReader(repaired(t, payload)), payload, repair.OutputFormat, repair.OutputBitDepth)
	require.NoError(t, err)

	assert.Equal(t, []string{"LIST", "fmt ", "data"}, report.Chunks)
	assert.Equal(t, 1002, report.DataSize)
	assert.True(t, math.IsInf(report.BytePSNR, 1))
	assert.True(t, math.IsInf(report.SamplePSNR, 1))
	assert.Equal(t, 2, report.Params.Channels)
}

func TestVerifyDetectsPayloadChange(t *testing.T) {
	payload := fixtures.PCM(1000)
	out := repaired(t, payload)
	out[len(out)-10] ^= 0xff

	_, err := Verify(bytes.NewReader(out), payload, repair.OutputFormat, repair.OutputBitDepth)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVerifyFailed))
	assert.Contains(t, err.Error(), "payload differs")
}

func TestVerifyDetectsWrongRiffSize(t *testing.T) {
	payload := fixtures.PCM(1000)
	out := repaired(t, payload)
	out[4]++

	_, err := Verify(bytes.NewReader(out), payload, repair.OutputFormat, repair.OutputBitDepth)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVerifyFailed))
}

func TestVerifyDetectsFormatMismatch(t *testing.T) {
	payload := fixtures.PCM(1000)
	_, err := Verify(bytes.NewReader(repaired(t, payload)), payload, &goaudio.Format{NumChannels: 1, SampleRate: 44100}, 16)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 channels, want 1")
}
