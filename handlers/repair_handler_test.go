package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"fixwav/fixtures"
	"fixwav/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func upload(t *testing.T, path, filename string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("audio_file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	NewRouter(NewRepairHandler(32<<20, models.DefaultMaxFrames), nil).ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(NewRepairHandler(1<<20, 16), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestRepairCorruptUpload(t *testing.T) {
	payload := fixtures.PCM(999)
	src := fixtures.Corrupt(fixtures.InfoList(), []fixtures.Frame{fixtures.TextFrame("TIT2", "x")}, payload)

	rec := upload(t, "/api/v1/repair", "take.wav", src, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "repaired", rec.Header().Get("X-Fixwav-Status"))
	assert.Equal(t, "1000", rec.Header().Get("X-Fixwav-Data-Length"))
	assert.Equal(t, "1", rec.Header().Get("X-Fixwav-Frames"))
	assert.Equal(t, "attachment; filename=take_fixed.wav", rec.Header().Get("Content-Disposition"))

	out := rec.Body.Bytes()
	assert.Equal(t, "RIFF", string(out[:4]))
	assert.Equal(t, payload, out[len(out)-1000:len(out)-1])
}

func TestRepairLegacyLayout(t *testing.T) {
	src := fixtures.Corrupt(make([]byte, 16), nil, []byte{1, 2, 3, 4, 5})

	rec := upload(t, "/api/v1/repair", "take.wav", src, map[string]string{"layout": "legacy"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "legacy", rec.Header().Get("X-Fixwav-Layout"))
	assert.Equal(t, "76", rec.Header().Get("X-Fixwav-Riff-Length"))
	assert.Len(t, rec.Body.Bytes(), 76)
}

func TestRepairCleanUploadIsReturnedUnchanged(t *testing.T) {
	src := fixtures.Standard(2, 44100, 16, fixtures.PCM(4410*4))

	rec := upload(t, "/api/v1/repair", "ok.wav", src, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "clean", rec.Header().Get("X-Fixwav-Status"))
	assert.Equal(t, src, rec.Body.Bytes())
}

func TestRepairUnrepairableUpload(t *testing.T) {
	rec := upload(t, "/api/v1/repair", "bad.wav", []byte("RIFF\x00\x00\x00\x00WAVELIST\x04\x00\x00\x00INFOjunkjunkjunkjunk"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp models.RepairResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "ID3 tags not found where expected")
}

func TestRepairRejectsMissingOrNonWavFile(t *testing.T) {
	rec := upload(t, "/api/v1/repair", "", nil, map[string]string{"layout": "legacy"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Audio file is required")

	rec = upload(t, "/api/v1/repair", "song.mp3", []byte("ID3"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only WAV files are supported")
}

func TestInspectCorruptUpload(t *testing.T) {
	frames := []fixtures.Frame{fixtures.TextFrame("TIT2", "Round Midnight"), fixtures.TextFrame("TPE1", "Monk")}
	src := fixtures.Corrupt(fixtures.InfoList(), frames, fixtures.PCM(40))

	rec := upload(t, "/api/v1/inspect", "take.wav", src, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Corrupt)
	assert.Equal(t, uint32(16), resp.InfoLength)
	assert.Equal(t, int64(40), resp.PayloadLength)
	require.Len(t, resp.Frames, 2)
	assert.Equal(t, "TPE1", resp.Frames[1].ID)
	require.NotNil(t, resp.Tag)
	assert.Equal(t, "Round Midnight", resp.Tag.Title)
	assert.Equal(t, "Monk", resp.Tag.Artist)
}

func TestInspectCleanUpload(t *testing.T) {
	src := fixtures.Standard(1, 8000, 16, fixtures.PCM(16000))

	rec := upload(t, "/api/v1/inspect", "ok.wav", src, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Corrupt)
	require.NotNil(t, resp.Params)
	assert.Equal(t, 8000, resp.Params.SampleRate)
	assert.Equal(t, 1, resp.Params.Channels)
	assert.InDelta(t, 1.0, resp.Params.Duration, 1e-9)
}
