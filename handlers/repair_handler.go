// Package handlers is made to handle requests
package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"fixwav/audio"
	"fixwav/models"
	"fixwav/repair"
	"fixwav/wavparser"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const Version = "1.0.0"

type RepairHandler struct {
	detector  *audio.Detector
	maxUpload int64
	maxFrames int
}

func NewRepairHandler(maxUpload int64, maxFrames int) *RepairHandler {
	return &RepairHandler{
		detector:  audio.NewDetector(),
		maxUpload: maxUpload,
		maxFrames: maxFrames,
	}
}

func (h *RepairHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "WAV repair API is running",
		"version": Version,
	})
}

func (h *RepairHandler) Inspect(c *gin.Context) {
	audioData, _, err := h.readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.InspectResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	if !h.detector.IsCorruptReader(bytes.NewReader(audioData)) {
		params, err := audio.ReadParams(bytes.NewReader(audioData))
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.InspectResponse{
				Success: false,
				Message: fmt.Sprintf("Failed to read WAV parameters: %v", err),
			})
			return
		}
		c.JSON(http.StatusOK, models.InspectResponse{
			Success: true,
			Message: "WAV file is readable",
			Params:  params,
		})
		return
	}

	layout, err := wavparser.ParseCorrupt(bytes.NewReader(audioData), h.maxFrames)
	if err != nil {
		c.JSON(statusFor(err), models.InspectResponse{
			Success: false,
			Message: fmt.Sprintf("WAV file is corrupt and cannot be repaired: %v", err),
			Corrupt: true,
		})
		return
	}

	tag := layout.Tag()
	c.JSON(http.StatusOK, models.InspectResponse{
		Success:       true,
		Message:       "WAV file is corrupt and can be repaired",
		Corrupt:       true,
		InfoLength:    layout.InfoLength,
		Frames:        layout.FrameInfos(),
		PayloadLength: layout.PayloadLength,
		Tag:           &tag,
	})
}

func (h *RepairHandler) Repair(c *gin.Context) {
	audioData, filename, err := h.readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.RepairResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	if !h.detector.IsCorruptReader(bytes.NewReader(audioData)) {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		c.Header("X-Fixwav-Status", "clean")
		c.Data(http.StatusOK, "audio/wav", audioData)
		return
	}

	opts := models.RepairOptions{
		Layout:    models.ParseLayout(c.PostForm("layout")),
		MaxFrames: h.maxFrames,
	}

	var fixed bytes.Buffer
	result, err := repair.Reconstruct(bytes.NewReader(audioData), &fixed, opts)
	if err != nil {
		c.JSON(statusFor(err), models.RepairResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to repair %s: %v", filename, err),
		})
		return
	}

	baseFilename := strings.TrimSuffix(filename, filepath.Ext(filename))
	outputFilename := fmt.Sprintf("%s_fixed.wav", baseFilename)

	// Set headers for file download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputFilename))
	c.Header("X-Fixwav-Status", "repaired")
	c.Header("X-Fixwav-Layout", result.Layout)
	c.Header("X-Fixwav-Riff-Length", fmt.Sprintf("%d", result.RiffLength))
	c.Header("X-Fixwav-Data-Length", fmt.Sprintf("%d", result.DataLength))
	c.Header("X-Fixwav-Frames", fmt.Sprintf("%d", result.Frames))

	c.Data(http.StatusOK, "audio/wav", fixed.Bytes())
}

func (h *RepairHandler) readUpload(c *gin.Context) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, "", errors.Errorf("Failed to parse form: %v", err)
	}

	audioFile, audioHeader, err := c.Request.FormFile("audio_file")
	if err != nil {
		return nil, "", errors.New("Audio file is required")
	}
	defer audioFile.Close()

	if !isValidWAVFile(audioHeader.Filename) {
		return nil, "", errors.New("Invalid audio file format. Only WAV files are supported")
	}

	audioData, err := io.ReadAll(audioFile)
	if err != nil {
		return nil, "", errors.Errorf("Failed to read audio file: %v", err)
	}
	return audioData, filepath.Base(audioHeader.Filename), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, wavparser.ErrMarkerMismatch),
		errors.Is(err, wavparser.ErrMalformedFrameList),
		errors.Is(err, wavparser.ErrTruncated),
		errors.Is(err, repair.ErrTooLarge):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func isValidWAVFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".wav"
}
