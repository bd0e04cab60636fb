// Package models contain the types shared by the parser, the repairer and the API
package models

// Layout selects how the repaired header is laid out
type Layout int

const (
	// LayoutStandard pads after the payload and writes riff_length as file size - 8
	LayoutStandard Layout = iota
	// LayoutLegacy reproduces the byte layout written by earlier fixwav releases
	LayoutLegacy
)

func (l Layout) String() string {
	if l == LayoutLegacy {
		return "legacy"
	}
	return "standard"
}

// ParseLayout maps a user supplied name to a Layout, defaulting to standard
func ParseLayout(name string) Layout {
	if name == "legacy" {
		return LayoutLegacy
	}
	return LayoutStandard
}

// DefaultMaxFrames bounds the ID3 frame walk
const DefaultMaxFrames = 4096

// RepairOptions represents configuration for a single repair
type RepairOptions struct {
	Layout    Layout
	MaxFrames int
}

// Limit returns the frame limit to enforce
func (o RepairOptions) Limit() int {
	if o.MaxFrames <= 0 {
		return DefaultMaxFrames
	}
	return o.MaxFrames
}

// TagSummary holds the readable fields of the ID3 tag that was skipped
type TagSummary struct {
	Version byte   `json:"version,omitempty"`
	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
	Album   string `json:"album,omitempty"`
	Year    string `json:"year,omitempty"`
	Genre   string `json:"genre,omitempty"`
	Frames  int    `json:"frames"`
}

// RepairResult describes what Reconstruct wrote
type RepairResult struct {
	InfoLength    uint32     `json:"info_length"`
	Frames        int        `json:"frames"`
	PayloadOffset int64      `json:"payload_offset"`
	PayloadLength int64      `json:"payload_length"`
	DataLength    int32      `json:"data_length"`
	RiffLength    int32      `json:"riff_length"`
	Padded        bool       `json:"padded"`
	BytesWritten  int64      `json:"bytes_written"`
	Layout        string     `json:"layout"`
	Tag           TagSummary `json:"tag"`
}

// AudioMetadata represents metadata about a parseable WAV file
type AudioMetadata struct {
	SampleRate  int     `json:"sample_rate"`
	Channels    int     `json:"channels"`
	BitDepth    int     `json:"bit_depth"`
	AudioFormat int     `json:"audio_format"`
	Duration    float64 `json:"duration"`
	TotalBytes  int     `json:"total_bytes"`
}

// Outcome is the classification of one file processed by the driver
type Outcome string

const (
	OutcomeClean    Outcome = "clean"
	OutcomeRepaired Outcome = "repaired"
	OutcomeFailed   Outcome = "failed"
	OutcomeCopied   Outcome = "copied"
	OutcomeSkipped  Outcome = "skipped"
)

// FrameInfo is the JSON view of one walked ID3 frame
type FrameInfo struct {
	ID     string `json:"id"`
	Length uint32 `json:"length"`
}

// InspectResponse represents the response of the inspect endpoint
type InspectResponse struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	Corrupt       bool           `json:"corrupt"`
	Params        *AudioMetadata `json:"params,omitempty"`
	InfoLength    uint32         `json:"info_length,omitempty"`
	Frames        []FrameInfo    `json:"frames,omitempty"`
	PayloadLength int64          `json:"payload_length,omitempty"`
	Tag           *TagSummary    `json:"tag,omitempty"`
}

// RepairResponse represents an error response of the repair endpoint
type RepairResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
