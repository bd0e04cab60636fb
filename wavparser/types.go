// Package wavparser reads WAV files whose RIFF header was corrupted by an embedded ID3 tag
package wavparser

import "fmt"

// ID3ChunkMarker is the "id3 " RIFF chunk header found right after the LIST chunk
var ID3ChunkMarker = [8]byte{0x69, 0x64, 0x33, 0x20, 0x0a, 0x08, 0x00, 0x00}

// ID3TagHeader is the ID3v2.3 tag header that opens the embedded frame list
var ID3TagHeader = [10]byte{0x49, 0x44, 0x33, 0x03, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00}

// InfoLengthOffset is where the LIST chunk length sits in a corrupted file
const InfoLengthOffset = 16

// FrameHeaderSize is id + length + flags
const FrameHeaderSize = 10

// Frame is one ID3v2 frame walked over while skipping the tag
type Frame struct {
	ID      [4]byte
	Length  uint32
	Flags   [2]byte
	Content []byte
}

func (f Frame) String() string {
	return fmt.Sprintf("%s (%d bytes)", f.ID[:], f.Length)
}

// Layout is everything ParseCorrupt learned about a corrupted file
type Layout struct {
	InfoLengthField [4]byte // original little-endian bytes, written back verbatim
	InfoLength      uint32
	Info            []byte
	TagHeader       [10]byte
	Frames          []Frame
	PayloadOffset   int64
	PayloadLength   int64
}
