// Package fixtures builds in-memory WAV files for tests
package fixtures

import (
	"bytes"
	"encoding/binary"
)

// Frame is a raw ID3v2.3 frame to embed in a corrupted file
type Frame struct {
	ID      string
	Flags   [2]byte
	Content []byte
}

var (
	id3Chunk  = []byte{0x69, 0x64, 0x33, 0x20, 0x0a, 0x08, 0x00, 0x00}
	id3Header = []byte{0x49, 0x44, 0x33, 0x03, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00}
)

// InfoList returns a LIST payload with an INFO/ISFT entry, 16 bytes long
func InfoList() []byte {
	var buf bytes.Buffer
	buf.WriteString("INFO")
	buf.WriteString("ISFT")
	putUint32(&buf, 4)
	buf.WriteString("Lavf")
	return buf.Bytes()
}

// TextFrame builds a T*** frame with ISO-8859-1 encoding
func TextFrame(id, text string) Frame {
	return Frame{ID: id, Content: append([]byte{0x00}, text...)}
}

// Corrupt builds a file in the corrupted layout: RIFF preamble, LIST length and
// info, the id3 markers, the frames, then the payload.
func Corrupt(info []byte, frames []Frame, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	putUint32(&buf, 0)
	buf.WriteString("WAVE")
	buf.WriteString("LIST")
	putUint32(&buf, uint32(len(info)))
	buf.Write(info)
	buf.Write(id3Chunk)
	buf.Write(id3Header)
	for _, f := range frames {
		buf.WriteString(f.ID)
		var size [4]byte
		binary.BigEndian.PutUint32(size[:], uint32(len(f.Content)))
		buf.Write(size[:])
		buf.Write(f.Flags[:])
		buf.Write(f.Content)
	}
	buf.Write(payload)
	return buf.Bytes()
}

// Standard builds a canonical 44 byte header PCM WAV around pcm
func Standard(channels, sampleRate, bitDepth int, pcm []byte) []byte {
	var buf bytes.Buffer
	blockAlign := channels * bitDepth / 8
	buf.WriteString("RIFF")
	putUint32(&buf, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	putUint32(&buf, 16)
	putUint16(&buf, 1)
	putUint16(&buf, uint16(channels))
	putUint32(&buf, uint32(sampleRate))
	putUint32(&buf, uint32(sampleRate*blockAlign))
	putUint16(&buf, uint16(blockAlign))
	putUint16(&buf, uint16(bitDepth))
	buf.WriteString("data")
	putUint32(&buf, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// PCM returns n bytes of a deterministic non-zero ramp
func PCM(n int) []byte {
	pcm := make([]byte, n)
	for i := range pcm {
		pcm[i] = byte(i*7 + 1)
	}
	return pcm
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}
