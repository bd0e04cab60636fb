package wavparser

import (
	"bytes"
	"encoding/binary"

	"fixwav/models"

	"github.com/bogem/id3v2"
)

// read syncsafe int for ID3v2 size
func syncSafeToInt(b []byte) int {
	return int(b[0]&0x7F)<<21 |
		int(b[1]&0x7F)<<14 |
		int(b[2]&0x7F)<<7 |
		int(b[3]&0x7F)
}

// TagBytes rebuilds the skipped ID3 tag: header, walked frames and zero padding
// up to the size the header declares.
func (l *Layout) TagBytes() []byte {
	var buf bytes.Buffer
	buf.Write(l.TagHeader[:])
	for _, f := range l.Frames {
		buf.Write(f.ID[:])
		var size [4]byte
		binary.BigEndian.PutUint32(size[:], f.Length)
		buf.Write(size[:])
		buf.Write(f.Flags[:])
		buf.Write(f.Content)
	}

	declared := syncSafeToInt(l.TagHeader[6:10]) + len(l.TagHeader)
	if buf.Len() < declared {
		buf.Write(make([]byte, declared-buf.Len()))
	}
	return buf.Bytes()
}

// Tag summarises the skipped ID3 tag. The tag is only informational, so a tag
// the id3v2 parser rejects still yields the frame count.
func (l *Layout) Tag() models.TagSummary {
	summary := models.TagSummary{
		Version: l.TagHeader[3],
		Frames:  len(l.Frames),
	}
	if len(l.Frames) == 0 {
		return summary
	}

	tag, err := id3v2.ParseReader(bytes.NewReader(l.TagBytes()), id3v2.Options{Parse: true})
	if err != nil {
		return summary
	}
	summary.Title = tag.Title()
	summary.Artist = tag.Artist()
	summary.Album = tag.Album()
	summary.Year = tag.Year()
	summary.Genre = tag.Genre()
	return summary
}

// FrameInfos lists the walked frames for JSON output
func (l *Layout) FrameInfos() []models.FrameInfo {
	infos := make([]models.FrameInfo, 0, len(l.Frames))
	for _, f := range l.Frames {
		infos = append(infos, models.FrameInfo{ID: string(f.ID[:]), Length: f.Length})
	}
	return infos
}
