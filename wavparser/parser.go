package wavparser

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrMarkerMismatch means the ID3 markers are not where the corrupted layout puts them
	ErrMarkerMismatch = errors.New("ID3 tags not found where expected")
	// ErrMalformedFrameList means the frame walk could not end cleanly inside the file
	ErrMalformedFrameList = errors.New("malformed ID3 frame list")
)

// ParseCorrupt reads the LIST chunk, checks the ID3 markers and walks the frame
// list of a corrupted file. maxFrames bounds the walk.
func ParseCorrupt(rs io.ReadSeeker, maxFrames int) (*Layout, error) {
	r, err := NewReader(rs)
	if err != nil {
		return nil, err
	}

	if err := r.SeekTo(InfoLengthOffset); err != nil {
		return nil, errors.Wrap(err, "info length")
	}

	lengthField, err := r.ReadExact(4)
	if err != nil {
		return nil, errors.Wrap(err, "info length")
	}
	layout := &Layout{InfoLength: binary.LittleEndian.Uint32(lengthField)}
	copy(layout.InfoLengthField[:], lengthField)

	layout.Info, err = r.ReadExact(int64(layout.InfoLength))
	if err != nil {
		return nil, errors.Wrap(err, "info header")
	}

	if err := expectMarker(r, ID3ChunkMarker[:], "id3 chunk marker"); err != nil {
		return nil, err
	}
	if err := expectMarker(r, ID3TagHeader[:], "ID3v2 header"); err != nil {
		return nil, err
	}
	copy(layout.TagHeader[:], ID3TagHeader[:])

	layout.Frames, err = walkFrames(r, maxFrames)
	if err != nil {
		return nil, err
	}

	layout.PayloadOffset = r.Pos()
	layout.PayloadLength = r.Remaining()
	return layout, nil
}

func expectMarker(r *Reader, want []byte, name string) error {
	at := r.Pos()
	got, err := r.ReadExact(int64(len(want)))
	if errors.Is(err, ErrTruncated) {
		return errors.Wrapf(ErrMarkerMismatch, "%s at offset %d: file ends early", name, at)
	}
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return errors.Wrapf(ErrMarkerMismatch, "%s at offset %d: got % x", name, at, got)
	}
	return nil
}

// walkFrames consumes frames until the next byte is not alphanumeric or the file ends
func walkFrames(r *Reader, maxFrames int) ([]Frame, error) {
	var frames []Frame
	for {
		next, ok, err := r.PeekByte()
		if err != nil {
			return nil, err
		}
		if !ok || !isAlnum(next) {
			return frames, nil
		}
		if len(frames) >= maxFrames {
			return nil, errors.Wrapf(ErrMalformedFrameList, "more than %d frames", maxFrames)
		}

		start := r.Pos()
		if r.Remaining() < FrameHeaderSize {
			return nil, errors.Wrapf(ErrMalformedFrameList, "frame header at offset %d runs past end of file", start)
		}
		header, err := r.ReadExact(FrameHeaderSize)
		if err != nil {
			return nil, err
		}

		var frame Frame
		copy(frame.ID[:], header[0:4])
		frame.Length = binary.BigEndian.Uint32(header[4:8])
		copy(frame.Flags[:], header[8:10])

		if int64(frame.Length) > r.Remaining() {
			return nil, errors.Wrapf(ErrMalformedFrameList, "frame %q at offset %d declares %d bytes, %d left",
				frame.ID[:], start, frame.Length, r.Remaining())
		}
		frame.Content, err = r.ReadExact(int64(frame.Length))
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
}

func isAlnum(b byte) bool {
	return ('0' <= b && b <= '9') || ('A' <= b && b <= 'Z') || ('a' <= b && b <= 'z')
}
