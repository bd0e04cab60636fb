package wavparser

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ErrTruncated is returned when a read would run past the end of the stream
var ErrTruncated = errors.New("unexpected end of file")

// Reader is a bounds-checked cursor over a seekable stream
type Reader struct {
	rs   io.ReadSeeker
	pos  int64
	size int64
}

// NewReader measures the stream and rewinds it to the start
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "seek to end")
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "rewind")
	}
	return &Reader{rs: rs, size: size}, nil
}

func (r *Reader) Pos() int64  { return r.pos }
func (r *Reader) Size() int64 { return r.size }

// Remaining is the number of bytes between the cursor and the end of the stream
func (r *Reader) Remaining() int64 { return r.size - r.pos }

// SeekTo moves the cursor to an absolute offset
func (r *Reader) SeekTo(off int64) error {
	if off < 0 || off > r.size {
		return errors.Wrapf(ErrTruncated, "seek to %d in %d byte file", off, r.size)
	}
	if _, err := r.rs.Seek(off, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seek to %d", off)
	}
	r.pos = off
	return nil
}

// ReadExact reads exactly n bytes or fails without consuming anything past the end
func (r *Reader) ReadExact(n int64) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errors.Wrapf(ErrTruncated, "need %d bytes at offset %d, %d left", n, r.pos, r.Remaining())
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(r.rs, buf)
	r.pos += int64(read)
	if err != nil {
		return nil, errors.Wrapf(err, "read %d bytes at offset %d", n, r.pos-int64(read))
	}
	return buf, nil
}

// Skip advances the cursor by n bytes
func (r *Reader) Skip(n int64) error {
	if n < 0 || n > r.Remaining() {
		return errors.Wrapf(ErrTruncated, "skip %d bytes at offset %d, %d left", n, r.pos, r.Remaining())
	}
	return r.SeekTo(r.pos + n)
}

// PeekByte returns the next byte without consuming it. ok is false at end of stream.
func (r *Reader) PeekByte() (b byte, ok bool, err error) {
	if r.Remaining() == 0 {
		return 0, false, nil
	}
	var one [1]byte
	if _, err := io.ReadFull(r.rs, one[:]); err != nil {
		return 0, false, errors.Wrapf(err, "peek at offset %d", r.pos)
	}
	if _, err := r.rs.Seek(r.pos, io.SeekStart); err != nil {
		return 0, false, errors.Wrapf(err, "unread at offset %d", r.pos)
	}
	return one[0], true, nil
}

func (r *Reader) ReadUint32LE() (uint32, error) {
	b, err := r.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadUint32BE() (uint32, error) {
	b, err := r.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}
