package beast2

import (
	"encoding/binary"
	"math"
)

// maxGrowStep caps how much a single resize may add to the buffer. Doubling
// below the cap, cap-sized steps above it.
const maxGrowStep = 1 << 30

// encbuf manages the write buffer for the encoder. It is append-only: the
// backreference protocol never rewrites earlier bytes, it only points
// backward at them, so no random-access patching is supported.
type encbuf struct {
	buf []byte
}

func newEncbuf() *encbuf {
	return &encbuf{buf: make([]byte, 0, 1024)}
}

// Bytes returns the bytes written so far.
func (b *encbuf) Bytes() []byte { return b.buf }

// Len returns the number of bytes written so far, i.e. the offset the next
// write lands at.
func (b *encbuf) Len() int { return len(b.buf) }

func (b *encbuf) ensure(n int) {
	if cap(b.buf)-len(b.buf) >= n {
		return
	}
	grow := cap(b.buf)
	if grow > maxGrowStep {
		grow = maxGrowStep
	}
	if grow < n {
		grow = n
	}
	next := make([]byte, len(b.buf), cap(b.buf)+grow)
	copy(next, b.buf)
	b.buf = next
}

func (b *encbuf) WriteByte(c byte) {
	b.ensure(1)
	b.buf = append(b.buf, c)
}

func (b *encbuf) Write(p []byte) {
	b.ensure(len(p))
	b.buf = append(b.buf, p...)
}

func (b *encbuf) WriteString(s string) {
	b.ensure(len(s))
	b.buf = append(b.buf, s...)
}

// Uvarint appends an unsigned LEB128 varint.
func (b *encbuf) Uvarint(v uint64) {
	b.ensure(10)
	b.buf = AppendUvarint(b.buf, v)
}

// Svarint appends a zigzag LEB128 varint.
func (b *encbuf) Svarint(v int64) {
	b.ensure(10)
	b.buf = AppendSvarint(b.buf, v)
}

// Float64 appends an IEEE-754 binary64 in little-endian byte order.
func (b *encbuf) Float64(v float64) {
	b.ensure(8)
	b.buf = binary.LittleEndian.AppendUint64(b.buf, math.Float64bits(v))
}

// decbuf is an offset cursor over the byte slice being decoded. Reads past
// the end yield ErrTruncated; nothing is buffered or copied.
type decbuf struct {
	data []byte
	pos  int
}

func newDecbuf(data []byte) *decbuf {
	return &decbuf{data: data}
}

// Pos returns the current byte offset. Backreference distances are relative
// to the position just before the distance varint, so callers snapshot Pos
// before reading it.
func (b *decbuf) Pos() int { return b.pos }

// Remaining reports how many undecoded bytes are left.
func (b *decbuf) Remaining() int { return len(b.data) - b.pos }

func (b *decbuf) ReadByte() (byte, error) {
	if b.pos >= len(b.data) {
		return 0, ErrTruncated
	}
	c := b.data[b.pos]
	b.pos++
	return c, nil
}

// ReadBytes returns the next n bytes without copying.
func (b *decbuf) ReadBytes(n int) ([]byte, error) {
	if n < 0 || len(b.data)-b.pos < n {
		return nil, ErrTruncated
	}
	p := b.data[b.pos : b.pos+n]
	b.pos += n
	return p, nil
}

func (b *decbuf) ReadUvarint() (uint64, error) {
	v, n := ReadUvarint(b.data[b.pos:])
	if n == 0 {
		return 0, ErrTruncated
	}
	b.pos += n
	return v, nil
}

func (b *decbuf) ReadSvarint() (int64, error) {
	v, n := ReadSvarint(b.data[b.pos:])
	if n == 0 {
		return 0, ErrTruncated
	}
	b.pos += n
	return v, nil
}

func (b *decbuf) ReadFloat64() (float64, error) {
	p, err := b.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(p)), nil
}
