package beast2

// LEB128 unsigned varints and the zigzag signed mapping. These are the
// bottom of the wire format: every length, count, case index and
// backreference distance is an unsigned varint; Integer and DateTime
// payloads are zigzag varints.

// AppendUvarint appends the LEB128 encoding of v: 7 payload bits per byte,
// least significant group first, continuation bit set on all but the last.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// ReadUvarint decodes a LEB128 varint from data and returns the value and
// the number of bytes consumed; n == 0 means the input was truncated.
//
// Groups shifted past bit 63 are discarded rather than reported: a stream
// claiming more than 64 bits of payload decodes to the truncated low bits.
// Existing streams depend on byte-exact agreement with this behavior, so
// the quirk is load-bearing.
func ReadUvarint(data []byte) (v uint64, n int) {
	var shift uint
	for i, b := range data {
		if shift < 64 {
			v |= uint64(b&0x7f) << shift
		}
		shift += 7
		if b < 0x80 {
			return v, i + 1
		}
	}
	return 0, 0
}

// AppendSvarint appends the zigzag LEB128 encoding of v, mapping
// 0, -1, 1, -2, 2, ... to 0, 1, 2, 3, 4, ...
func AppendSvarint(buf []byte, v int64) []byte {
	return AppendUvarint(buf, uint64(v<<1)^uint64(v>>63))
}

// ReadSvarint decodes a zigzag LEB128 varint; n == 0 means truncated input.
func ReadSvarint(data []byte) (v int64, n int) {
	u, n := ReadUvarint(data)
	if n == 0 {
		return 0, 0
	}
	return int64(u>>1) ^ -int64(u&1), n
}
