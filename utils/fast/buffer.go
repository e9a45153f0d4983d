package fast

// buffer.go provides a lightweight, non-thread-safe wrapper around byte slices
// used by the binary transaction and block codec.
//
// Unlike a bare append/index buffer, every Reader method checks bounds and
// reports ErrUnexpectedEOF instead of panicking: the codec decodes untrusted
// blobs (hard-coded genesis hex, relayed transactions) and a malformed blob
// must surface as an error value.

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrUnexpectedEOF is returned when a read runs past the end of the buffer.
	ErrUnexpectedEOF = errors.New("fast: unexpected end of buffer")
	// ErrVarintOverflow is returned when a varint does not fit 64 bits.
	ErrVarintOverflow = errors.New("fast: varint overflows 64 bits")
	// ErrNonCanonicalVarint is returned for varints padded with zero groups.
	ErrNonCanonicalVarint = errors.New("fast: non canonical varint")
)

type Reader struct {
	// buf is the underlying data source.
	buf []byte
	// offset tracks the current reading position (cursor).
	offset int
}

type Writer struct {
	// buf is the accumulating byte slice.
	buf []byte
}

// NewReader creates a Reader to consume the provided byte slice.
func NewReader(bb []byte) *Reader {
	return &Reader{buf: bb}
}

// NewWriter creates a Writer that appends to the provided initial slice.
// Often called with `make([]byte, 0, capacity)` to pre-allocate memory.
func NewWriter(bb []byte) *Writer {
	return &Writer{buf: bb}
}

// WriteByte appends a single byte to the buffer.
func (b *Writer) WriteByte(v byte) {
	b.buf = append(b.buf, v)
}

// Write appends a slice of bytes (bulk write) to the buffer.
func (b *Writer) Write(v []byte) {
	b.buf = append(b.buf, v...)
}

// WriteUvarint appends v as a little-endian base-128 varint (7 bits per
// byte, MSB set on every byte except the last).
func (b *Writer) WriteUvarint(v uint64) {
	b.buf = binary.AppendUvarint(b.buf, v)
}

// WriteUint32LE appends v as 4 little-endian bytes.
func (b *Writer) WriteUint32LE(v uint32) {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
}

// Bytes returns the accumulated content of the Writer.
func (b *Writer) Bytes() []byte {
	return b.buf
}

// Len returns the number of bytes written so far.
func (b *Writer) Len() int {
	return len(b.buf)
}

// Read consumes and returns the next 'n' bytes from the buffer.
//
// The returned slice shares memory with the underlying buffer.
func (b *Reader) Read(n int) ([]byte, error) {
	if n < 0 || n > len(b.buf)-b.offset {
		return nil, ErrUnexpectedEOF
	}
	res := b.buf[b.offset : b.offset+n]
	b.offset += n
	return res, nil
}

// ReadInto fills dst completely from the buffer.
func (b *Reader) ReadInto(dst []byte) error {
	src, err := b.Read(len(dst))
	if err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

// ReadByte consumes and returns a single byte.
func (b *Reader) ReadByte() (byte, error) {
	if b.offset >= len(b.buf) {
		return 0, ErrUnexpectedEOF
	}
	res := b.buf[b.offset]
	b.offset++
	return res, nil
}

// ReadUvarint decodes a varint written by WriteUvarint. Encodings with a
// trailing zero group (e.g. 0x85 0x00 for 5) are rejected.
func (b *Reader) ReadUvarint() (uint64, error) {
	var v uint64
	for i := 0; ; i++ {
		c, err := b.ReadByte()
		if err != nil {
			return 0, err
		}
		word := uint64(c & 0x7f)
		if i == 9 && c > 1 {
			return 0, ErrVarintOverflow
		}
		v |= word << (7 * uint(i))
		if c&0x80 == 0 {
			if i > 0 && c == 0 {
				return 0, ErrNonCanonicalVarint
			}
			return v, nil
		}
	}
}

// ReadUint32LE consumes 4 little-endian bytes.
func (b *Reader) ReadUint32LE() (uint32, error) {
	raw, err := b.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

// Position returns the current cursor index of the Reader.
func (b *Reader) Position() int {
	return b.offset
}

// Bytes returns the entire underlying buffer of the Reader.
func (b *Reader) Bytes() []byte {
	return b.buf
}

// Empty checks if the Reader has reached the end of the buffer.
func (b *Reader) Empty() bool {
	return len(b.buf) == b.offset
}
