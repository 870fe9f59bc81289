package ubytes

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"unity-viewer/ds"
	"unity-viewer/uasset/uerr"
)

func NewBytesReader(bs []byte, order binary.ByteOrder) *Reader {
	return &Reader{
		Reader: *bytes.NewReader(bs),
		Order:  order,
	}
}

// Pos is the offset of the next byte to be read, relative to the start of
// the underlying slice.
func (b *Reader) Pos() int64 {
	return b.Size() - int64(b.Len())
}

// Align moves the cursor forward to the next multiple of n, counted from
// the start of the underlying slice.
func (b *Reader) Align(n int64) error {
	pos := b.Pos()
	aligned := ds.AlignUp(pos, n)
	if aligned == pos {
		return nil
	}
	if aligned > b.Size() {
		return uerr.Formatf("Reader.Align", uerr.ErrUnexpectedEOF, "align %d to %d past size %d", pos, n, b.Size())
	}
	_, err := b.Seek(aligned, io.SeekStart)
	return err
}

func (b *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, uerr.Formatf("Reader.ReadBytes", uerr.ErrInvalidStructure, "negative length %d", n)
	}
	// checked before allocating, so a corrupt length cannot request gigabytes
	if n > b.Len() {
		return nil, uerr.Formatf(
			"Reader.ReadBytes", uerr.ErrUnexpectedEOF,
			"want %d bytes at %d, %d left", n, b.Pos(), b.Len(),
		)
	}
	bs := make([]byte, n)
	if n == 0 {
		return bs, nil
	}
	if _, err := io.ReadFull(b, bs); err != nil {
		return nil, uerr.Format("Reader.ReadBytes", err)
	}
	return bs, nil
}

func (b *Reader) ReadUint8() (uint8, error) {
	bs, err := b.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

func (b *Reader) ReadInt8() (int8, error) {
	value, err := b.ReadUint8()
	return int8(value), err
}

func (b *Reader) ReadBool() (bool, error) {
	value, err := b.ReadUint8()
	return value != 0, err
}

func (b *Reader) ReadUint16() (uint16, error) {
	bs, err := b.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return b.Order.Uint16(bs), nil
}

func (b *Reader) ReadInt16() (int16, error) {
	value, err := b.ReadUint16()
	return int16(value), err
}

func (b *Reader) ReadUint32() (uint32, error) {
	bs, err := b.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return b.Order.Uint32(bs), nil
}

func (b *Reader) ReadInt() (int32, error) {
	value, err := b.ReadUint32()
	return int32(value), err
}

func (b *Reader) ReadUint64() (uint64, error) {
	bs, err := b.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return b.Order.Uint64(bs), nil
}

func (b *Reader) ReadLong() (int64, error) {
	value, err := b.ReadUint64()
	return int64(value), err
}

func (b *Reader) ReadFloat32() (float32, error) {
	value, err := b.ReadUint32()
	return math.Float32frombits(value), err
}

func (b *Reader) ReadFloat64() (float64, error) {
	value, err := b.ReadUint64()
	return math.Float64frombits(value), err
}

// ReadCount reads a signed 32-bit element count and rejects negative values.
func (b *Reader) ReadCount() (int, error) {
	count, err := b.ReadInt()
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, uerr.Formatf("Reader.ReadCount", uerr.ErrInvalidStructure, "negative count %d at %d", count, b.Pos()-4)
	}
	return int(count), nil
}

// ReadNullString reads bytes up to and excluding a zero terminator.
func (b *Reader) ReadNullString() (string, error) {
	start := b.Pos()
	var sb []byte
	for {
		c, err := b.ReadUint8()
		if err != nil {
			return "", uerr.Formatf("Reader.ReadNullString", uerr.ErrUnexpectedEOF, "unterminated string at %d", start)
		}
		if c == 0 {
			return string(sb), nil
		}
		sb = append(sb, c)
	}
}

// ReadString reads a 32-bit length followed by that many bytes.
func (b *Reader) ReadString() (string, error) {
	n, err := b.ReadCount()
	if err != nil {
		return "", err
	}
	bs, err := b.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}
