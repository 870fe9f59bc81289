package ubytes

import (
	"encoding/binary"
	"math"

	"unity-viewer/ds"
)

func NewWriter(order binary.ByteOrder) *Writer {
	return &Writer{Order: order}
}

func (w *Writer) Len() int {
	return w.buf.Len()
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) WriteBytes(bs []byte) *Writer {
	w.buf.Write(bs)
	return w
}

func (w *Writer) WriteUint8(value uint8) *Writer {
	w.buf.WriteByte(value)
	return w
}

func (w *Writer) WriteBool(value bool) *Writer {
	if value {
		return w.WriteUint8(1)
	}
	return w.WriteUint8(0)
}

func (w *Writer) WriteUint16(value uint16) *Writer {
	bs := make([]byte, 2)
	w.Order.PutUint16(bs, value)
	return w.WriteBytes(bs)
}

func (w *Writer) WriteInt16(value int16) *Writer {
	return w.WriteUint16(uint16(value))
}

func (w *Writer) WriteUint32(value uint32) *Writer {
	bs := make([]byte, 4)
	w.Order.PutUint32(bs, value)
	return w.WriteBytes(bs)
}

func (w *Writer) WriteInt(value int32) *Writer {
	return w.WriteUint32(uint32(value))
}

func (w *Writer) WriteUint64(value uint64) *Writer {
	bs := make([]byte, 8)
	w.Order.PutUint64(bs, value)
	return w.WriteBytes(bs)
}

func (w *Writer) WriteLong(value int64) *Writer {
	return w.WriteUint64(uint64(value))
}

func (w *Writer) WriteFloat32(value float32) *Writer {
	return w.WriteUint32(math.Float32bits(value))
}

func (w *Writer) WriteFloat64(value float64) *Writer {
	return w.WriteUint64(math.Float64bits(value))
}

func (w *Writer) WriteNullString(value string) *Writer {
	w.buf.WriteString(value)
	return w.WriteUint8(0)
}

// WriteString writes a 32-bit length prefix and the raw bytes, without
// alignment.
func (w *Writer) WriteString(value string) *Writer {
	w.WriteInt(int32(len(value)))
	w.buf.WriteString(value)
	return w
}

// Align pads with zero bytes up to the next multiple of n.
func (w *Writer) Align(n int) *Writer {
	padding := ds.AlignUp(w.Len(), n) - w.Len()
	return w.WriteBytes(make([]byte, padding))
}
