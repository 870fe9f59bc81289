package ubytes

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unity-viewer/uasset/uerr"
)

func TestBytesReader_ReadInt(t *testing.T) {
	bs := []byte{
		3, 1, 4, 3,
		12, 34, 56, 78,
	}
	{
		reader := NewBytesReader(bs, binary.LittleEndian)

		resultInt1, err := reader.ReadInt()
		assert.NoError(t, err)
		assert.Equal(t, int32(50594051), resultInt1)

		resultInt2, err := reader.ReadInt()
		assert.NoError(t, err)
		assert.Equal(t, int32(1312301580), resultInt2)
	}
	{
		reader := NewBytesReader(bs, binary.BigEndian)

		resultInt1, err := reader.ReadInt()
		assert.NoError(t, err)
		assert.Equal(t, int32(0x03010403), resultInt1)
	}
}

func TestBytesReader_Align(t *testing.T) {
	reader := NewBytesReader(make([]byte, 10), binary.LittleEndian)
	_, err := reader.ReadBytes(5)
	require.NoError(t, err)

	require.NoError(t, reader.Align(4))
	assert.Equal(t, int64(8), reader.Pos())

	require.NoError(t, reader.Align(4))
	assert.Equal(t, int64(8), reader.Pos())

	_, err = reader.ReadBytes(1)
	require.NoError(t, err)
	err = reader.Align(4)
	assert.True(t, errors.Is(err, uerr.ErrUnexpectedEOF))
}

func TestBytesReader_ReadBytesPastEnd(t *testing.T) {
	reader := NewBytesReader([]byte{1, 2}, binary.LittleEndian)
	_, err := reader.ReadBytes(3)
	assert.Equal(t, uerr.KindFormat, uerr.KindOf(err))

	_, err = reader.ReadBytes(-1)
	assert.True(t, errors.Is(err, uerr.ErrInvalidStructure))
}

func TestBytesReader_Strings(t *testing.T) {
	writer := NewWriter(binary.LittleEndian)
	writer.WriteNullString("2021.3.1f1").WriteString("hello").WriteInt(-1)
	reader := NewBytesReader(writer.Bytes(), binary.LittleEndian)

	version, err := reader.ReadNullString()
	require.NoError(t, err)
	assert.Equal(t, "2021.3.1f1", version)

	str, err := reader.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello", str)

	_, err = reader.ReadCount()
	assert.True(t, errors.Is(err, uerr.ErrInvalidStructure))
}

func TestBytesReader_Unterminated(t *testing.T) {
	reader := NewBytesReader([]byte("abc"), binary.LittleEndian)
	_, err := reader.ReadNullString()
	assert.True(t, errors.Is(err, uerr.ErrUnexpectedEOF))
}

func TestExecuteInstructions(t *testing.T) {
	type header struct {
		Size     uint32 `json:"size"`
		Offset   uint64 `json:"offset"`
		Endian   uint8  `json:"endian"`
		Reserved []byte `json:"reserved"`
	}
	writer := NewWriter(binary.BigEndian)
	writer.WriteUint32(48).WriteUint64(1 << 40).WriteUint32(7).WriteUint8(1).WriteBytes([]byte{0, 0, 0})
	reader := NewBytesReader(writer.Bytes(), binary.BigEndian)

	result, err := ExecuteInstructions[header](
		[]Instruction{
			{"size", CreateUint32ReadFunction(reader)},
			{"offset", CreateUint64ReadFunction(reader)},
			{SkipKey, CreateUint32ReadFunction(reader)},
			{"endian", CreateUint8ReadFunction(reader)},
			{"reserved", CreateNBytesReadFunction(reader, 3)},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, header{Size: 48, Offset: 1 << 40, Endian: 1, Reserved: []byte{0, 0, 0}}, *result)

	_, err = ExecuteInstructions[header](
		[]Instruction{
			{"size", CreateUint32ReadFunction(reader)},
		},
	)
	assert.Error(t, err)
}
