package ufile

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"unity-viewer/uasset/ubytes"
	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/usource"
)

const (
	headerSize     = 20
	wideHeaderSize = 28
	// from this format on the header carries 64-bit sizes and offsets
	wideHeaderVersion = 22
)

// HeaderSize is the byte length of the header for a format version.
func HeaderSize(version uint32) int64 {
	if version >= wideHeaderVersion {
		return headerSize + wideHeaderSize
	}
	return headerSize
}

// ReadHeader reads the big-endian common header, and its wide extension
// for recent formats.
func ReadHeader(src usource.RangeReader) (*Header, error) {
	if src.Size() < headerSize {
		return nil, uerr.Formatf("ReadHeader", uerr.ErrUnexpectedEOF, "%d bytes cannot hold a header", src.Size())
	}
	bs, err := src.ReadRange(0, headerSize)
	if err != nil {
		return nil, err
	}
	reader := ubytes.NewBytesReader(bs, binary.BigEndian)
	instructions := []ubytes.Instruction{
		{Key: "metadata_size", ReadFunction: ubytes.CreateUint32ReadFunction(reader)},
		{Key: "file_size", ReadFunction: ubytes.CreateUint32ReadFunction(reader)},
		{Key: "version", ReadFunction: ubytes.CreateUint32ReadFunction(reader)},
		{Key: "data_offset", ReadFunction: ubytes.CreateUint32ReadFunction(reader)},
		{Key: "endianness", ReadFunction: ubytes.CreateUint8ReadFunction(reader)},
		{Key: "reserved", ReadFunction: ubytes.CreateNBytesReadFunction(reader, 3)},
	}
	header, err := ubytes.ExecuteInstructions[Header](instructions)
	if err != nil {
		return nil, uerr.Format("ReadHeader", errors.Wrap(err, "common header"))
	}
	if header.Version < wideHeaderVersion {
		return header, nil
	}

	if src.Size() < headerSize+wideHeaderSize {
		return nil, uerr.Formatf("ReadHeader", uerr.ErrUnexpectedEOF, "%d bytes cannot hold a wide header", src.Size())
	}
	bs, err = src.ReadRange(headerSize, wideHeaderSize)
	if err != nil {
		return nil, err
	}
	reader = ubytes.NewBytesReader(bs, binary.BigEndian)
	instructions = []ubytes.Instruction{
		{Key: "metadata_size", ReadFunction: ubytes.CreateUint32ReadFunction(reader)},
		{Key: "file_size", ReadFunction: ubytes.CreateUint64ReadFunction(reader)},
		{Key: "data_offset", ReadFunction: ubytes.CreateUint64ReadFunction(reader)},
		{Key: ubytes.SkipKey, ReadFunction: ubytes.CreateUint64ReadFunction(reader)},
	}
	wide, err := ubytes.ExecuteInstructions[wideHeader](instructions)
	if err != nil {
		return nil, uerr.Format("ReadHeader", errors.Wrap(err, "wide header"))
	}
	header.MetadataSize = wide.MetadataSize
	header.FileSize = wide.FileSize
	header.DataOffset = wide.DataOffset

	return header, nil
}
