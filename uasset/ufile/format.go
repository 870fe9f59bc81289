package ufile

import (
	"io"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"unity-viewer/ds"
	"unity-viewer/logger"
	"unity-viewer/uasset/ubytes"
	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/usource"
)

// formats maps every supported format version to its adapter.
var formats = map[uint32]parseFunc{}

func init() {
	ranges := []struct {
		versions []uint32
		parse    parseFunc
	}{
		{[]uint32{10, 11, 12}, parseV10},
		{[]uint32{13, 14, 15}, parseV13},
		{[]uint32{16, 17, 18}, parseV16},
		{[]uint32{19, 20, 21}, parseV19},
		{[]uint32{22}, parseV22},
	}
	for _, r := range ranges {
		for _, version := range r.versions {
			formats[version] = r.parse
		}
	}
}

// SupportedVersions lists the format versions an adapter exists for.
func SupportedVersions() []uint32 {
	versions := lo.Keys(formats)
	slices.Sort(versions)
	return versions
}

// Probe reads only the header and checks that the rest of the file could
// be parsed: a supported version and a data offset inside the file.
func Probe(src usource.RangeReader) (*Header, error) {
	header, err := ReadHeader(src)
	if err != nil {
		return nil, err
	}
	if _, ok := formats[header.Version]; !ok {
		return nil, uerr.Formatf("Probe", uerr.ErrNoMatchingFormat, "format version %d", header.Version)
	}
	if header.DataOffset < uint64(HeaderSize(header.Version)) || header.DataOffset > uint64(src.Size()) {
		return nil, uerr.Formatf(
			"Probe", uerr.ErrInvalidStructure,
			"data offset %d outside of %d bytes", header.DataOffset, src.Size(),
		)
	}
	if header.Endianness > EndiannessBig {
		return nil, uerr.Formatf("Probe", uerr.ErrInvalidStructure, "endianness byte %d", header.Endianness)
	}
	return header, nil
}

// Parse reads the header and the whole metadata block, which sits between
// the header and the data offset.
func Parse(src usource.RangeReader) (Serialized, error) {
	header, err := Probe(src)
	if err != nil {
		return nil, err
	}
	parse := formats[header.Version]
	logger.TraceMessage("Parse: header %s", ds.DumpJSON(header))

	bs, err := src.ReadRange(0, int64(header.DataOffset))
	if err != nil {
		return nil, err
	}
	reader := ubytes.NewBytesReader(bs, header.Endianness.Order())
	if _, err := reader.Seek(HeaderSize(header.Version), io.SeekStart); err != nil {
		return nil, uerr.Format("Parse", err)
	}
	serialized, err := parse(*header, reader)
	if err != nil {
		return nil, uerr.Format("Parse", errors.Wrapf(err, "format version %d", header.Version))
	}

	for _, meta := range serialized.ObjectsMetadata() {
		end := meta.ByteStart + uint64(meta.ByteSize)
		if meta.ByteStart < header.DataOffset || end > uint64(src.Size()) {
			return nil, uerr.Formatf(
				"Parse", uerr.ErrInvalidStructure,
				"object %d spans [%d, %d) outside of data [%d, %d)",
				meta.PathID, meta.ByteStart, end, header.DataOffset, src.Size(),
			)
		}
	}
	return serialized, nil
}
