package utree

import (
	"bytes"

	"github.com/pkg/errors"

	"unity-viewer/uasset/ubytes"
	"unity-viewer/uasset/uerr"
)

const (
	commonStringFlag  = uint32(0x80000000)
	blobNodeSize      = 24
	legacyNodeMinSize = 2 + 6*4 // two terminators and six 32-bit integers
	maxLegacyDepth    = 128
)

// DecodeBlob reads the blob schema layout: node count, string buffer size,
// the fixed-width nodes and then the string buffer they point into.
func DecodeBlob(reader *ubytes.Reader, formatVersion uint32) (*Tree, error) {
	nodeCount, err := reader.ReadCount()
	if err != nil {
		return nil, errors.Wrap(err, "DecodeBlob error reading node count")
	}
	bufferSize, err := reader.ReadCount()
	if err != nil {
		return nil, errors.Wrap(err, "DecodeBlob error reading string buffer size")
	}
	nodeSize := blobNodeSize
	if formatVersion >= 19 {
		nodeSize += 8
	}
	if int64(nodeCount)*int64(nodeSize)+int64(bufferSize) > int64(reader.Len()) {
		return nil, uerr.Formatf(
			"DecodeBlob", uerr.ErrUnexpectedEOF,
			"%d nodes and %d string bytes need more than %d bytes left", nodeCount, bufferSize, reader.Len(),
		)
	}

	nodes := make([]*Node, nodeCount)
	for i := range nodes {
		node, err := decodeBlobNode(reader, formatVersion)
		if err != nil {
			return nil, errors.Wrapf(err, "DecodeBlob error reading node %d", i)
		}
		nodes[i] = node
	}
	buffer, err := reader.ReadBytes(bufferSize)
	if err != nil {
		return nil, errors.Wrap(err, "DecodeBlob error reading string buffer")
	}

	fields := make([]TypeField, nodeCount)
	for i, node := range nodes {
		if node.Type, err = resolveString(buffer, node.TypeStrOffset); err != nil {
			return nil, errors.Wrapf(err, "DecodeBlob error resolving type of node %d", i)
		}
		if node.FieldName, err = resolveString(buffer, node.NameStrOffset); err != nil {
			return nil, errors.Wrapf(err, "DecodeBlob error resolving name of node %d", i)
		}
		fields[i] = node
	}

	return NewTree(fields)
}

func decodeBlobNode(reader *ubytes.Reader, formatVersion uint32) (*Node, error) {
	node := Node{}
	var err error
	if node.NodeVersion, err = reader.ReadUint16(); err != nil {
		return nil, err
	}
	if node.NodeLevel, err = reader.ReadUint8(); err != nil {
		return nil, err
	}
	if node.NodeTypeFlags, err = reader.ReadUint8(); err != nil {
		return nil, err
	}
	if node.TypeStrOffset, err = reader.ReadUint32(); err != nil {
		return nil, err
	}
	if node.NameStrOffset, err = reader.ReadUint32(); err != nil {
		return nil, err
	}
	if node.NodeByteSize, err = reader.ReadInt(); err != nil {
		return nil, err
	}
	if node.NodeIndex, err = reader.ReadInt(); err != nil {
		return nil, err
	}
	if node.NodeMetaFlag, err = reader.ReadUint32(); err != nil {
		return nil, err
	}
	if formatVersion >= 19 {
		if node.RefTypeHash, err = reader.ReadUint64(); err != nil {
			return nil, err
		}
	}
	return &node, nil
}

func resolveString(buffer []byte, offset uint32) (string, error) {
	if offset&commonStringFlag != 0 {
		value, ok := CommonStringByOffset[offset&^commonStringFlag]
		if !ok {
			return "", uerr.Formatf(
				"resolveString", uerr.ErrInvalidStructure,
				"no common string at offset %d", offset&^commonStringFlag,
			)
		}
		return value, nil
	}
	if int(offset) >= len(buffer) {
		return "", uerr.Formatf(
			"resolveString", uerr.ErrInvalidStructure,
			"offset %d outside of %d string bytes", offset, len(buffer),
		)
	}
	rest := buffer[offset:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", uerr.Formatf("resolveString", uerr.ErrUnexpectedEOF, "unterminated string at %d", offset)
	}
	return string(rest[:end]), nil
}

// DecodeLegacy reads the recursive schema layout, where each node is
// followed by its child count and then its children.
func DecodeLegacy(reader *ubytes.Reader) (*Tree, error) {
	fields := make([]TypeField, 0)
	if err := decodeLegacyNode(reader, 0, &fields); err != nil {
		return nil, err
	}
	return NewTree(fields)
}

func decodeLegacyNode(reader *ubytes.Reader, level int, fields *[]TypeField) error {
	if level > maxLegacyDepth {
		return uerr.Formatf("decodeLegacyNode", uerr.ErrInvalidStructure, "nesting deeper than %d", maxLegacyDepth)
	}
	node := LegacyNode{NodeLevel: level}
	var err error
	if node.Type, err = reader.ReadNullString(); err != nil {
		return err
	}
	if node.FieldName, err = reader.ReadNullString(); err != nil {
		return err
	}
	if node.NodeByteSize, err = reader.ReadInt(); err != nil {
		return err
	}
	if node.NodeIndex, err = reader.ReadInt(); err != nil {
		return err
	}
	if node.NodeTypeFlags, err = reader.ReadInt(); err != nil {
		return err
	}
	if node.NodeVersion, err = reader.ReadInt(); err != nil {
		return err
	}
	if node.NodeMetaFlag, err = reader.ReadUint32(); err != nil {
		return err
	}
	childrenCount, err := reader.ReadCount()
	if err != nil {
		return err
	}
	if int64(childrenCount)*legacyNodeMinSize > int64(reader.Len()) {
		return uerr.Formatf(
			"decodeLegacyNode", uerr.ErrUnexpectedEOF,
			`"%s" claims %d children with %d bytes left`, node.FieldName, childrenCount, reader.Len(),
		)
	}
	*fields = append(*fields, &node)
	for i := 0; i < childrenCount; i++ {
		if err := decodeLegacyNode(reader, level+1, fields); err != nil {
			return errors.Wrapf(err, `decodeLegacyNode error reading child %d of "%s"`, i, node.FieldName)
		}
	}
	return nil
}
