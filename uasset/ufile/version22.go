package ufile

import (
	"github.com/pkg/errors"

	"unity-viewer/uasset/ubytes"
	"unity-viewer/uasset/uerr"
)

// formatV22 reads format 22, which widens the header and the byte start of
// objects to 64 bits. Everything else is laid out as in 21.
type formatV22 struct {
	contents
}

func parseV22(header Header, reader *ubytes.Reader) (Serialized, error) {
	f := formatV22{contents: contents{header: header}}
	var err error
	if f.unityVersion, err = reader.ReadNullString(); err != nil {
		return nil, errors.Wrap(err, "parseV22 error reading unity version")
	}
	platform, err := reader.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "parseV22 error reading target platform")
	}
	f.targetPlatform = BuildTarget(platform)
	if f.enableTypeTree, err = reader.ReadBool(); err != nil {
		return nil, errors.Wrap(err, "parseV22 error reading type tree flag")
	}

	if f.types, err = readList(reader, "types", func() (SerializedType, error) {
		return f.readType(reader, false)
	}); err != nil {
		return nil, err
	}
	if f.objects, err = readList(reader, "objects", func() (ObjectMetadata, error) {
		return f.readObject(reader)
	}); err != nil {
		return nil, err
	}
	if f.scripts, err = readList(reader, "scripts", func() (ScriptType, error) {
		return readAlignedScript(reader)
	}); err != nil {
		return nil, err
	}
	if err := f.readExternals(reader); err != nil {
		return nil, err
	}
	if f.refTypes, err = readList(reader, "ref types", func() (SerializedType, error) {
		return f.readType(reader, true)
	}); err != nil {
		return nil, err
	}
	if err := f.readUserInformation(reader); err != nil {
		return nil, err
	}

	return &f, nil
}

func (r *formatV22) readType(reader *ubytes.Reader, isRefType bool) (SerializedType, error) {
	t := SerializedType{}
	var err error
	if t.ClassID, err = reader.ReadInt(); err != nil {
		return t, err
	}
	if t.IsStripped, err = reader.ReadBool(); err != nil {
		return t, err
	}
	if t.ScriptTypeIndex, err = reader.ReadInt16(); err != nil {
		return t, err
	}
	if (isRefType && t.ScriptTypeIndex >= 0) || t.ClassID == monoBehaviourClassID {
		if t.ScriptID, err = readHash(reader); err != nil {
			return t, err
		}
	}
	if t.OldTypeHash, err = readHash(reader); err != nil {
		return t, err
	}
	if !r.enableTypeTree {
		return t, nil
	}
	if t.Tree, err = readBlobTree(reader, r.header.Version, t.ClassID); err != nil {
		return t, err
	}
	if isRefType {
		return readRefTypeNames(reader, t)
	}
	t.TypeDependencies, err = readTypeDependencies(reader)
	return t, err
}

func (r *formatV22) readObject(reader *ubytes.Reader) (ObjectMetadata, error) {
	meta := ObjectMetadata{}
	if err := reader.Align(4); err != nil {
		return meta, err
	}
	var err error
	if meta.PathID, err = reader.ReadLong(); err != nil {
		return meta, err
	}
	byteStart, err := reader.ReadLong()
	if err != nil {
		return meta, err
	}
	if byteStart < 0 {
		return meta, uerr.Formatf(
			"formatV22.readObject", uerr.ErrInvalidStructure,
			"negative byte start %d of object %d", byteStart, meta.PathID,
		)
	}
	meta.ByteStart = r.header.DataOffset + uint64(byteStart)
	if meta.ByteSize, err = reader.ReadUint32(); err != nil {
		return meta, err
	}
	return resolveTypeID(reader, r.types, meta)
}
