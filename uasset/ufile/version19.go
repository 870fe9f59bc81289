package ufile

import (
	"github.com/pkg/errors"

	"unity-viewer/uasset/ubytes"
)

// formatV19 reads formats 19 to 21. Schema nodes carry a ref type hash,
// 20 adds the ref type table for managed references, and 21 stores type
// dependencies per type and the class name of each ref type.
type formatV19 struct {
	contents
}

func parseV19(header Header, reader *ubytes.Reader) (Serialized, error) {
	f := formatV19{contents: contents{header: header}}
	var err error
	if f.unityVersion, err = reader.ReadNullString(); err != nil {
		return nil, errors.Wrap(err, "parseV19 error reading unity version")
	}
	platform, err := reader.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "parseV19 error reading target platform")
	}
	f.targetPlatform = BuildTarget(platform)
	if f.enableTypeTree, err = reader.ReadBool(); err != nil {
		return nil, errors.Wrap(err, "parseV19 error reading type tree flag")
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
	if header.Version >= 20 {
		if f.refTypes, err = readList(reader, "ref types", func() (SerializedType, error) {
			return f.readType(reader, true)
		}); err != nil {
			return nil, err
		}
	}
	if err := f.readUserInformation(reader); err != nil {
		return nil, err
	}

	return &f, nil
}

func (r *formatV19) readType(reader *ubytes.Reader, isRefType bool) (SerializedType, error) {
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
	if r.header.Version < 21 {
		return t, nil
	}
	if isRefType {
		return readRefTypeNames(reader, t)
	}
	t.TypeDependencies, err = readTypeDependencies(reader)
	return t, err
}

func (r *formatV19) readObject(reader *ubytes.Reader) (ObjectMetadata, error) {
	meta := ObjectMetadata{}
	if err := reader.Align(4); err != nil {
		return meta, err
	}
	var err error
	if meta.PathID, err = reader.ReadLong(); err != nil {
		return meta, err
	}
	byteStart, err := reader.ReadUint32()
	if err != nil {
		return meta, err
	}
	meta.ByteStart = r.header.DataOffset + uint64(byteStart)
	if meta.ByteSize, err = reader.ReadUint32(); err != nil {
		return meta, err
	}
	return resolveTypeID(reader, r.types, meta)
}

func readRefTypeNames(reader *ubytes.Reader, t SerializedType) (SerializedType, error) {
	var err error
	if t.ClassName, err = reader.ReadNullString(); err != nil {
		return t, err
	}
	if t.Namespace, err = reader.ReadNullString(); err != nil {
		return t, err
	}
	t.AssemblyName, err = reader.ReadNullString()
	return t, err
}

func readTypeDependencies(reader *ubytes.Reader) ([]int32, error) {
	return readList(reader, "type dependencies", reader.ReadInt)
}
