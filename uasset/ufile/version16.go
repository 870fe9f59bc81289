package ufile

import (
	"github.com/pkg/errors"

	"unity-viewer/uasset/ubytes"
	"unity-viewer/uasset/uerr"
)

// formatV16 reads formats 16 to 18. Objects name their type by index into
// the type table, which now holds the class id and, from 17, the script
// type index.
type formatV16 struct {
	contents
}

func parseV16(header Header, reader *ubytes.Reader) (Serialized, error) {
	f := formatV16{contents: contents{header: header}}
	var err error
	if f.unityVersion, err = reader.ReadNullString(); err != nil {
		return nil, errors.Wrap(err, "parseV16 error reading unity version")
	}
	platform, err := reader.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "parseV16 error reading target platform")
	}
	f.targetPlatform = BuildTarget(platform)
	if f.enableTypeTree, err = reader.ReadBool(); err != nil {
		return nil, errors.Wrap(err, "parseV16 error reading type tree flag")
	}

	if f.types, err = readList(reader, "types", func() (SerializedType, error) {
		return f.readType(reader)
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
	if err := f.readUserInformation(reader); err != nil {
		return nil, err
	}

	return &f, nil
}

func (r *formatV16) readType(reader *ubytes.Reader) (SerializedType, error) {
	t := SerializedType{ScriptTypeIndex: -1}
	var err error
	if t.ClassID, err = reader.ReadInt(); err != nil {
		return t, err
	}
	if t.IsStripped, err = reader.ReadBool(); err != nil {
		return t, err
	}
	if r.header.Version >= 17 {
		if t.ScriptTypeIndex, err = reader.ReadInt16(); err != nil {
			return t, err
		}
	}
	if t.ClassID == monoBehaviourClassID {
		if t.ScriptID, err = readHash(reader); err != nil {
			return t, err
		}
	}
	if t.OldTypeHash, err = readHash(reader); err != nil {
		return t, err
	}
	if r.enableTypeTree {
		t.Tree, err = readBlobTree(reader, r.header.Version, t.ClassID)
	}
	return t, err
}

func (r *formatV16) readObject(reader *ubytes.Reader) (ObjectMetadata, error) {
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
	if meta, err = resolveTypeID(reader, r.types, meta); err != nil {
		return meta, err
	}
	if r.header.Version == 16 {
		if meta.ScriptTypeIndex, err = reader.ReadInt16(); err != nil {
			return meta, err
		}
		if meta.Stripped, err = reader.ReadBool(); err != nil {
			return meta, err
		}
	}
	return meta, nil
}

const monoBehaviourClassID = int32(114)

// resolveTypeID reads the type index of an object and takes the class id
// and script type index from the type table.
func resolveTypeID(reader *ubytes.Reader, types []SerializedType, meta ObjectMetadata) (ObjectMetadata, error) {
	typeID, err := reader.ReadInt()
	if err != nil {
		return meta, err
	}
	if typeID < 0 || int(typeID) >= len(types) {
		return meta, uerr.Formatf(
			"resolveTypeID", uerr.ErrInvalidStructure,
			"object %d has type %d of %d", meta.PathID, typeID, len(types),
		)
	}
	meta.TypeID = int(typeID)
	meta.ClassID = types[typeID].ClassID
	meta.ScriptTypeIndex = types[typeID].ScriptTypeIndex
	return meta, nil
}

func readAlignedScript(reader *ubytes.Reader) (ScriptType, error) {
	script := ScriptType{}
	var err error
	if script.LocalSerializedFileIndex, err = reader.ReadInt(); err != nil {
		return script, err
	}
	if err := reader.Align(4); err != nil {
		return script, err
	}
	script.LocalIdentifierInFile, err = reader.ReadLong()
	return script, err
}
