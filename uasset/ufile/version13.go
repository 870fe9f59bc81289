package ufile

import (
	"github.com/pkg/errors"

	"unity-viewer/uasset/ubytes"
)

// formatV13 reads formats 13 to 15. The type tree may be switched off for
// the whole file, and types carry a hash plus a script id for script
// classes. From 14 on, path ids are always 64-bit and 4-byte aligned.
type formatV13 struct {
	contents
	bigIDEnabled bool
}

func parseV13(header Header, reader *ubytes.Reader) (Serialized, error) {
	f := formatV13{contents: contents{header: header}}
	var err error
	if f.unityVersion, err = reader.ReadNullString(); err != nil {
		return nil, errors.Wrap(err, "parseV13 error reading unity version")
	}
	platform, err := reader.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "parseV13 error reading target platform")
	}
	f.targetPlatform = BuildTarget(platform)
	if f.enableTypeTree, err = reader.ReadBool(); err != nil {
		return nil, errors.Wrap(err, "parseV13 error reading type tree flag")
	}

	if f.types, err = readList(reader, "types", func() (SerializedType, error) {
		return f.readType(reader)
	}); err != nil {
		return nil, err
	}

	if header.Version < 14 {
		bigIDEnabled, err := reader.ReadInt()
		if err != nil {
			return nil, errors.Wrap(err, "parseV13 error reading big id flag")
		}
		f.bigIDEnabled = bigIDEnabled != 0
	}

	if f.objects, err = readList(reader, "objects", func() (ObjectMetadata, error) {
		return f.readObject(reader)
	}); err != nil {
		return nil, err
	}
	if f.scripts, err = readList(reader, "scripts", func() (ScriptType, error) {
		return f.readScript(reader)
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

func (r *formatV13) readType(reader *ubytes.Reader) (SerializedType, error) {
	t := SerializedType{ScriptTypeIndex: -1}
	var err error
	if t.ClassID, err = reader.ReadInt(); err != nil {
		return t, err
	}
	if t.ClassID < 0 {
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

func (r *formatV13) readPathID(reader *ubytes.Reader) (int64, error) {
	if r.header.Version >= 14 {
		if err := reader.Align(4); err != nil {
			return 0, err
		}
		return reader.ReadLong()
	}
	if r.bigIDEnabled {
		return reader.ReadLong()
	}
	pathID, err := reader.ReadInt()
	return int64(pathID), err
}

func (r *formatV13) readObject(reader *ubytes.Reader) (ObjectMetadata, error) {
	meta := ObjectMetadata{}
	var err error
	if meta.PathID, err = r.readPathID(reader); err != nil {
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
	typeID, err := reader.ReadInt()
	if err != nil {
		return meta, err
	}
	classID, err := reader.ReadUint16()
	if err != nil {
		return meta, err
	}
	meta.ClassID = int32(classID)
	meta.TypeID = r.typeIndexByClassID(typeID)
	if meta.ScriptTypeIndex, err = reader.ReadInt16(); err != nil {
		return meta, err
	}
	if r.header.Version == 15 {
		if meta.Stripped, err = reader.ReadBool(); err != nil {
			return meta, err
		}
	}
	return meta, nil
}

func (r *formatV13) readScript(reader *ubytes.Reader) (ScriptType, error) {
	script := ScriptType{}
	var err error
	if script.LocalSerializedFileIndex, err = reader.ReadInt(); err != nil {
		return script, err
	}
	if r.header.Version >= 14 {
		if err := reader.Align(4); err != nil {
			return script, err
		}
		script.LocalIdentifierInFile, err = reader.ReadLong()
		return script, err
	}
	identifier, err := reader.ReadInt()
	script.LocalIdentifierInFile = int64(identifier)
	return script, err
}
