package ufile

import (
	"github.com/pkg/errors"

	"unity-viewer/uasset/ubytes"
	"unity-viewer/uasset/utree"
)

// formatV10 reads formats 10 to 12. The type tree is always present, in
// the recursive layout for 11 and the blob layout otherwise. Objects store
// their class id directly and path ids are 32-bit unless the big id flag
// is set.
type formatV10 struct {
	contents
	bigIDEnabled bool
}

func parseV10(header Header, reader *ubytes.Reader) (Serialized, error) {
	f := formatV10{contents: contents{header: header, enableTypeTree: true}}
	var err error
	if f.unityVersion, err = reader.ReadNullString(); err != nil {
		return nil, errors.Wrap(err, "parseV10 error reading unity version")
	}
	platform, err := reader.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "parseV10 error reading target platform")
	}
	f.targetPlatform = BuildTarget(platform)

	if f.types, err = readList(reader, "types", func() (SerializedType, error) {
		return f.readType(reader)
	}); err != nil {
		return nil, err
	}

	bigIDEnabled, err := reader.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "parseV10 error reading big id flag")
	}
	f.bigIDEnabled = bigIDEnabled != 0

	if f.objects, err = readList(reader, "objects", func() (ObjectMetadata, error) {
		return f.readObject(reader)
	}); err != nil {
		return nil, err
	}

	if header.Version >= 11 {
		if f.scripts, err = readList(reader, "scripts", func() (ScriptType, error) {
			return f.readScript(reader)
		}); err != nil {
			return nil, err
		}
	}
	if err := f.readExternals(reader); err != nil {
		return nil, err
	}
	if err := f.readUserInformation(reader); err != nil {
		return nil, err
	}

	return &f, nil
}

func (r *formatV10) readType(reader *ubytes.Reader) (SerializedType, error) {
	t := SerializedType{ScriptTypeIndex: -1}
	var err error
	if t.ClassID, err = reader.ReadInt(); err != nil {
		return t, err
	}
	if r.header.Version == 11 {
		t.Tree, err = utree.DecodeLegacy(reader)
		if err != nil {
			return t, errors.Wrapf(err, "formatV10.readType error reading schema of class %d", t.ClassID)
		}
		return t, nil
	}
	t.Tree, err = readBlobTree(reader, r.header.Version, t.ClassID)
	return t, err
}

func (r *formatV10) readObject(reader *ubytes.Reader) (ObjectMetadata, error) {
	meta := ObjectMetadata{ScriptTypeIndex: -1}
	if r.bigIDEnabled {
		pathID, err := reader.ReadLong()
		if err != nil {
			return meta, err
		}
		meta.PathID = pathID
	} else {
		pathID, err := reader.ReadInt()
		if err != nil {
			return meta, err
		}
		meta.PathID = int64(pathID)
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

	if r.header.Version < 11 {
		isDestroyed, err := reader.ReadUint16()
		if err != nil {
			return meta, err
		}
		meta.IsDestroyed = isDestroyed != 0
	} else {
		if meta.ScriptTypeIndex, err = reader.ReadInt16(); err != nil {
			return meta, err
		}
	}
	return meta, nil
}

func (r *formatV10) readScript(reader *ubytes.Reader) (ScriptType, error) {
	script := ScriptType{}
	var err error
	if script.LocalSerializedFileIndex, err = reader.ReadInt(); err != nil {
		return script, err
	}
	identifier, err := reader.ReadInt()
	script.LocalIdentifierInFile = int64(identifier)
	return script, err
}
