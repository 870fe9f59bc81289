package ufile

import (
	"github.com/pkg/errors"

	"unity-viewer/uasset/ubytes"
	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/utree"
)

// contents holds what every adapter ends up with after parsing. Adapters
// embed it and fill it in their own way.
type contents struct {
	header          Header
	unityVersion    string
	targetPlatform  BuildTarget
	enableTypeTree  bool
	types           []SerializedType
	objects         []ObjectMetadata
	scripts         []ScriptType
	externals       []FileIdentifier
	refTypes        []SerializedType
	userInformation string
}

func (r *contents) Header() Header { return r.header }
func (r *contents) FormatVersion() uint32 { return r.header.Version }
func (r *contents) DataOffset() uint64 { return r.header.DataOffset }
func (r *contents) Endianness() Endianness { return r.header.Endianness }
func (r *contents) UnityVersion() string { return r.unityVersion }
func (r *contents) TargetPlatform() BuildTarget { return r.targetPlatform }
func (r *contents) EnableTypeTree() bool { return r.enableTypeTree }
func (r *contents) Types() []SerializedType { return r.types }
func (r *contents) ObjectsMetadata() []ObjectMetadata { return r.objects }
func (r *contents) ScriptTypes() []ScriptType { return r.scripts }
func (r *contents) Externals() []FileIdentifier { return r.externals }
func (r *contents) RefTypes() []SerializedType { return r.refTypes }
func (r *contents) UserInformation() string { return r.userInformation }

func (r *contents) TypeArgsByTypeID(typeID int) (TypeArgs, bool) {
	if typeID < 0 || typeID >= len(r.types) || r.types[typeID].Tree == nil {
		return TypeArgs{}, false
	}
	return TypeArgs{
		ClassID: r.types[typeID].ClassID,
		Fields:  r.types[typeID].Tree,
	}, true
}

// typeIndexByClassID finds the first type entry of a class, for formats
// where objects name their type by class id.
func (r *contents) typeIndexByClassID(classID int32) int {
	for i, t := range r.types {
		if t.ClassID == classID {
			return i
		}
	}
	return -1
}

// readList reads a 32-bit count and then that many items. Every item takes
// at least one byte, which bounds the count by the bytes left.
func readList[T any](reader *ubytes.Reader, what string, read func() (T, error)) ([]T, error) {
	count, err := reader.ReadCount()
	if err != nil {
		return nil, errors.Wrapf(err, "readList error reading %s count", what)
	}
	if count > reader.Len() {
		return nil, uerr.Formatf(
			"readList", uerr.ErrUnexpectedEOF,
			"%d %s with %d bytes left", count, what, reader.Len(),
		)
	}
	items := make([]T, count)
	for i := range items {
		if items[i], err = read(); err != nil {
			return nil, errors.Wrapf(err, "readList error reading %s %d", what, i)
		}
	}
	return items, nil
}

func readExternal(reader *ubytes.Reader) (FileIdentifier, error) {
	external := FileIdentifier{}
	var err error
	if external.TempEmpty, err = reader.ReadNullString(); err != nil {
		return external, err
	}
	guid, err := reader.ReadBytes(16)
	if err != nil {
		return external, err
	}
	copy(external.GUID[:], guid)
	if external.Type, err = reader.ReadInt(); err != nil {
		return external, err
	}
	if external.PathName, err = reader.ReadNullString(); err != nil {
		return external, err
	}
	return external, nil
}

func readHash(reader *ubytes.Reader) ([]byte, error) {
	return reader.ReadBytes(16)
}

func readBlobTree(reader *ubytes.Reader, version uint32, classID int32) (*utree.Tree, error) {
	tree, err := utree.DecodeBlob(reader, version)
	if err != nil {
		return nil, errors.Wrapf(err, "readBlobTree error reading schema of class %d", classID)
	}
	return tree, nil
}

func (r *contents) readExternals(reader *ubytes.Reader) error {
	var err error
	r.externals, err = readList(reader, "externals", func() (FileIdentifier, error) {
		return readExternal(reader)
	})
	return err
}

func (r *contents) readUserInformation(reader *ubytes.Reader) error {
	var err error
	r.userInformation, err = reader.ReadNullString()
	return errors.Wrap(err, "readUserInformation error")
}
