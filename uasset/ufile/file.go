package ufile

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"unity-viewer/logger"
	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/uobject"
	"unity-viewer/uasset/usource"
	"unity-viewer/uasset/utree"
	"unity-viewer/uasset/uversion"
)

// WithDatabase supplies schemas for files stored without a type tree.
func WithDatabase(database *utree.Database) Option {
	return func(f *File) {
		f.database = database
	}
}

// Open parses src and indexes its objects by path id and by class id.
func Open(id int, name string, src usource.RangeReader, options ...Option) (*File, error) {
	serialized, err := Parse(src)
	if err != nil {
		return nil, err
	}
	f := File{
		Serialized: serialized,
		id:         id,
		name:       name,
		source:     src,
		byPathID:   map[int64]int{},
		byClass:    map[int32]*roaring.Bitmap{},
	}
	for _, option := range options {
		option(&f)
	}
	// stripped builds report an unparsable version; only the schema
	// database lookup needs it
	if version, err := uversion.Parse(serialized.UnityVersion()); err == nil {
		f.version = version
	}
	for i, meta := range serialized.ObjectsMetadata() {
		f.byPathID[meta.PathID] = i
		bitmap, ok := f.byClass[meta.ClassID]
		if !ok {
			bitmap = roaring.New()
			f.byClass[meta.ClassID] = bitmap
		}
		bitmap.Add(uint32(i))
	}
	return &f, nil
}

func (r *File) ID() int {
	return r.id
}

func (r *File) Name() string {
	return r.name
}

func (r *File) Source() usource.RangeReader {
	return r.source
}

func (r *File) Version() uversion.Version {
	return r.version
}

func (r *File) String() string {
	return fmt.Sprintf(`File(%d, "%s", format %d, %s)`, r.id, r.name, r.FormatVersion(), r.UnityVersion())
}

func (r *File) Object(pathID int64) (ObjectMetadata, bool) {
	i, ok := r.byPathID[pathID]
	if !ok {
		return ObjectMetadata{}, false
	}
	return r.ObjectsMetadata()[i], true
}

// ClassIDs lists the classes present, in ascending order.
func (r *File) ClassIDs() []int32 {
	classIDs := lo.Keys(r.byClass)
	slices.Sort(classIDs)
	return classIDs
}

// ObjectsByClass lists the objects of one class in file order.
func (r *File) ObjectsByClass(classID int32) []ObjectMetadata {
	bitmap, ok := r.byClass[classID]
	if !ok {
		return nil
	}
	objects := r.ObjectsMetadata()
	return lo.Map(
		bitmap.ToArray(),
		func(i uint32, _ int) ObjectMetadata {
			return objects[i]
		},
	)
}

// CountByClass is the number of objects per class id.
func (r *File) CountByClass() map[int32]uint64 {
	return lo.MapValues(
		r.byClass,
		func(bitmap *roaring.Bitmap, _ int32) uint64 {
			return bitmap.GetCardinality()
		},
	)
}

// Schema picks the embedded type tree of the object's type. The schema
// database is only used by files that carry no type trees.
func (r *File) Schema(meta ObjectMetadata) (*utree.Tree, error) {
	if args, ok := r.TypeArgsByTypeID(meta.TypeID); ok {
		return args.Fields, nil
	}
	if r.EnableTypeTree() {
		return nil, uerr.Schemaf(
			"File.Schema", uerr.ErrSchemaNotFound,
			"class %d of object %d in %s matches no embedded type",
			meta.ClassID, meta.PathID, r.name,
		)
	}
	if r.database == nil {
		return nil, uerr.Schemaf(
			"File.Schema", uerr.ErrSchemaNotFound,
			"class %d of object %d in %s has no type tree and no database is loaded",
			meta.ClassID, meta.PathID, r.name,
		)
	}
	return r.database.Lookup(r.version, meta.ClassID)
}

func (r *File) ObjectData(meta ObjectMetadata) ([]byte, error) {
	return r.source.ReadRange(int64(meta.ByteStart), int64(meta.ByteSize))
}

// RefTypeSchema finds the schema of a managed reference type in the ref
// type table.
func (r *File) RefTypeSchema(class string, namespace string, assembly string) (*utree.Tree, error) {
	refType, ok := lo.Find(
		r.RefTypes(),
		func(t SerializedType) bool {
			return t.ClassName == class && t.Namespace == namespace && t.AssemblyName == assembly
		},
	)
	if !ok || refType.Tree == nil {
		return nil, uerr.Schemaf(
			"File.RefTypeSchema", uerr.ErrSchemaNotFound,
			"no ref type %s.%s in %s of %s", namespace, class, assembly, r.name,
		)
	}
	return refType.Tree, nil
}

// ReadObject decodes the object with the given path id. Nothing is cached.
func (r *File) ReadObject(pathID int64) (*uobject.Object, error) {
	meta, ok := r.Object(pathID)
	if !ok {
		return nil, uerr.Referencef(
			"File.ReadObject", uerr.ErrPathIDNotFound,
			"path id %d in %s", pathID, r.name,
		)
	}
	return r.DecodeObject(meta)
}

func (r *File) DecodeObject(meta ObjectMetadata) (*uobject.Object, error) {
	tree, err := r.Schema(meta)
	if err != nil {
		return nil, err
	}
	data, err := r.ObjectData(meta)
	if err != nil {
		return nil, err
	}
	caller := fmt.Sprintf("%s:%d", r.name, meta.PathID)
	decoder := uobject.NewDecoder(
		tree, data, r.Endianness().Order(),
		uobject.WithRefTypeResolver(r.RefTypeSchema),
		uobject.WithCaller(caller),
	)
	obj, err := decoder.Decode()
	if err != nil {
		// a payload that does not fit its schema breaks the object, not the file
		return nil, uerr.Schema(
			"File.DecodeObject",
			errors.Wrapf(err, "error reading object %d of class %d", meta.PathID, meta.ClassID),
		)
	}
	if decoder.Consumed() != int64(meta.ByteSize) {
		logger.Fields(map[string]any{
			"file":     r.name,
			"path_id":  meta.PathID,
			"class_id": meta.ClassID,
		}).Warnf("decoded %d of %d bytes", decoder.Consumed(), meta.ByteSize)
	}
	return obj, nil
}
