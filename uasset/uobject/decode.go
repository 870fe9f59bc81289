package uobject

import (
	"strings"

	"github.com/pkg/errors"

	"unity-viewer/ds"
	"unity-viewer/logger"
	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/uptr"
	"unity-viewer/uasset/utree"
)

const (
	alignment         = int64(4)
	referencedData    = "ReferencedObjectData"
	referencedTypeKey = "type"
)

// Decode reads one object rooted at the schema's root field. Either the
// whole tree is returned or the first failure.
func (d *Decoder) Decode() (*Object, error) {
	return d.decode(d.tree, 0, nil)
}

// Consumed is the number of payload bytes read so far, alignment included.
func (d *Decoder) Consumed() int64 {
	return d.reader.Pos()
}

func (d *Decoder) decode(tree *utree.Tree, i int, siblings *Map) (*Object, error) {
	field := tree.Field(i)
	children := tree.Children(i)

	var obj *Object
	var err error
	switch {
	case field.TypeFlags().Has(utree.TypeFlagIsArray):
		obj, err = d.decodeArray(tree, i)
	case len(children) == 0:
		obj, err = d.decodeLeaf(tree, i, siblings)
	case field.TypeName() == "string":
		obj, err = d.decodeString(tree, i)
	case field.TypeName() == "TypelessData":
		obj, err = d.decodeTypelessData(tree, i)
	case isPPtr(tree, i):
		obj, err = d.decodePPtr(tree, i)
	case isArrayWrapper(tree, i):
		// vector, map, set and friends hold a single Array child
		obj, err = d.decodeWrapped(tree, i)
	default:
		obj, err = d.decodeStruct(tree, i)
	}
	if err != nil {
		return nil, err
	}

	if field.MetaFlags().Has(utree.MetaFlagAlignBytes) {
		if err := d.reader.Align(alignment); err != nil {
			return nil, errors.Wrapf(err, `%s error aligning after "%s"`, d.caller, field.Name())
		}
	}
	return obj, nil
}

func (d *Decoder) decodeLeaf(tree *utree.Tree, i int, siblings *Map) (*Object, error) {
	field := tree.Field(i)
	if p, ok := primitives[field.TypeName()]; ok {
		if field.ByteSize() != p.width && field.ByteSize() != utree.VariableByteSize {
			logger.DebugMessage(
				`%s: "%s" of type "%s" declares %d bytes, reading %d`,
				d.caller, field.Name(), field.TypeName(), field.ByteSize(), p.width,
			)
		}
		value, err := p.read(d.reader)
		if err != nil {
			return nil, errors.Wrapf(err, `%s error reading "%s"`, d.caller, field.Name())
		}
		return &Object{field: field, kind: p.kind, value: value}, nil
	}
	if field.TypeName() == referencedData {
		return d.decodeReferenced(field, siblings)
	}
	if field.ByteSize() == 0 {
		return &Object{field: field, kind: KindMap, value: ds.NewLinkedHashMap[string, *Object]()}, nil
	}
	return nil, uerr.Schemaf(
		d.caller, uerr.ErrUnsupportedPrimitive,
		`"%s" has type "%s" with %d bytes and no fields`, field.Name(), field.TypeName(), field.ByteSize(),
	)
}

func isByteElement(tree *utree.Tree, i int) bool {
	if len(tree.Children(i)) > 0 {
		return false
	}
	switch tree.Field(i).TypeName() {
	case "UInt8", "SInt8", "char":
		return true
	default:
		return false
	}
}

// decodeArray reads an array field: child 0 holds the count, child 1 is
// the element schema, repeated count times.
func (d *Decoder) decodeArray(tree *utree.Tree, i int) (*Object, error) {
	field := tree.Field(i)
	children := tree.Children(i)
	if len(children) != 2 {
		return nil, uerr.Schemaf(
			d.caller, uerr.ErrInvalidStructure,
			`array "%s" has %d fields instead of 2`, field.Name(), len(children),
		)
	}
	count, err := d.reader.ReadCount()
	if err != nil {
		return nil, errors.Wrapf(err, `%s error reading size of "%s"`, d.caller, field.Name())
	}
	element := children[1]

	if isByteElement(tree, element) {
		bs, err := d.reader.ReadBytes(count)
		if err != nil {
			return nil, errors.Wrapf(err, `%s error reading "%s"`, d.caller, field.Name())
		}
		return &Object{field: field, kind: KindBytes, value: bs}, nil
	}

	// every element but empty structs takes at least one byte
	if tree.Field(element).ByteSize() != 0 && count > d.reader.Len() {
		return nil, uerr.Formatf(
			d.caller, uerr.ErrUnexpectedEOF,
			`"%s" claims %d elements with %d bytes left`, field.Name(), count, d.reader.Len(),
		)
	}
	elements := make([]*Object, count)
	for n := range elements {
		elements[n], err = d.decode(tree, element, nil)
		if err != nil {
			return nil, errors.Wrapf(err, `%s error reading element %d of "%s"`, d.caller, n, field.Name())
		}
	}
	return &Object{field: field, kind: KindArray, value: elements}, nil
}

// decodeString reads a string field: a byte array under its Array child.
func (d *Decoder) decodeString(tree *utree.Tree, i int) (*Object, error) {
	field := tree.Field(i)
	array := tree.Children(i)[0]
	count, err := d.reader.ReadCount()
	if err != nil {
		return nil, errors.Wrapf(err, `%s error reading length of "%s"`, d.caller, field.Name())
	}
	bs, err := d.reader.ReadBytes(count)
	if err != nil {
		return nil, errors.Wrapf(err, `%s error reading "%s"`, d.caller, field.Name())
	}
	if tree.Field(array).MetaFlags().Has(utree.MetaFlagAlignBytes) {
		if err := d.reader.Align(alignment); err != nil {
			return nil, err
		}
	}
	return &Object{field: field, kind: KindString, value: string(bs)}, nil
}

func (d *Decoder) decodeTypelessData(tree *utree.Tree, i int) (*Object, error) {
	field := tree.Field(i)
	count, err := d.reader.ReadCount()
	if err != nil {
		return nil, errors.Wrapf(err, `%s error reading size of "%s"`, d.caller, field.Name())
	}
	bs, err := d.reader.ReadBytes(count)
	if err != nil {
		return nil, errors.Wrapf(err, `%s error reading "%s"`, d.caller, field.Name())
	}
	return &Object{field: field, kind: KindBytes, value: bs}, nil
}

func isPPtr(tree *utree.Tree, i int) bool {
	if !strings.HasPrefix(tree.Field(i).TypeName(), "PPtr<") {
		return false
	}
	children := tree.Children(i)
	return len(children) == 2 &&
		tree.Field(children[0]).Name() == "m_FileID" &&
		tree.Field(children[1]).Name() == "m_PathID"
}

func (d *Decoder) decodePPtr(tree *utree.Tree, i int) (*Object, error) {
	children := tree.Children(i)
	ids := make([]int64, len(children))
	for n, child := range children {
		obj, err := d.decode(tree, child, nil)
		if err != nil {
			return nil, err
		}
		if ids[n], err = obj.Int64(); err != nil {
			return nil, errors.Wrapf(err, `%s error reading pointer "%s"`, d.caller, tree.Field(i).Name())
		}
	}
	return &Object{
		field: tree.Field(i),
		kind:  KindPPtr,
		value: uptr.PPtr{FileID: ids[0], PathID: ids[1]},
	}, nil
}

func isArrayWrapper(tree *utree.Tree, i int) bool {
	children := tree.Children(i)
	return len(children) == 1 &&
		tree.Field(children[0]).TypeFlags().Has(utree.TypeFlagIsArray) &&
		tree.Field(children[0]).TypeName() == "Array"
}

func (d *Decoder) decodeWrapped(tree *utree.Tree, i int) (*Object, error) {
	array := tree.Children(i)[0]
	obj, err := d.decodeArray(tree, array)
	if err != nil {
		return nil, err
	}
	if tree.Field(array).MetaFlags().Has(utree.MetaFlagAlignBytes) {
		if err := d.reader.Align(alignment); err != nil {
			return nil, errors.Wrapf(err, `%s error aligning after "%s"`, d.caller, tree.Field(i).Name())
		}
	}
	obj.field = tree.Field(i)
	return obj, nil
}

func (d *Decoder) decodeStruct(tree *utree.Tree, i int) (*Object, error) {
	fields := ds.NewLinkedHashMap[string, *Object]()
	for _, child := range tree.Children(i) {
		obj, err := d.decode(tree, child, fields)
		if err != nil {
			return nil, errors.Wrapf(err, `%s error reading "%s"`, d.caller, tree.Field(i).Name())
		}
		fields.Put(tree.Field(child).Name(), obj)
	}
	return &Object{field: tree.Field(i), kind: KindMap, value: fields}, nil
}

// decodeReferenced reads managed reference data with the schema named by
// the "type" field decoded just before it.
func (d *Decoder) decodeReferenced(field utree.TypeField, siblings *Map) (*Object, error) {
	empty := &Object{field: field, kind: KindMap, value: ds.NewLinkedHashMap[string, *Object]()}
	if siblings == nil {
		return nil, uerr.Schemaf(d.caller, uerr.ErrWrongShape, `"%s" outside of a structure`, field.Name())
	}
	typeObj, ok := siblings.Get(referencedTypeKey)
	if !ok {
		return nil, uerr.Schemaf(d.caller, uerr.ErrWrongShape, `"%s" without a sibling "type"`, field.Name())
	}
	names := make([]string, 3)
	for n, key := range []string{"class", "ns", "asm"} {
		value, err := GetAs[string](typeObj, "/"+typeObj.Name()+"/"+key)
		if err != nil {
			return nil, err
		}
		names[n] = value
	}
	// the terminator entry of a reference registry has no class
	if names[0] == "" {
		return empty, nil
	}
	if d.resolver == nil {
		return nil, uerr.Schemaf(
			d.caller, uerr.ErrSchemaNotFound,
			"no ref type table to resolve %s.%s in %s", names[1], names[0], names[2],
		)
	}
	refTree, err := d.resolver(names[0], names[1], names[2])
	if err != nil {
		return nil, err
	}
	obj, err := d.decode(refTree, 0, nil)
	if err != nil {
		return nil, errors.Wrapf(err, `%s error reading referenced %s.%s`, d.caller, names[1], names[0])
	}
	obj.field = field
	return obj, nil
}
