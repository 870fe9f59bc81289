// Package uobject decodes object payloads against a class schema into a
// tree of typed values.
package uobject

import (
	"encoding/binary"

	"unity-viewer/ds"
	"unity-viewer/uasset/ubytes"
	"unity-viewer/uasset/utree"
)

type (
	Kind int

	// Object is one decoded node. value holds exactly one of: a Go scalar
	// matching Kind, string, []byte, uptr.PPtr, []*Object or
	// *ds.LinkedHashMap[string, *Object].
	Object struct {
		field utree.TypeField
		kind  Kind
		value any
	}
	Map = ds.LinkedHashMap[string, *Object]

	// RefTypeResolver returns the schema of a managed reference type, named
	// by the class, namespace and assembly stored next to its data.
	RefTypeResolver func(class string, namespace string, assembly string) (*utree.Tree, error)

	Decoder struct {
		tree     *utree.Tree
		reader   *ubytes.Reader
		resolver RefTypeResolver
		caller   string
	}
	Option func(d *Decoder)
)

const (
	KindInt8 = Kind(iota)
	KindUInt8
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindBytes
	KindPPtr
	KindArray
	KindMap
)

var kindNames = map[Kind]string{
	KindInt8:    "Int8",
	KindUInt8:   "UInt8",
	KindInt16:   "Int16",
	KindUInt16:  "UInt16",
	KindInt32:   "Int32",
	KindUInt32:  "UInt32",
	KindInt64:   "Int64",
	KindUInt64:  "UInt64",
	KindFloat32: "Float32",
	KindFloat64: "Float64",
	KindBool:    "Bool",
	KindString:  "String",
	KindBytes:   "Bytes",
	KindPPtr:    "PPtr",
	KindArray:   "Array",
	KindMap:     "Map",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type primitive struct {
	kind  Kind
	width int32
	read  func(reader *ubytes.Reader) (any, error)
}

// primitives maps schema type names to their fixed-width reading.
var primitives = map[string]primitive{}

func init() {
	register := func(kind Kind, width int32, read func(reader *ubytes.Reader) (any, error), names ...string) {
		for _, name := range names {
			primitives[name] = primitive{kind: kind, width: width, read: read}
		}
	}
	register(KindInt8, 1, func(r *ubytes.Reader) (any, error) { return r.ReadInt8() }, "SInt8")
	register(KindUInt8, 1, func(r *ubytes.Reader) (any, error) { return r.ReadUint8() }, "UInt8", "char")
	register(KindInt16, 2, func(r *ubytes.Reader) (any, error) { return r.ReadInt16() }, "SInt16", "short")
	register(KindUInt16, 2, func(r *ubytes.Reader) (any, error) { return r.ReadUint16() }, "UInt16", "unsigned short")
	register(KindInt32, 4, func(r *ubytes.Reader) (any, error) { return r.ReadInt() }, "SInt32", "int")
	register(KindUInt32, 4, func(r *ubytes.Reader) (any, error) { return r.ReadUint32() }, "UInt32", "unsigned int", "Type*")
	register(KindInt64, 8, func(r *ubytes.Reader) (any, error) { return r.ReadLong() }, "SInt64", "long long")
	register(KindUInt64, 8, func(r *ubytes.Reader) (any, error) { return r.ReadUint64() }, "UInt64", "unsigned long long", "FileSize")
	register(KindFloat32, 4, func(r *ubytes.Reader) (any, error) { return r.ReadFloat32() }, "float")
	register(KindFloat64, 8, func(r *ubytes.Reader) (any, error) { return r.ReadFloat64() }, "double")
	register(KindBool, 1, func(r *ubytes.Reader) (any, error) { return r.ReadBool() }, "bool")
}

// WithRefTypeResolver enables decoding of managed reference data.
func WithRefTypeResolver(resolver RefTypeResolver) Option {
	return func(d *Decoder) {
		d.resolver = resolver
	}
}

// WithCaller names the decoded object in log messages.
func WithCaller(caller string) Option {
	return func(d *Decoder) {
		d.caller = caller
	}
}

func NewDecoder(tree *utree.Tree, data []byte, order binary.ByteOrder, options ...Option) *Decoder {
	d := Decoder{
		tree:   tree,
		reader: ubytes.NewBytesReader(data, order),
		caller: "Decoder",
	}
	for _, option := range options {
		option(&d)
	}
	return &d
}
