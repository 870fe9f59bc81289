// Package utree models the per-class schema: a flat, level-tagged list of
// type fields from one of three sources (the blob layout, the legacy
// recursive layout, the InfoJson database), arranged into a Tree.
package utree

type (
	TypeFlag uint32
	MetaFlag uint32

	// TypeField is one node of a class schema.
	TypeField interface {
		TypeName() string
		Name() string
		Level() int
		ByteSize() int32
		Index() int32
		Version() int32
		TypeFlags() TypeFlag
		MetaFlags() MetaFlag
	}

	// Node comes from the blob layout embedded in serialized files.
	Node struct {
		NodeVersion   uint16
		NodeLevel     uint8
		NodeTypeFlags uint8
		TypeStrOffset uint32
		NameStrOffset uint32
		NodeByteSize  int32
		NodeIndex     int32
		NodeMetaFlag  uint32
		RefTypeHash   uint64
		Type          string
		FieldName     string
	}
	// LegacyNode comes from the recursive layout of format 11.
	LegacyNode struct {
		Type          string
		FieldName     string
		NodeByteSize  int32
		NodeIndex     int32
		NodeTypeFlags int32
		NodeVersion   int32
		NodeMetaFlag  uint32
		NodeLevel     int
	}
	// JSONNode comes from an InfoJson dump. Children are nested in SubNodes
	// and get flattened before building a Tree.
	JSONNode struct {
		JSONTypeName  string     `json:"TypeName"`
		JSONName      string     `json:"Name"`
		JSONLevel     int        `json:"Level"`
		JSONByteSize  int32      `json:"ByteSize"`
		JSONIndex     int32      `json:"Index"`
		JSONVersion   int32      `json:"Version"`
		JSONTypeFlags uint32     `json:"TypeFlags"`
		JSONMetaFlag  uint32     `json:"MetaFlag"`
		SubNodes      []JSONNode `json:"SubNodes"`
	}

	// Tree is an arena over a flat field list: children[i] lists the indexes
	// of the direct children of field i, in order.
	Tree struct {
		fields   []TypeField
		children [][]int
	}
)

const (
	TypeFlagIsArray       = TypeFlag(0x1)
	TypeFlagIsRef         = TypeFlag(0x2)
	TypeFlagIsRegistry    = TypeFlag(0x4)
	TypeFlagIsArrayOfRefs = TypeFlag(0x8)
)

const (
	MetaFlagInvisible          = MetaFlag(0x1)
	MetaFlagIsBool             = MetaFlag(0x100)
	MetaFlagIsTransientArray   = MetaFlag(0x400)
	MetaFlagAlignBytes         = MetaFlag(0x4000)
	MetaFlagAnyChildAligns     = MetaFlag(0x8000)
	MetaFlagIgnoreInMetaFiles  = MetaFlag(0x80000)
	MetaFlagHasFixedBufferSize = MetaFlag(0x08000000)
)

// VariableByteSize marks fields whose encoded size depends on the payload.
const VariableByteSize = int32(-1)

func (f TypeFlag) Has(flag TypeFlag) bool {
	return f&flag != 0
}

func (f MetaFlag) Has(flag MetaFlag) bool {
	return f&flag != 0
}

func (r *Node) TypeName() string { return r.Type }
func (r *Node) Name() string { return r.FieldName }
func (r *Node) Level() int { return int(r.NodeLevel) }
func (r *Node) ByteSize() int32 { return r.NodeByteSize }
func (r *Node) Index() int32 { return r.NodeIndex }
func (r *Node) Version() int32 { return int32(r.NodeVersion) }
func (r *Node) TypeFlags() TypeFlag { return TypeFlag(r.NodeTypeFlags) }
func (r *Node) MetaFlags() MetaFlag { return MetaFlag(r.NodeMetaFlag) }

func (r *LegacyNode) TypeName() string { return r.Type }
func (r *LegacyNode) Name() string { return r.FieldName }
func (r *LegacyNode) Level() int { return r.NodeLevel }
func (r *LegacyNode) ByteSize() int32 { return r.NodeByteSize }
func (r *LegacyNode) Index() int32 { return r.NodeIndex }
func (r *LegacyNode) Version() int32 { return r.NodeVersion }
func (r *LegacyNode) TypeFlags() TypeFlag { return TypeFlag(r.NodeTypeFlags) }
func (r *LegacyNode) MetaFlags() MetaFlag { return MetaFlag(r.NodeMetaFlag) }

func (r *JSONNode) TypeName() string { return r.JSONTypeName }
func (r *JSONNode) Name() string { return r.JSONName }
func (r *JSONNode) Level() int { return r.JSONLevel }
func (r *JSONNode) ByteSize() int32 { return r.JSONByteSize }
func (r *JSONNode) Index() int32 { return r.JSONIndex }
func (r *JSONNode) Version() int32 { return r.JSONVersion }
func (r *JSONNode) TypeFlags() TypeFlag { return TypeFlag(r.JSONTypeFlags) }
func (r *JSONNode) MetaFlags() MetaFlag { return MetaFlag(r.JSONMetaFlag) }
