// Package fixture builds synthetic serialized files byte by byte, so tests
// of every package can run without binary samples.
package fixture

import (
	"encoding/binary"

	"unity-viewer/ds"
	"unity-viewer/uasset/ubytes"
)

const (
	TypeFlagIsArray    = uint8(0x1)
	MetaFlagAlignBytes = uint32(0x4000)
)

type (
	// Field is one schema node. Level 0 is the root.
	Field struct {
		Type      string
		Name      string
		Level     int
		ByteSize  int32
		TypeFlags uint8
		MetaFlag  uint32
		Version   uint16
	}
	Type struct {
		ClassID         int32
		Fields          []Field
		ScriptTypeIndex int16
		// only written for ref types
		ClassName    string
		Namespace    string
		AssemblyName string
	}
	Object struct {
		PathID  int64
		ClassID int32
		// index into File.Types, -1 for objects without a type entry
		TypeIndex int
		Data      []byte
	}
	External struct {
		GUID     [16]byte
		Type     int32
		PathName string
	}
	Script struct {
		FileIndex int32
		PathID    int64
	}
	File struct {
		Version         uint32
		UnityVersion    string
		Platform        int32
		BigEndian       bool
		DisableTypeTree bool
		BigIDEnabled    bool
		Types           []Type
		Objects         []Object
		Scripts         []Script
		Externals       []External
		RefTypes        []Type
		UserInformation string
	}
)

func F(level int, typeName string, name string, byteSize int32) Field {
	return Field{
		Type:     typeName,
		Name:     name,
		Level:    level,
		ByteSize: byteSize,
		Version:  1,
	}
}

func (f Field) Aligned() Field {
	f.MetaFlag |= MetaFlagAlignBytes
	return f
}

func (f Field) Array() Field {
	f.TypeFlags |= TypeFlagIsArray
	return f
}

// String is the four nodes of an aligned string field at the given level.
func String(level int, name string) []Field {
	return []Field{
		F(level, "string", name, -1).Aligned(),
		F(level+1, "Array", "Array", -1).Array(),
		F(level+2, "int", "size", 4),
		F(level+2, "char", "data", 1),
	}
}

// PPtr is the three nodes of a 64-bit pointer field at the given level.
func PPtr(level int, target string, name string) []Field {
	return []Field{
		F(level, "PPtr<"+target+">", name, 12),
		F(level+1, "int", "m_FileID", 4),
		F(level+1, "SInt64", "m_PathID", 8),
	}
}

func Concat(fieldLists ...[]Field) []Field {
	fields := make([]Field, 0)
	for _, list := range fieldLists {
		fields = append(fields, list...)
	}
	return fields
}

func (f File) order() binary.ByteOrder {
	if f.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Blob encodes fields in the blob schema layout with every string in the
// local buffer.
func Blob(fields []Field, formatVersion uint32, order binary.ByteOrder) []byte {
	strs := ubytes.NewWriter(order)
	offsets := map[string]uint32{}
	offsetOf := func(s string) uint32 {
		if offset, ok := offsets[s]; ok {
			return offset
		}
		offset := uint32(strs.Len())
		strs.WriteNullString(s)
		offsets[s] = offset
		return offset
	}

	nodes := ubytes.NewWriter(order)
	for i, field := range fields {
		nodes.
			WriteUint16(field.Version).
			WriteUint8(uint8(field.Level)).
			WriteUint8(field.TypeFlags).
			WriteUint32(offsetOf(field.Type)).
			WriteUint32(offsetOf(field.Name)).
			WriteInt(field.ByteSize).
			WriteInt(int32(i)).
			WriteUint32(field.MetaFlag)
		if formatVersion >= 19 {
			nodes.WriteUint64(0)
		}
	}

	return ubytes.NewWriter(order).
		WriteInt(int32(len(fields))).
		WriteInt(int32(strs.Len())).
		WriteBytes(nodes.Bytes()).
		WriteBytes(strs.Bytes()).
		Bytes()
}

// Legacy encodes fields in the recursive layout of format 11.
func Legacy(fields []Field, order binary.ByteOrder) []byte {
	w := ubytes.NewWriter(order)
	var write func(i int) int
	write = func(i int) int {
		field := fields[i]
		children := make([]int, 0)
		for j := i + 1; j < len(fields) && fields[j].Level > field.Level; j++ {
			if fields[j].Level == field.Level+1 {
				children = append(children, j)
			}
		}
		w.
			WriteNullString(field.Type).
			WriteNullString(field.Name).
			WriteInt(field.ByteSize).
			WriteInt(int32(i)).
			WriteInt(int32(field.TypeFlags)).
			WriteInt(int32(field.Version)).
			WriteUint32(field.MetaFlag).
			WriteInt(int32(len(children)))
		for _, child := range children {
			write(child)
		}
		return len(children)
	}
	write(0)
	return w.Bytes()
}

func (f File) writeType(w *ubytes.Writer, t Type, isRef bool) {
	v := f.Version
	w.WriteInt(t.ClassID)
	if v >= 16 {
		w.WriteBool(false)
	}
	if v >= 17 {
		w.WriteInt16(t.ScriptTypeIndex)
	}
	if v >= 13 {
		if (isRef && t.ScriptTypeIndex >= 0) || (v < 16 && t.ClassID < 0) || (v >= 16 && t.ClassID == 114) {
			w.WriteBytes(make([]byte, 16))
		}
		w.WriteBytes(make([]byte, 16))
	}
	if f.DisableTypeTree && v >= 13 {
		return
	}
	if v == 11 {
		w.WriteBytes(Legacy(t.Fields, f.order()))
	} else {
		w.WriteBytes(Blob(t.Fields, v, f.order()))
	}
	if v >= 21 {
		if isRef {
			w.WriteNullString(t.ClassName).WriteNullString(t.Namespace).WriteNullString(t.AssemblyName)
		} else {
			w.WriteInt(0)
		}
	}
}

func (f File) headerSize() int {
	if f.Version >= 22 {
		return 48
	}
	return 20
}

// Build lays out header, metadata and object data. Object data starts at a
// 16-byte boundary and each object at an 8-byte boundary.
func (f File) Build() []byte {
	v := f.Version
	meta := ubytes.NewWriter(f.order())
	meta.WriteNullString(f.UnityVersion).WriteInt(f.Platform)
	if v >= 13 {
		meta.WriteBool(!f.DisableTypeTree)
	}
	meta.WriteInt(int32(len(f.Types)))
	for _, t := range f.Types {
		f.writeType(meta, t, false)
	}
	if v < 14 {
		if f.BigIDEnabled {
			meta.WriteInt(1)
		} else {
			meta.WriteInt(0)
		}
	}

	data := ubytes.NewWriter(f.order())
	starts := make([]int, len(f.Objects))
	for i, object := range f.Objects {
		data.Align(8)
		starts[i] = data.Len()
		data.WriteBytes(object.Data)
	}

	// the alignment of wide path ids is relative to the whole file
	base := f.headerSize()
	meta.WriteInt(int32(len(f.Objects)))
	for i, object := range f.Objects {
		switch {
		case v < 14 && f.BigIDEnabled:
			meta.WriteLong(object.PathID)
		case v < 14:
			meta.WriteInt(int32(object.PathID))
		default:
			padding := ds.AlignUp(base+meta.Len(), 4) - (base + meta.Len())
			meta.WriteBytes(make([]byte, padding)).WriteLong(object.PathID)
		}
		if v >= 22 {
			meta.WriteLong(int64(starts[i]))
		} else {
			meta.WriteUint32(uint32(starts[i]))
		}
		meta.WriteUint32(uint32(len(object.Data)))
		if v < 16 {
			meta.WriteInt(object.ClassID)
			meta.WriteUint16(uint16(object.ClassID))
		} else {
			meta.WriteInt(int32(object.TypeIndex))
		}
		if v < 11 {
			meta.WriteUint16(0)
		}
		if v >= 11 && v < 17 {
			meta.WriteInt16(-1)
		}
		if v == 15 || v == 16 {
			meta.WriteUint8(0)
		}
	}

	if v >= 11 {
		meta.WriteInt(int32(len(f.Scripts)))
		for _, script := range f.Scripts {
			meta.WriteInt(script.FileIndex)
			if v < 14 {
				meta.WriteInt(int32(script.PathID))
			} else {
				padding := ds.AlignUp(base+meta.Len(), 4) - (base + meta.Len())
				meta.WriteBytes(make([]byte, padding)).WriteLong(script.PathID)
			}
		}
	}

	meta.WriteInt(int32(len(f.Externals)))
	for _, external := range f.Externals {
		meta.
			WriteNullString("").
			WriteBytes(external.GUID[:]).
			WriteInt(external.Type).
			WriteNullString(external.PathName)
	}

	if v >= 20 {
		meta.WriteInt(int32(len(f.RefTypes)))
		for _, t := range f.RefTypes {
			f.writeType(meta, t, true)
		}
	}
	meta.WriteNullString(f.UserInformation)

	dataOffset := ds.AlignUp(base+meta.Len(), 16)
	fileSize := dataOffset + data.Len()

	header := ubytes.NewWriter(binary.BigEndian)
	header.
		WriteUint32(uint32(meta.Len())).
		WriteUint32(uint32(fileSize)).
		WriteUint32(v).
		WriteUint32(uint32(dataOffset))
	if f.BigEndian {
		header.WriteUint8(1)
	} else {
		header.WriteUint8(0)
	}
	header.WriteBytes(make([]byte, 3))
	if v >= 22 {
		header.
			WriteUint32(uint32(meta.Len())).
			WriteLong(int64(fileSize)).
			WriteLong(int64(dataOffset)).
			WriteLong(0)
	}

	return ubytes.NewWriter(binary.BigEndian).
		WriteBytes(header.Bytes()).
		WriteBytes(meta.Bytes()).
		Align(16).
		WriteBytes(data.Bytes()).
		Bytes()
}

func TextAssetFields() []Field {
	return Concat(
		[]Field{F(0, "TextAsset", "Base", -1)},
		String(1, "m_Name"),
		String(1, "m_Script"),
	)
}

func TextAssetData(order binary.ByteOrder, name string, script string) []byte {
	return ubytes.NewWriter(order).
		WriteString(name).Align(4).
		WriteString(script).Align(4).
		Bytes()
}

// TextAssetFile is a single TextAsset object at path id 1.
func TextAssetFile(version uint32, name string, script string) File {
	return File{
		Version:      version,
		UnityVersion: "2019.4.0f1",
		Platform:     5,
		Types: []Type{{
			ClassID:         49,
			Fields:          TextAssetFields(),
			ScriptTypeIndex: -1,
		}},
		Objects: []Object{{
			PathID:    1,
			ClassID:   49,
			TypeIndex: 0,
			Data:      TextAssetData(binary.LittleEndian, name, script),
		}},
	}
}
