package uobject

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unity-viewer/ds"
	"unity-viewer/internal/fixture"
	"unity-viewer/uasset/ubytes"
	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/uptr"
	"unity-viewer/uasset/utree"
)

var le = binary.LittleEndian

func mustTree(t *testing.T, fields ...[]fixture.Field) *utree.Tree {
	bs := fixture.Blob(fixture.Concat(fields...), 19, le)
	tree, err := utree.DecodeBlob(ubytes.NewBytesReader(bs, le), 19)
	require.NoError(t, err)
	return tree
}

func base(typeName string) []fixture.Field {
	return []fixture.Field{fixture.F(0, typeName, "Base", -1)}
}

func TestDecode_TextAsset(t *testing.T) {
	tree := mustTree(t, fixture.TextAssetFields())
	data := fixture.TextAssetData(le, "clip", "hello")

	decoder := NewDecoder(tree, data, le)
	obj, err := decoder.Decode()
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), decoder.Consumed())
	assert.Equal(t, KindMap, obj.Kind())
	assert.Equal(t, "TextAsset", obj.TypeName())

	script, err := GetAs[string](obj, "/Base/m_Script")
	require.NoError(t, err)
	assert.Equal(t, "hello", script)
	name, err := GetAs[string](obj, "Base/m_Name")
	require.NoError(t, err)
	assert.Equal(t, "clip", name)

	fields, err := obj.AsMap()
	require.NoError(t, err)
	assert.Equal(t, []string{"m_Name", "m_Script"}, fields.Keys())
}

func TestDecode_Primitives(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		tree := mustTree(t,
			base("Primitives"),
			[]fixture.Field{
				fixture.F(1, "SInt8", "i8", 1),
				fixture.F(1, "UInt8", "u8", 1),
				fixture.F(1, "SInt16", "i16", 2),
				fixture.F(1, "unsigned short", "u16", 2),
				fixture.F(1, "int", "i32", 4),
				fixture.F(1, "UInt32", "u32", 4),
				fixture.F(1, "SInt64", "i64", 8),
				fixture.F(1, "FileSize", "u64", 8),
				fixture.F(1, "float", "f32", 4),
				fixture.F(1, "double", "f64", 8),
				fixture.F(1, "bool", "b", 1),
			},
		)
		data := ubytes.NewWriter(order).
			WriteUint8(0xFF).
			WriteUint8(200).
			WriteInt16(-300).
			WriteUint16(60000).
			WriteInt(-70000).
			WriteUint32(4000000000).
			WriteLong(-1 << 40).
			WriteUint64(math.MaxUint64).
			WriteFloat32(1.5).
			WriteFloat64(-2.25).
			WriteBool(true).
			Bytes()

		obj, err := NewDecoder(tree, data, order).Decode()
		require.NoError(t, err)
		expected := map[string]any{
			"i8":  int8(-1),
			"u8":  uint8(200),
			"i16": int16(-300),
			"u16": uint16(60000),
			"i32": int32(-70000),
			"u32": uint32(4000000000),
			"i64": int64(-1 << 40),
			"u64": uint64(math.MaxUint64),
			"f32": float32(1.5),
			"f64": float64(-2.25),
			"b":   true,
		}
		for name, value := range expected {
			found, err := obj.Get("/Base/" + name)
			require.NoError(t, err)
			assert.Equal(t, value, found.Value(), name)
		}

		i8, err := GetAs[int8](obj, "/Base/i8")
		require.NoError(t, err)
		assert.Equal(t, int8(-1), i8)
		_, err = GetAs[int32](obj, "/Base/i8")
		assert.True(t, errors.Is(err, uerr.ErrWrongShape))
	}
}

// An aligned element inside an array is padded independently, relative to
// the start of the payload rather than the start of the array.
func TestDecode_AlignmentInsideArray(t *testing.T) {
	tree := mustTree(t,
		base("Aligned"),
		[]fixture.Field{
			fixture.F(1, "UInt8", "m_Head", 1),
			fixture.F(1, "vector", "m_Items", -1),
			fixture.F(2, "Array", "Array", -1).Array(),
			fixture.F(3, "int", "size", 4),
			fixture.F(3, "Item", "data", -1).Aligned(),
			fixture.F(4, "bool", "m_On", 1),
			fixture.F(1, "int", "m_After", 4),
		},
	)

	for n := 0; n <= 6; n++ {
		w := ubytes.NewWriter(le).WriteUint8(9).WriteInt(int32(n))
		for i := 0; i < n; i++ {
			w.WriteBool(i%2 == 0).Align(4)
		}
		w.WriteInt(77)
		data := w.Bytes()

		expected := int64(5)
		for i := 0; i < n; i++ {
			expected = ds.AlignUp(expected+1, 4)
		}
		expected += 4

		decoder := NewDecoder(tree, data, le)
		obj, err := decoder.Decode()
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, expected, decoder.Consumed(), "n=%d", n)
		assert.Equal(t, int64(len(data)), decoder.Consumed(), "n=%d", n)

		items, err := GetAs[[]*Object](obj, "/Base/m_Items")
		require.NoError(t, err)
		require.Len(t, items, n)
		for i, item := range items {
			on, err := GetAs[bool](item, "/data/m_On")
			require.NoError(t, err)
			assert.Equal(t, i%2 == 0, on)
		}
		after, err := GetAs[int32](obj, "/Base/m_After")
		require.NoError(t, err)
		assert.Equal(t, int32(77), after)
	}
}

func TestDecode_PPtrAndBytes(t *testing.T) {
	tree := mustTree(t,
		base("Holder"),
		fixture.PPtr(1, "GameObject", "m_GameObject"),
		[]fixture.Field{
			fixture.F(1, "vector", "m_Data", -1),
			fixture.F(2, "Array", "Array", -1).Array().Aligned(),
			fixture.F(3, "int", "size", 4),
			fixture.F(3, "UInt8", "data", 1),
			fixture.F(1, "TypelessData", "image data", -1),
			fixture.F(2, "int", "size", 4),
			fixture.F(2, "UInt8", "data", 1),
			fixture.F(1, "Empty", "m_Nothing", 0),
		},
	)
	data := ubytes.NewWriter(le).
		WriteInt(1).WriteLong(1000).
		WriteInt(3).WriteBytes([]byte{1, 2, 3}).Align(4).
		WriteInt(2).WriteBytes([]byte{9, 8}).
		Bytes()

	decoder := NewDecoder(tree, data, le)
	obj, err := decoder.Decode()
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), decoder.Consumed())

	ptr, err := GetAs[uptr.PPtr](obj, "/Base/m_GameObject")
	require.NoError(t, err)
	assert.Equal(t, uptr.PPtr{FileID: 1, PathID: 1000}, ptr)

	bs, err := GetAs[[]byte](obj, "/Base/m_Data")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, bs)

	image, err := obj.Get("/Base/image data")
	require.NoError(t, err)
	assert.Equal(t, KindBytes, image.Kind())
	assert.Equal(t, 2, image.Len())

	nothing, err := obj.Get("/Base/m_Nothing")
	require.NoError(t, err)
	assert.Equal(t, KindMap, nothing.Kind())
	assert.Equal(t, 0, nothing.Len())
}

func TestDecode_Failures(t *testing.T) {
	t.Run("truncated payload", func(t *testing.T) {
		tree := mustTree(t, fixture.TextAssetFields())
		data := fixture.TextAssetData(le, "clip", "hello")
		obj, err := NewDecoder(tree, data[:len(data)-6], le).Decode()
		assert.Nil(t, obj)
		assert.True(t, errors.Is(err, uerr.ErrUnexpectedEOF))
		assert.Equal(t, uerr.KindFormat, uerr.KindOf(err))
	})
	t.Run("huge count", func(t *testing.T) {
		tree := mustTree(t, fixture.TextAssetFields())
		data := ubytes.NewWriter(le).WriteInt(math.MaxInt32).Bytes()
		_, err := NewDecoder(tree, data, le).Decode()
		assert.True(t, errors.Is(err, uerr.ErrUnexpectedEOF))
	})
	t.Run("unknown leaf", func(t *testing.T) {
		tree := mustTree(t, base("Odd"), []fixture.Field{fixture.F(1, "Mystery", "m_X", 4)})
		_, err := NewDecoder(tree, make([]byte, 4), le).Decode()
		assert.True(t, errors.Is(err, uerr.ErrUnsupportedPrimitive))
		assert.Equal(t, uerr.KindSchema, uerr.KindOf(err))
	})
}

func managedFields() []fixture.Field {
	return fixture.Concat(
		base("MonoBehaviour"),
		[]fixture.Field{
			fixture.F(1, "ManagedReferencesRegistry", "references", -1),
			fixture.F(2, "int", "version", 4),
			fixture.F(2, "vector", "RefIds", -1),
			fixture.F(3, "Array", "Array", -1).Array(),
			fixture.F(4, "int", "size", 4),
			fixture.F(4, "ReferencedObject", "data", -1),
			fixture.F(5, "SInt64", "rid", 8),
			fixture.F(5, "ReferencedManagedType", "type", -1),
		},
		fixture.String(6, "class"),
		fixture.String(6, "ns"),
		fixture.String(6, "asm"),
		[]fixture.Field{fixture.F(5, "ReferencedObjectData", "data", 0)},
	)
}

func TestDecode_ManagedReference(t *testing.T) {
	tree := mustTree(t, managedFields())
	refTree := mustTree(t, base("Enemy"), []fixture.Field{fixture.F(1, "int", "m_Health", 4)})

	w := ubytes.NewWriter(le).WriteInt(2).WriteInt(2)
	w.WriteLong(5).
		WriteString("Enemy").Align(4).
		WriteString("Game").Align(4).
		WriteString("Assembly-CSharp").Align(4).
		WriteInt(40)
	w.WriteLong(-2).
		WriteString("").Align(4).
		WriteString("").Align(4).
		WriteString("").Align(4)
	data := w.Bytes()

	calls := 0
	resolver := func(class string, namespace string, assembly string) (*utree.Tree, error) {
		calls++
		assert.Equal(t, []string{"Enemy", "Game", "Assembly-CSharp"}, []string{class, namespace, assembly})
		return refTree, nil
	}
	decoder := NewDecoder(tree, data, le, WithRefTypeResolver(resolver))
	obj, err := decoder.Decode()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(len(data)), decoder.Consumed())

	health, err := GetAs[int32](obj, "/Base/references/RefIds/0/data/m_Health")
	require.NoError(t, err)
	assert.Equal(t, int32(40), health)
	terminator, err := obj.Get("/Base/references/RefIds/1/data")
	require.NoError(t, err)
	assert.Equal(t, 0, terminator.Len())

	_, err = NewDecoder(tree, data, le).Decode()
	assert.True(t, errors.Is(err, uerr.ErrSchemaNotFound))
}

func TestObject_GetErrors(t *testing.T) {
	tree := mustTree(t, fixture.TextAssetFields())
	obj, err := NewDecoder(tree, fixture.TextAssetData(le, "a", "b"), le).Decode()
	require.NoError(t, err)

	for _, path := range []string{"/Other/m_Name", "/Base/m_Missing", "/Base/m_Name/0", "/Base/m_Name/x"} {
		_, err := obj.Get(path)
		assert.True(t, errors.Is(err, uerr.ErrWrongShape), path)
		assert.True(t, uerr.IsRecoverable(err), path)
	}
	_, err = obj.AsArray()
	assert.True(t, errors.Is(err, uerr.ErrWrongShape))
	_, err = obj.Int64()
	assert.True(t, errors.Is(err, uerr.ErrWrongShape))
}

func TestObject_JSON(t *testing.T) {
	tree := mustTree(t,
		base("GameObject"),
		fixture.String(1, "m_Name"),
		[]fixture.Field{
			fixture.F(1, "vector", "m_Component", -1),
			fixture.F(2, "Array", "Array", -1).Array(),
			fixture.F(3, "int", "size", 4),
		},
		fixture.PPtr(3, "Component", "data"),
		[]fixture.Field{fixture.F(1, "float", "m_Weight", 4)},
	)
	data := ubytes.NewWriter(le).
		WriteString("Hero").Align(4).
		WriteInt(2).
		WriteInt(0).WriteLong(3).
		WriteInt(1).WriteLong(44).
		WriteFloat32(0.5).
		Bytes()
	obj, err := NewDecoder(tree, data, le).Decode()
	require.NoError(t, err)

	bs, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(
		t,
		`{"m_Name":"Hero","m_Component":[{"m_FileID":0,"m_PathID":3},{"m_FileID":1,"m_PathID":44}],"m_Weight":0.5}`,
		string(bs),
	)

	results, err := Query(obj, "$.m_Component[*].m_PathID")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3), int64(44)}, results)

	results, err = Query(obj, "$.m_Component[?(@.m_FileID == 1)].m_PathID")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(44)}, results)

	_, err = Query(obj, "$[?(@.x ==")
	assert.Error(t, err)

	assert.Len(t, obj.Children(), 3)
}
