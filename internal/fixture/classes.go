package fixture

import (
	"encoding/binary"

	"unity-viewer/uasset/ubytes"
)

type ContainerEntry struct {
	Path   string
	FileID int32
	PathID int64
}

// AssetBundleFields is an AssetBundle reduced to its name and container
// map.
func AssetBundleFields() []Field {
	return Concat(
		[]Field{F(0, "AssetBundle", "Base", -1)},
		String(1, "m_Name"),
		[]Field{
			F(1, "map", "m_Container", -1),
			F(2, "Array", "Array", -1).Array(),
			F(3, "int", "size", 4),
			F(3, "pair", "data", -1),
		},
		String(4, "first"),
		[]Field{
			F(4, "AssetInfo", "second", -1),
			F(5, "int", "preloadIndex", 4),
			F(5, "int", "preloadSize", 4),
		},
		PPtr(5, "Object", "asset"),
	)
}

func AssetBundleData(order binary.ByteOrder, name string, entries []ContainerEntry) []byte {
	w := ubytes.NewWriter(order).
		WriteString(name).Align(4).
		WriteInt(int32(len(entries)))
	for _, entry := range entries {
		w.WriteString(entry.Path).Align(4).
			WriteInt(0).
			WriteInt(0).
			WriteInt(entry.FileID).
			WriteLong(entry.PathID)
	}
	return w.Bytes()
}

func MonoBehaviourFields() []Field {
	return Concat(
		[]Field{F(0, "MonoBehaviour", "Base", -1)},
		PPtr(1, "MonoScript", "m_Script"),
		String(1, "m_Name"),
	)
}

func MonoBehaviourData(order binary.ByteOrder, scriptFileID int32, scriptPathID int64, name string) []byte {
	return ubytes.NewWriter(order).
		WriteInt(scriptFileID).WriteLong(scriptPathID).
		WriteString(name).Align(4).
		Bytes()
}

func MonoScriptFields() []Field {
	return Concat(
		[]Field{F(0, "MonoScript", "Base", -1)},
		String(1, "m_ClassName"),
	)
}

func MonoScriptData(order binary.ByteOrder, className string) []byte {
	return ubytes.NewWriter(order).
		WriteString(className).Align(4).
		Bytes()
}

// ScriptedFile is a format 17 file with a text asset at path id 1, a
// MonoBehaviour at 3 whose script is the MonoScript at 4.
func ScriptedFile() File {
	order := binary.LittleEndian
	return File{
		Version:      17,
		UnityVersion: "2019.4.0f1",
		Platform:     5,
		Types: []Type{
			{ClassID: 49, Fields: TextAssetFields(), ScriptTypeIndex: -1},
			{ClassID: 114, Fields: MonoBehaviourFields(), ScriptTypeIndex: -1},
			{ClassID: 115, Fields: MonoScriptFields(), ScriptTypeIndex: -1},
		},
		Objects: []Object{
			{PathID: 1, ClassID: 49, TypeIndex: 0, Data: TextAssetData(order, "notes", "text")},
			{PathID: 3, ClassID: 114, TypeIndex: 1, Data: MonoBehaviourData(order, 0, 4, "player")},
			{PathID: 4, ClassID: 115, TypeIndex: 2, Data: MonoScriptData(order, "PlayerController")},
		},
	}
}
