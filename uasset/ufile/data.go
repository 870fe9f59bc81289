// Package ufile parses serialized files: the common header, then one
// adapter per range of format versions for the metadata body.
package ufile

import (
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"

	"unity-viewer/uasset/ubytes"
	"unity-viewer/uasset/usource"
	"unity-viewer/uasset/utree"
	"unity-viewer/uasset/uversion"
)

type (
	Endianness  uint8
	BuildTarget int32

	Header struct {
		MetadataSize uint32     `json:"metadata_size"`
		FileSize     uint64     `json:"file_size"`
		Version      uint32     `json:"version"`
		DataOffset   uint64     `json:"data_offset"`
		Endianness   Endianness `json:"endianness"`
		Reserved     []byte     `json:"reserved"`
	}
	wideHeader struct {
		MetadataSize uint32 `json:"metadata_size"`
		FileSize     uint64 `json:"file_size"`
		DataOffset   uint64 `json:"data_offset"`
	}

	// SerializedType is one entry of the type table, or of the ref type
	// table when ClassName is set.
	SerializedType struct {
		ClassID          int32
		IsStripped       bool
		ScriptTypeIndex  int16
		ScriptID         []byte
		OldTypeHash      []byte
		Tree             *utree.Tree
		TypeDependencies []int32
		ClassName        string
		Namespace        string
		AssemblyName     string
	}
	TypeArgs struct {
		ClassID int32
		Fields  *utree.Tree
	}
	// ObjectMetadata locates one object. ByteStart is absolute within the
	// file; TypeID indexes the type table and is -1 when no entry matches.
	ObjectMetadata struct {
		PathID          int64
		ByteStart       uint64
		ByteSize        uint32
		ClassID         int32
		TypeID          int
		IsDestroyed     bool
		ScriptTypeIndex int16
		Stripped        bool
	}
	ScriptType struct {
		LocalSerializedFileIndex int32
		LocalIdentifierInFile    int64
	}
	FileIdentifier struct {
		TempEmpty string
		GUID      [16]byte
		Type      int32
		PathName  string
	}

	// Serialized is what every format adapter exposes once parsed.
	Serialized interface {
		Header() Header
		FormatVersion() uint32
		DataOffset() uint64
		Endianness() Endianness
		UnityVersion() string
		TargetPlatform() BuildTarget
		EnableTypeTree() bool
		Types() []SerializedType
		ObjectsMetadata() []ObjectMetadata
		TypeArgsByTypeID(typeID int) (TypeArgs, bool)
		ScriptTypes() []ScriptType
		Externals() []FileIdentifier
		RefTypes() []SerializedType
		UserInformation() string
	}
	parseFunc func(header Header, reader *ubytes.Reader) (Serialized, error)

	// File is a parsed serialized file registered under a session id.
	File struct {
		Serialized
		id       int
		name     string
		source   usource.RangeReader
		version  uversion.Version
		byPathID map[int64]int
		byClass  map[int32]*roaring.Bitmap
		database *utree.Database
	}
	Option func(f *File)
)

const (
	EndiannessLittle = Endianness(0)
	EndiannessBig    = Endianness(1)
)

func (e Endianness) Order() binary.ByteOrder {
	if e == EndiannessLittle {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// GUIDString formats the asset GUID the way UUIDs are written.
func (r FileIdentifier) GUIDString() string {
	return uuid.UUID(r.GUID).String()
}

func (e Endianness) String() string {
	if e == EndiannessLittle {
		return "little"
	}
	return "big"
}

var buildTargetNames = map[BuildTarget]string{
	-2: "NoTarget",
	2:  "StandaloneOSX",
	5:  "StandaloneWindows",
	9:  "iOS",
	13: "Android",
	19: "StandaloneWindows64",
	20: "WebGL",
	21: "WSAPlayer",
	24: "StandaloneLinux64",
	25: "StandaloneLinuxUniversal",
	31: "PS4",
	33: "XboxOne",
	37: "tvOS",
	38: "Switch",
	44: "GameCoreXboxSeries",
	46: "PS5",
}

func (t BuildTarget) String() string {
	if name, ok := buildTargetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("BuildTarget(%d)", int32(t))
}

// IsRefType tells ref type entries apart from the main type table.
func (t SerializedType) IsRefType() bool {
	return t.ClassName != "" || t.Namespace != "" || t.AssemblyName != ""
}
