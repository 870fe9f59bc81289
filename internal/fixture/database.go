package fixture

import (
	"archive/tar"
	"bytes"
	"encoding/json"

	"github.com/DataDog/zstd"
)

type jsonNode struct {
	TypeName  string     `json:"TypeName"`
	Name      string     `json:"Name"`
	Level     int        `json:"Level"`
	ByteSize  int32      `json:"ByteSize"`
	Index     int        `json:"Index"`
	Version   uint16     `json:"Version"`
	TypeFlags uint8      `json:"TypeFlags"`
	MetaFlag  uint32     `json:"MetaFlag"`
	SubNodes  []jsonNode `json:"SubNodes"`
}

func nest(fields []Field, i int) (jsonNode, int) {
	field := fields[i]
	node := jsonNode{
		TypeName:  field.Type,
		Name:      field.Name,
		Level:     field.Level,
		ByteSize:  field.ByteSize,
		Index:     i,
		Version:   field.Version,
		TypeFlags: field.TypeFlags,
		MetaFlag:  field.MetaFlag,
		SubNodes:  []jsonNode{},
	}
	next := i + 1
	for next < len(fields) && fields[next].Level > field.Level {
		child, after := nest(fields, next)
		node.SubNodes = append(node.SubNodes, child)
		next = after
	}
	return node, next
}

// InfoJSON renders one dump document holding the given classes.
func InfoJSON(version string, classes map[int32][]Field) []byte {
	type class struct {
		TypeID          int32    `json:"TypeID"`
		Name            string   `json:"Name"`
		ReleaseRootNode jsonNode `json:"ReleaseRootNode"`
	}
	doc := struct {
		Version string  `json:"Version"`
		Classes []class `json:"Classes"`
	}{Version: version}
	for classID, fields := range classes {
		root, _ := nest(fields, 0)
		doc.Classes = append(doc.Classes, class{TypeID: classID, Name: fields[0].Type, ReleaseRootNode: root})
	}
	bs, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return bs
}

// Database packs dump documents, keyed by engine version, into a
// zstd-compressed tar laid out as InfoJson/<version>.json.
func Database(docs map[string][]byte) []byte {
	buf := bytes.Buffer{}
	tw := tar.NewWriter(&buf)
	for version, doc := range docs {
		header := tar.Header{
			Name:     "InfoJson/" + version + ".json",
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(doc)),
		}
		if err := tw.WriteHeader(&header); err != nil {
			panic(err)
		}
		if _, err := tw.Write(doc); err != nil {
			panic(err)
		}
	}
	if err := tw.Close(); err != nil {
		panic(err)
	}
	compressed, err := zstd.Compress(nil, buf.Bytes())
	if err != nil {
		panic(err)
	}
	return compressed
}
