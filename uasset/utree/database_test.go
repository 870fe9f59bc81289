package utree

import (
	"archive/tar"
	"bytes"
	"fmt"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/uversion"
)

const textAssetDump = `{
  "Version": "%s",
  "Classes": [
    {
      "TypeID": 49,
      "Name": "TextAsset",
      "ReleaseRootNode": {
        "TypeName": "TextAsset", "Name": "Base", "Level": 0, "ByteSize": -1,
        "Index": 0, "Version": 1, "TypeFlags": 0, "MetaFlag": 32768,
        "SubNodes": [
          {"TypeName": "string", "Name": "m_Name", "Level": 1, "ByteSize": -1,
           "Index": 1, "Version": 1, "TypeFlags": 0, "MetaFlag": 32768, "SubNodes": [
            {"TypeName": "Array", "Name": "Array", "Level": 2, "ByteSize": -1,
             "Index": 2, "Version": 1, "TypeFlags": 1, "MetaFlag": 16384, "SubNodes": [
              {"TypeName": "int", "Name": "size", "Level": 3, "ByteSize": 4, "Index": 3,
               "Version": 1, "TypeFlags": 0, "MetaFlag": 0, "SubNodes": []},
              {"TypeName": "char", "Name": "data", "Level": 3, "ByteSize": 1, "Index": 4,
               "Version": 1, "TypeFlags": 0, "MetaFlag": 0, "SubNodes": []}
            ]}
          ]}
        ]
      }
    },
    {"TypeID": 2, "Name": "Component", "ReleaseRootNode": null}
  ]
}`

func buildDatabase(t *testing.T, files map[string]string) []byte {
	buf := bytes.Buffer{}
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "InfoJson/", Typeflag: tar.TypeDir, Mode: 0o755}))
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())

	compressed, err := zstd.Compress(nil, buf.Bytes())
	require.NoError(t, err)
	return compressed
}

func TestDatabase_Lookup(t *testing.T) {
	archive := buildDatabase(t, map[string]string{
		"InfoJson/2019.4.0f1.json": fmt.Sprintf(textAssetDump, "2019.4.0f1"),
		"InfoJson/2021.3.1f1.json": fmt.Sprintf(textAssetDump, "2021.3.1f1"),
		"InfoJson/README.md":       "not a dump",
	})
	db, err := OpenDatabase(bytes.NewReader(archive))
	require.NoError(t, err)
	assert.Equal(
		t,
		[]string{"2019.4.0f1", "2021.3.1f1"},
		[]string{db.Versions()[0].String(), db.Versions()[1].String()},
	)

	nearest, ok := db.Nearest(uversion.MustParse("2020.3.5f1"))
	require.True(t, ok)
	assert.Equal(t, "2019.4.0f1", nearest.String())
	nearest, ok = db.Nearest(uversion.MustParse("2021.3.1f1"))
	require.True(t, ok)
	assert.Equal(t, "2021.3.1f1", nearest.String())
	_, ok = db.Nearest(uversion.MustParse("5.6.7f1"))
	assert.False(t, ok)

	tree, err := db.Lookup(uversion.MustParse("2022.1.0f1"), 49)
	require.NoError(t, err)
	assert.Equal(t, 5, tree.Len())
	assert.Equal(t, "m_Name", tree.Field(1).Name())
	assert.True(t, tree.Field(2).TypeFlags().Has(TypeFlagIsArray))

	again, err := db.Lookup(uversion.MustParse("2022.1.0f1"), 49)
	require.NoError(t, err)
	assert.Same(t, tree, again)

	_, err = db.Lookup(uversion.MustParse("2022.1.0f1"), 2)
	assert.True(t, errors.Is(err, uerr.ErrSchemaNotFound))
	assert.Equal(t, uerr.KindSchema, uerr.KindOf(err))

	_, err = db.Lookup(uversion.MustParse("4.7.2f1"), 49)
	assert.True(t, errors.Is(err, uerr.ErrSchemaNotFound))
}

func TestLoadDatabase(t *testing.T) {
	fs := afero.NewMemMapFs()
	archive := buildDatabase(t, map[string]string{
		"InfoJson/2019.4.0f1.json": fmt.Sprintf(textAssetDump, "2019.4.0f1"),
	})
	require.NoError(t, afero.WriteFile(fs, "/db/InfoJson.tar.zst", archive, 0o644))

	db, err := LoadDatabase(fs, "/db/InfoJson.tar.zst")
	require.NoError(t, err)
	assert.Len(t, db.Versions(), 1)

	_, err = LoadDatabase(fs, "/db/missing.tar.zst")
	assert.Error(t, err)
}
