package uasset

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iancoleman/orderedmap"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"unity-viewer/internal/fixture"
	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/ufile"
	"unity-viewer/uasset/usource"
)

type EndToEndTestSuite struct {
	Versions []uint32
	Files    []*ufile.File
	R        *require.Assertions
	suite.Suite
}

func (suite *EndToEndTestSuite) SetupSuite() {
	suite.R = suite.Require()
	suite.Versions = []uint32{10, 11, 14, 17, 19, 22}
	suite.Files = lo.Map(
		suite.Versions,
		func(version uint32, i int) *ufile.File {
			name := fmt.Sprintf("v%d.assets", version)
			f := fixture.TextAssetFile(version, name, "line one\nline two")
			file, err := ufile.Open(i, name, usource.Bytes(f.Build()))
			suite.R.NoError(err)
			return file
		},
	)
}

func (suite *EndToEndTestSuite) TestDecodeJSON() {
	for _, file := range suite.Files {
		bs, err := DecodeJSON(file, 1, false)
		suite.R.NoError(err)

		decoded := orderedmap.New()
		suite.R.NoError(json.Unmarshal(bs, decoded))
		suite.R.Equal([]string{"m_Name", "m_Script"}, decoded.Keys())
		name, _ := decoded.Get("m_Name")
		suite.R.Equal(file.Name(), name)
		script, _ := decoded.Get("m_Script")
		suite.R.Equal("line one\nline two", script)
	}
}

func (suite *EndToEndTestSuite) TestDecodeJSON_Debug() {
	for _, file := range suite.Files {
		bs, err := DecodeJSON(file, 1, true)
		suite.R.NoError(err)

		debugObject := struct {
			Class  string          `json:"class"`
			Schema []string        `json:"schema"`
			Object json.RawMessage `json:"object"`
		}{}
		suite.R.NoError(json.Unmarshal(bs, &debugObject))
		suite.R.Equal("TextAsset", debugObject.Class)
		suite.R.Len(debugObject.Schema, 9)
		suite.R.Equal("TextAsset Base // ByteSize{-1}", debugObject.Schema[0])
		suite.R.Contains(string(debugObject.Object), `"m_Script"`)
	}
}

func (suite *EndToEndTestSuite) TestDecodeJSON_MissingObject() {
	_, err := DecodeJSON(suite.Files[0], 404, false)
	suite.R.True(errors.Is(err, uerr.ErrPathIDNotFound))
	suite.R.Equal(uerr.KindReference, uerr.KindOf(err))
}

func (suite *EndToEndTestSuite) TestSummaryJSON() {
	for i, file := range suite.Files {
		bs, err := SummaryJSON(file)
		suite.R.NoError(err)

		summary := FileSummary{}
		suite.R.NoError(json.Unmarshal(bs, &summary))
		suite.R.Equal(suite.Versions[i], summary.FormatVersion)
		suite.R.Equal("2019.4.0f1", summary.UnityVersion)
		suite.R.Equal("little", summary.Endianness)
		suite.R.Empty(summary.Externals)
		suite.R.Equal(
			[]ObjectSummary{{
				PathID:    1,
				ClassID:   49,
				Class:     "TextAsset",
				ByteStart: file.DataOffset(),
				ByteSize:  file.ObjectsMetadata()[0].ByteSize,
			}},
			summary.Objects,
		)
	}
}

func TestEndToEndTestSuite(t *testing.T) {
	suite.Run(t, new(EndToEndTestSuite))
}
