package cli

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unity-viewer/internal/fixture"
	"unity-viewer/uasset/uerr"
)

func bundleFile() fixture.File {
	order := binary.LittleEndian
	return fixture.File{
		Version:      19,
		UnityVersion: "2019.4.0f1",
		Platform:     5,
		Types: []fixture.Type{
			{ClassID: 49, Fields: fixture.TextAssetFields(), ScriptTypeIndex: -1},
			{ClassID: 142, Fields: fixture.AssetBundleFields(), ScriptTypeIndex: -1},
		},
		Objects: []fixture.Object{
			{PathID: 2, ClassID: 142, TypeIndex: 1, Data: fixture.AssetBundleData(order, "bundle", []fixture.ContainerEntry{
				{Path: "assets/docs/readme.txt", FileID: 0, PathID: 7},
				{Path: "assets/notes.txt", FileID: 1, PathID: 1},
			})},
			{PathID: 7, ClassID: 49, TypeIndex: 0, Data: fixture.TextAssetData(order, "readme", "read me")},
		},
		Externals: []fixture.External{
			{PathName: "archive:/CAB-0/level0"},
			{PathName: "library/unity default resources", GUID: [16]byte{0: 0xde, 15: 0xef}, Type: 3},
		},
	}
}

func newRunner(t *testing.T) (Runner, *bytes.Buffer) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/level0", fixture.ScriptedFile().Build(), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/bundle", bundleFile().Build(), 0o644))
	out := bytes.Buffer{}
	return Runner{Fs: fs, Out: &out}, &out
}

func TestRun_List(t *testing.T) {
	runner, out := newRunner(t)

	require.NoError(t, runner.Run(Args{DataDir: "/data", List: &ListCmd{}}))
	assert.Equal(t,
		"assets/docs/readme.txt\tbundle\t7\n"+
			"assets/notes.txt\tlevel0\t1\n"+
			"classes:\n"+
			"  TextAsset\t2\n"+
			"  MonoBehaviour\t1\n"+
			"  MonoScript\t1\n"+
			"  AssetBundle\t1\n"+
			"scripts:\n"+
			"  PlayerController\n",
		out.String(),
	)

	out.Reset()
	require.NoError(t, runner.Run(Args{DataDir: "/data", List: &ListCmd{Containers: true, Filter: "assets/docs"}}))
	assert.Equal(t, "assets/docs/readme.txt\tbundle\t7\n", out.String())

	out.Reset()
	require.NoError(t, runner.Run(Args{DataDir: "/data", List: &ListCmd{Class: "TextAsset"}}))
	assert.Equal(t, "bundle\t7\tassets/docs/readme.txt\nlevel0\t1\tassets/notes.txt\n", out.String())

	out.Reset()
	require.NoError(t, runner.Run(Args{DataDir: "/data", List: &ListCmd{JSON: true}}))
	assert.Contains(t, out.String(), `"format_version": 19`)
	assert.Contains(t, out.String(), `"format_version": 17`)
}

func TestRun_Dump(t *testing.T) {
	runner, out := newRunner(t)

	require.NoError(t, runner.Run(Args{DataDir: "/data", Dump: &DumpCmd{ObjectArgs: ObjectArgs{PathID: 3}}}))
	assert.Contains(t, out.String(), `"m_PathID": 4`)
	assert.Contains(t, out.String(), `"m_Name": "player"`)

	dump := &DumpCmd{ObjectArgs: ObjectArgs{File: "bundle", PathID: 7}, To: "/out/readme.json"}
	require.NoError(t, runner.Run(Args{DataDir: "/data", Dump: dump}))
	bs, err := afero.ReadFile(runner.Fs, "/out/readme.json")
	require.NoError(t, err)
	assert.Contains(t, string(bs), `"m_Script": "read me"`)

	assert.Error(t, runner.Run(Args{DataDir: "/data", Dump: dump}))
	dump.Force = true
	assert.NoError(t, runner.Run(Args{DataDir: "/data", Dump: dump}))

	err = runner.Run(Args{DataDir: "/data", Dump: &DumpCmd{ObjectArgs: ObjectArgs{PathID: 99}}})
	assert.True(t, errors.Is(err, uerr.ErrPathIDNotFound))
	err = runner.Run(Args{DataDir: "/data", Dump: &DumpCmd{ObjectArgs: ObjectArgs{File: "nope", PathID: 1}}})
	assert.True(t, errors.Is(err, uerr.ErrSerializedFileNotFound))
}

func TestRun_QueryAndSchema(t *testing.T) {
	runner, out := newRunner(t)

	query := &QueryCmd{ObjectArgs: ObjectArgs{PathID: 4}, Expr: "$.m_ClassName"}
	require.NoError(t, runner.Run(Args{DataDir: "/data", Query: query}))
	assert.Equal(t, "\"PlayerController\"\n", out.String())

	out.Reset()
	require.NoError(t, runner.Run(Args{DataDir: "/data", Schema: &SchemaCmd{ObjectArgs{PathID: 4}}}))
	assert.Equal(t,
		"MonoScript Base // ByteSize{-1}\n"+
			"  string m_ClassName // ByteSize{-1} Align\n"+
			"    Array Array // ByteSize{-1} IsArray\n"+
			"      int size // ByteSize{4}\n"+
			"      char data // ByteSize{1}\n",
		out.String(),
	)
}

func TestRun_Externals(t *testing.T) {
	runner, out := newRunner(t)

	require.NoError(t, runner.Run(Args{DataDir: "/data", Externals: &ExternalsCmd{}}))
	assert.Equal(t,
		"bundle\n"+
			"  1: archive:/CAB-0/level0\n"+
			"  2: library/unity default resources {de000000-0000-0000-0000-0000000000ef}\n"+
			"level0\n",
		out.String(),
	)
}

func TestRun_Extract(t *testing.T) {
	runner, out := newRunner(t)

	require.NoError(t, runner.Run(Args{DataDir: "/data", Extract: &ExtractCmd{OutDir: "/out"}}))
	assert.Equal(t, "Extracted 2 files to /out\n", out.String())
	bs, err := afero.ReadFile(runner.Fs, "/out/assets/docs/readme.txt")
	require.NoError(t, err)
	assert.Equal(t, "read me", string(bs))
	bs, err = afero.ReadFile(runner.Fs, "/out/assets/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "text", string(bs))

	out.Reset()
	require.NoError(t, runner.Run(Args{DataDir: "/data", Extract: &ExtractCmd{OutDir: "/out"}}))
	assert.Equal(t, "Extracted 0 files to /out\n", out.String())

	out.Reset()
	require.NoError(t, runner.Run(Args{DataDir: "/data", Extract: &ExtractCmd{OutDir: "/out", Filter: "assets/docs", Force: true}}))
	assert.Equal(t, "Extracted 1 files to /out\n", out.String())
}

func TestRun_LoadErrors(t *testing.T) {
	runner, _ := newRunner(t)

	assert.Error(t, runner.Run(Args{List: &ListCmd{}}))
	assert.Error(t, runner.Run(Args{DataDir: "/data", InfoJSONTar: "/missing.tar.zst", List: &ListCmd{}}))
	assert.Error(t, runner.Run(Args{SerializedFile: []string{"/data/missing"}, List: &ListCmd{}}))

	require.NoError(t, afero.WriteFile(runner.Fs, "/data/notes.txt", []byte("plain text"), 0o644))
	err := runner.Run(Args{SerializedFile: []string{"/data/notes.txt"}, List: &ListCmd{}})
	assert.Equal(t, uerr.KindFormat, uerr.KindOf(err))
}
