package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"unity-viewer/logger"
	"unity-viewer/uasset/usource"
	"unity-viewer/uasset/utree"
	"unity-viewer/uasset/uview"
	"unity-viewer/ui"
)

type (
	Args struct {
		DataDir        string   `arg:"-d,--data-dir" help:"directory searched for serialized files" placeholder:"DIR"`
		SerializedFile []string `arg:"-s,--serialized-file,separate" help:"serialized file, may be repeated" placeholder:"FILE"`
		InfoJSONTar    string   `arg:"-i,--info-json-tar,env:UNITY_VIEWER_INFO_JSON_TAR" help:"zstd tar of InfoJson/<version>.json schema dumps" placeholder:"TAR"`
		LogLevel       string   `arg:"--log-level,env:UNITY_VIEWER_LOGLEVEL" help:"trace, debug, info, warn or error" default:"warn"`

		List        *ListCmd        `arg:"subcommand:list" help:"list containers, classes and scripts"`
		Dump        *DumpCmd        `arg:"subcommand:dump" help:"decode an object to JSON"`
		Query       *QueryCmd       `arg:"subcommand:query" help:"run a JSONPath expression against an object"`
		Schema      *SchemaCmd      `arg:"subcommand:schema" help:"print the schema of an object"`
		Externals   *ExternalsCmd   `arg:"subcommand:externals" help:"print the external file tables"`
		Extract     *ExtractCmd     `arg:"subcommand:extract" help:"write TextAsset scripts to a directory"`
		Interactive *InteractiveCmd `arg:"subcommand:interactive" help:"browse objects"`
	}
	ListCmd struct {
		Class      string `help:"list objects of one class, by name or id"`
		Containers bool   `help:"list container paths only"`
		Filter     string `help:"only container paths with this prefix" placeholder:"PREFIX"`
		JSON       bool   `arg:"--json" help:"print a JSON summary of each file"`
	}
	// ObjectArgs picks one object. File may be left out when only one file
	// is loaded.
	ObjectArgs struct {
		File   string `help:"name of the serialized file holding the object"`
		PathID int64  `arg:"--path-id,required" help:"path id of the object"`
	}
	DumpCmd struct {
		ObjectArgs
		Debug bool   `help:"include metadata and schema"`
		To    string `help:"write to this file instead of stdout" placeholder:"object.json"`
		Force bool   `help:"overwrite the destination file"`
	}
	QueryCmd struct {
		ObjectArgs
		Expr string `arg:"positional,required" help:"JSONPath expression" placeholder:"EXPR"`
	}
	SchemaCmd struct {
		ObjectArgs
	}
	ExternalsCmd struct{}
	ExtractCmd   struct {
		OutDir string `arg:"-o,--out-dir,required" help:"directory for extracted files" placeholder:"DIR"`
		Filter string `help:"only assets whose output path has this prefix" placeholder:"PREFIX"`
		Force  bool   `help:"overwrite existing files"`
	}
	InteractiveCmd struct{}

	// Runner executes parsed arguments against a filesystem.
	Runner struct {
		Fs  afero.Fs
		Out io.Writer
	}
)

func (Args) Description() string {
	des := strings.Join(
		[]string{
			"Inspect Unity serialized asset files from the command line.\n",
			"Files are loaded from --data-dir and --serialized-file. Files built",
			"without type trees need --info-json-tar.",
		},
		"\n",
	)
	des += "\n"
	return des
}

func expandAll(paths []string) ([]string, error) {
	expanded := make([]string, len(paths))
	for i, p := range paths {
		var err error
		if expanded[i], err = homedir.Expand(p); err != nil {
			return nil, errors.Wrapf(err, `expanding "%s"`, p)
		}
	}
	return expanded, nil
}

// LoadViewer builds the registry from the data dir and serialized files
// named in args, then indexes containers.
func (r Runner) LoadViewer(args Args, provider usource.Provider) (*uview.Viewer, error) {
	options := []uview.Option{uview.WithProvider(provider)}
	if args.InfoJSONTar != "" {
		database, err := utree.LoadDatabase(r.Fs, args.InfoJSONTar)
		if err != nil {
			return nil, err
		}
		options = append(options, uview.WithDatabase(database))
	}
	viewer := uview.New(options...)

	if args.DataDir != "" {
		if _, err := viewer.AddDataDir(args.DataDir); err != nil {
			return nil, err
		}
	}
	files, err := expandAll(args.SerializedFile)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if _, err := viewer.AddFile(file); err != nil {
			return nil, err
		}
	}
	if len(viewer.Files()) == 0 {
		return nil, errors.New("no serialized file loaded, use --data-dir or --serialized-file")
	}

	count, err := viewer.IndexContainers()
	if err != nil {
		return nil, err
	}
	logger.InfoMessage("LoadViewer: loaded %d files, indexed %d containers", len(viewer.Files()), count)
	return viewer, nil
}

func (r Runner) Run(args Args) error {
	provider := usource.NewFsProvider(r.Fs)
	defer provider.Close()

	viewer, err := r.LoadViewer(args, provider)
	if err != nil {
		return err
	}

	switch {
	case args.List != nil:
		return r.list(viewer, *args.List)
	case args.Dump != nil:
		return r.dump(viewer, *args.Dump)
	case args.Query != nil:
		return r.query(viewer, *args.Query)
	case args.Schema != nil:
		return r.schema(viewer, *args.Schema)
	case args.Externals != nil:
		return r.externals(viewer)
	case args.Extract != nil:
		return r.extract(viewer, *args.Extract)
	default:
		return ui.Start(viewer)
	}
}

func Start() {
	logger.Initialize()
	args := Args{}
	arg.MustParse(&args)

	logger.SetConsoleLogger(logger.ParseLevel(args.LogLevel))
	runner := Runner{
		Fs:  afero.NewOsFs(),
		Out: os.Stdout,
	}
	if err := runner.Run(args); err != nil {
		logger.ErrorMessage("%v", err)
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}
