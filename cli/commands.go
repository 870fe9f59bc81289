package cli

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/exp/slices"

	"unity-viewer/logger"
	"unity-viewer/uasset"
	"unity-viewer/uasset/uclass"
	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/ufile"
	"unity-viewer/uasset/uobject"
	"unity-viewer/uasset/uview"
)

// pickFile finds the file an object lives in. Without a name, the path id
// must be unique among loaded files.
func pickFile(viewer *uview.Viewer, args ObjectArgs) (*ufile.File, error) {
	if args.File != "" {
		file, ok := viewer.FileByName(args.File)
		if !ok {
			return nil, uerr.Referencef("pickFile", uerr.ErrSerializedFileNotFound, `"%s"`, args.File)
		}
		return file, nil
	}
	candidates := lo.Filter(
		viewer.Files(),
		func(file *ufile.File, _ int) bool {
			_, ok := file.Object(args.PathID)
			return ok
		},
	)
	switch len(candidates) {
	case 0:
		return nil, uerr.Referencef("pickFile", uerr.ErrPathIDNotFound, "path id %d in any file", args.PathID)
	case 1:
		return candidates[0], nil
	default:
		names := lo.Map(
			candidates,
			func(file *ufile.File, _ int) string {
				return file.Name()
			},
		)
		return nil, errors.Errorf("path id %d is in %s, pick one with --file", args.PathID, strings.Join(names, ", "))
	}
}

func (r Runner) list(viewer *uview.Viewer, cmd ListCmd) error {
	if cmd.JSON {
		for _, file := range viewer.Files() {
			bs, err := uasset.SummaryJSON(file)
			if err != nil {
				return err
			}
			fmt.Fprintln(r.Out, string(bs))
		}
		return nil
	}

	if cmd.Class != "" {
		classID, err := uclass.Parse(cmd.Class)
		if err != nil {
			return err
		}
		for _, ref := range viewer.ObjectsByClass(classID) {
			file, _ := viewer.File(ref.SerializedFileID)
			container, _ := viewer.ContainerOf(ref)
			fmt.Fprintf(r.Out, "%s\t%d\t%s\n", file.Name(), ref.PathID, container)
		}
		return nil
	}

	for _, container := range viewer.Containers() {
		if !strings.HasPrefix(container.Path, cmd.Filter) {
			continue
		}
		file, _ := viewer.File(container.Ref.SerializedFileID)
		fmt.Fprintf(r.Out, "%s\t%s\t%d\n", container.Path, file.Name(), container.Ref.PathID)
	}
	if cmd.Containers {
		return nil
	}

	counts := map[int32]uint64{}
	for _, file := range viewer.Files() {
		for classID, count := range file.CountByClass() {
			counts[classID] += count
		}
	}
	classIDs := lo.Keys(counts)
	slices.Sort(classIDs)
	fmt.Fprintln(r.Out, "classes:")
	for _, classID := range classIDs {
		fmt.Fprintf(r.Out, "  %s\t%d\n", uclass.Name(classID), counts[classID])
	}

	scripts := viewer.ScriptClassNames()
	if len(scripts) > 0 {
		slices.Sort(scripts)
		fmt.Fprintln(r.Out, "scripts:")
		for _, script := range scripts {
			fmt.Fprintln(r.Out, "  "+script)
		}
	}
	return nil
}

func (r Runner) dump(viewer *uview.Viewer, cmd DumpCmd) error {
	file, err := pickFile(viewer, cmd.ObjectArgs)
	if err != nil {
		return err
	}
	bs, err := uasset.DecodeJSON(file, cmd.PathID, cmd.Debug)
	if err != nil {
		return err
	}
	if cmd.To == "" {
		fmt.Fprintln(r.Out, string(bs))
		return nil
	}

	to, err := homedir.Expand(cmd.To)
	if err != nil {
		return errors.Wrap(err, "dump error")
	}
	exists, err := afero.Exists(r.Fs, to)
	if err != nil {
		return err
	}
	if exists && !cmd.Force {
		return errors.Errorf(`destination "%s" exists, use --force to overwrite it`, to)
	}
	if err := afero.WriteFile(r.Fs, to, bs, 0o644); err != nil {
		return errors.Wrapf(err, `dump error writing "%s"`, to)
	}
	fmt.Fprintln(r.Out, "Done. Please check your result file at: "+to)
	return nil
}

func (r Runner) query(viewer *uview.Viewer, cmd QueryCmd) error {
	file, err := pickFile(viewer, cmd.ObjectArgs)
	if err != nil {
		return err
	}
	obj, err := file.ReadObject(cmd.PathID)
	if err != nil {
		return err
	}
	results, err := uobject.Query(obj, cmd.Expr)
	if err != nil {
		return err
	}
	for _, result := range results {
		bs, err := json.Marshal(result)
		if err != nil {
			return errors.Wrap(err, "query error marshalling result")
		}
		fmt.Fprintln(r.Out, string(bs))
	}
	return nil
}

func (r Runner) schema(viewer *uview.Viewer, cmd SchemaCmd) error {
	file, err := pickFile(viewer, cmd.ObjectArgs)
	if err != nil {
		return err
	}
	meta, ok := file.Object(cmd.PathID)
	if !ok {
		return uerr.Referencef("schema", uerr.ErrPathIDNotFound, "path id %d in %s", cmd.PathID, file.Name())
	}
	tree, err := file.Schema(meta)
	if err != nil {
		return err
	}
	fmt.Fprint(r.Out, tree.String())
	return nil
}

func (r Runner) externals(viewer *uview.Viewer) error {
	for _, file := range viewer.Files() {
		fmt.Fprintf(r.Out, "%s\n", file.Name())
		for i, external := range file.Externals() {
			fmt.Fprintf(r.Out, "  %d: %s", i+1, external.PathName)
			if external.GUID != [16]byte{} {
				fmt.Fprintf(r.Out, " {%s}", external.GUIDString())
			}
			fmt.Fprintln(r.Out)
		}
	}
	return nil
}

// extractName is the relative output path of a text asset: its container
// path when it has one, its name otherwise.
func extractName(viewer *uview.Viewer, ref uview.ObjectRef, obj *uobject.Object) (string, error) {
	name, ok := viewer.ContainerOf(ref)
	if !ok {
		assetName, err := uobject.GetAs[string](obj, "/Base/m_Name")
		if err != nil {
			return "", err
		}
		if assetName == "" {
			assetName = fmt.Sprintf("TextAsset_%d", ref.PathID)
		}
		name = assetName + ".txt"
	}
	// keep everything below the output directory
	return strings.TrimPrefix(path.Clean("/"+name), "/"), nil
}

func scriptBytes(obj *uobject.Object) ([]byte, error) {
	script, err := obj.Get("/Base/m_Script")
	if err != nil {
		return nil, err
	}
	if script.Kind() == uobject.KindString {
		s, err := script.AsString()
		return []byte(s), err
	}
	return script.AsBytes()
}

func (r Runner) extract(viewer *uview.Viewer, cmd ExtractCmd) error {
	outDir, err := homedir.Expand(cmd.OutDir)
	if err != nil {
		return errors.Wrap(err, "extract error")
	}

	count := 0
	for _, ref := range viewer.ObjectsByClass(uclass.TextAsset) {
		obj, err := viewer.ReadObject(ref)
		if err != nil {
			if uerr.IsRecoverable(err) {
				logger.WarnMessage("extract: skipping %s: %v", ref, err)
				continue
			}
			return err
		}
		name, err := extractName(viewer, ref, obj)
		if err != nil {
			logger.WarnMessage("extract: skipping %s: %v", ref, err)
			continue
		}
		if !strings.HasPrefix(name, cmd.Filter) {
			continue
		}
		bs, err := scriptBytes(obj)
		if err != nil {
			logger.WarnMessage("extract: skipping %s: %v", ref, err)
			continue
		}

		to := filepath.Join(outDir, filepath.FromSlash(name))
		exists, err := afero.Exists(r.Fs, to)
		if err != nil {
			return err
		}
		if exists && !cmd.Force {
			logger.WarnMessage(`extract: "%s" exists, use --force to overwrite it`, to)
			continue
		}
		if err := r.Fs.MkdirAll(filepath.Dir(to), 0o755); err != nil {
			return errors.Wrapf(err, `extract error creating directory for "%s"`, to)
		}
		if err := afero.WriteFile(r.Fs, to, bs, 0o644); err != nil {
			return errors.Wrapf(err, `extract error writing "%s"`, to)
		}
		logger.Fields(map[string]any{"object": ref.String(), "to": to}).Debug("extracted")
		count++
	}
	fmt.Fprintf(r.Out, "Extracted %d files to %s\n", count, outDir)
	return nil
}
