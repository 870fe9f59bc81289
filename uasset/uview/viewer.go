package uview

import (
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"unity-viewer/logger"
	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/ufile"
	"unity-viewer/uasset/uobject"
	"unity-viewer/uasset/uptr"
	"unity-viewer/uasset/usource"
)

// baseName is the last component of a path in either separator style.
func baseName(p string) string {
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}

// AddSerializedFile parses src and registers it under name. archive names
// the bundle the file came from and may be empty. When two files share a
// name, pointers resolve to the first one.
func (r *Viewer) AddSerializedFile(name string, src usource.RangeReader, archive string) (*ufile.File, error) {
	options := make([]ufile.Option, 0)
	if r.database != nil {
		options = append(options, ufile.WithDatabase(r.database))
	}
	file, err := ufile.Open(r.nextID, name, src, options...)
	if err != nil {
		return nil, errors.Wrapf(err, `Viewer.AddSerializedFile error adding "%s"`, name)
	}
	r.nextID++

	r.files[file.ID()] = file
	r.order = append(r.order, file.ID())
	if _, ok := r.idByName[name]; ok {
		logger.WarnMessage(`Viewer.AddSerializedFile: "%s" is already registered, keeping the first`, name)
	} else {
		r.idByName[name] = file.ID()
	}
	if archive != "" {
		r.archives[file.ID()] = archive
	}

	logger.Fields(map[string]any{
		"file":    name,
		"id":      file.ID(),
		"format":  file.FormatVersion(),
		"version": file.UnityVersion(),
		"objects": len(file.ObjectsMetadata()),
	}).Info("added serialized file")
	return file, nil
}

// AddFile reads one serialized file through the provider, registered under
// its base name.
func (r *Viewer) AddFile(filePath string) (*ufile.File, error) {
	src, err := r.provider.Open(filePath)
	if err != nil {
		return nil, err
	}
	return r.AddSerializedFile(baseName(filePath), src, "")
}

// AddDataDir adds every serialized file below dir. Files that are not
// serialized files, or fail to parse, are skipped with a warning; provider
// errors stop the walk.
func (r *Viewer) AddDataDir(dir string) ([]*ufile.File, error) {
	paths, err := r.provider.List(dir)
	if err != nil {
		return nil, err
	}
	added := make([]*ufile.File, 0)
	for _, p := range paths {
		src, err := r.provider.Open(p)
		if err != nil {
			return added, err
		}
		if _, err := ufile.Probe(src); err != nil {
			if uerr.KindOf(err) == uerr.KindIO {
				return added, err
			}
			logger.DebugMessage(`Viewer.AddDataDir: skipping "%s": %v`, p, err)
			continue
		}
		file, err := r.AddSerializedFile(baseName(p), src, "")
		if err != nil {
			if uerr.KindOf(err) == uerr.KindIO {
				return added, err
			}
			logger.WarnMessage(`Viewer.AddDataDir: skipping "%s": %v`, p, err)
			continue
		}
		added = append(added, file)
	}
	return added, nil
}

// Files lists registered files in ingestion order.
func (r *Viewer) Files() []*ufile.File {
	return lo.Map(
		r.order,
		func(id int, _ int) *ufile.File {
			return r.files[id]
		},
	)
}

func (r *Viewer) File(id int) (*ufile.File, bool) {
	file, ok := r.files[id]
	return file, ok
}

func (r *Viewer) FileByName(name string) (*ufile.File, bool) {
	id, ok := r.idByName[name]
	if !ok {
		return nil, false
	}
	return r.files[id], true
}

func (r *Viewer) ArchiveOf(id int) (string, bool) {
	archive, ok := r.archives[id]
	return archive, ok
}

func (r *Viewer) mustFile(caller string, id int) (*ufile.File, error) {
	file, ok := r.files[id]
	if !ok {
		return nil, uerr.Referencef(caller, uerr.ErrSerializedFileNotFound, "serialized file %d", id)
	}
	return file, nil
}

func (r *Viewer) Externals(fileID int) ([]ufile.FileIdentifier, error) {
	file, err := r.mustFile("Viewer.Externals", fileID)
	if err != nil {
		return nil, err
	}
	return file.Externals(), nil
}

// ResolveFile finds the file a pointer read from owner points into: owner
// itself for file id 0, otherwise the registered file named like the
// external entry at file id - 1.
func (r *Viewer) ResolveFile(owner *ufile.File, ptr uptr.PPtr) (*ufile.File, error) {
	if ptr.IsLocal() {
		return owner, nil
	}
	externals := owner.Externals()
	if ptr.FileID < 0 || ptr.FileID > int64(len(externals)) {
		return nil, uerr.Referencef(
			"Viewer.ResolveFile", uerr.ErrFileIDOutOfRange,
			"%s in %s with %d externals", ptr, owner.Name(), len(externals),
		)
	}
	name := baseName(externals[ptr.FileID-1].PathName)
	target, ok := r.FileByName(name)
	if !ok {
		return nil, uerr.Referencef(
			"Viewer.ResolveFile", uerr.ErrExternalFileNotFound,
			`%s in %s names "%s"`, ptr, owner.Name(), name,
		)
	}
	return target, nil
}

// Deref decodes the object a pointer read from owner points to. A null
// pointer gives (nil, nil) without looking anything up.
func (r *Viewer) Deref(owner *ufile.File, ptr uptr.PPtr) (*uobject.Object, error) {
	if ptr.IsNull() {
		return nil, nil
	}
	target, err := r.ResolveFile(owner, ptr)
	if err != nil {
		return nil, err
	}
	return target.ReadObject(ptr.PathID)
}

// DerefFrom is Deref with the owner given by its serialized file id.
func (r *Viewer) DerefFrom(fileID int, ptr uptr.PPtr) (*uobject.Object, error) {
	if ptr.IsNull() {
		return nil, nil
	}
	owner, err := r.mustFile("Viewer.DerefFrom", fileID)
	if err != nil {
		return nil, err
	}
	return r.Deref(owner, ptr)
}

// RefOf turns a pointer read from owner into a registry-wide reference.
func (r *Viewer) RefOf(owner *ufile.File, ptr uptr.PPtr) (ObjectRef, error) {
	target, err := r.ResolveFile(owner, ptr)
	if err != nil {
		return ObjectRef{}, err
	}
	return ObjectRef{SerializedFileID: target.ID(), PathID: ptr.PathID}, nil
}

func (r *Viewer) ReadObject(ref ObjectRef) (*uobject.Object, error) {
	file, err := r.mustFile("Viewer.ReadObject", ref.SerializedFileID)
	if err != nil {
		return nil, err
	}
	return file.ReadObject(ref.PathID)
}

// ObjectsByClass lists objects of one class over all files, in ingestion
// order and then file order.
func (r *Viewer) ObjectsByClass(classID int32) []ObjectRef {
	refs := make([]ObjectRef, 0)
	for _, file := range r.Files() {
		for _, meta := range file.ObjectsByClass(classID) {
			refs = append(refs, ObjectRef{SerializedFileID: file.ID(), PathID: meta.PathID})
		}
	}
	return refs
}
