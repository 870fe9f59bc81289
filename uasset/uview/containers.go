package uview

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"unity-viewer/logger"
	"unity-viewer/uasset/uclass"
	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/uobject"
	"unity-viewer/uasset/uptr"
)

// AddContainer maps a container path to an object. A path added twice keeps
// its first position and takes the newer reference.
func (r *Viewer) AddContainer(path string, ref ObjectRef) {
	previous, existed := r.containers.Get(path)
	if !existed {
		r.position[path] = r.containers.Len()
	}
	r.containers.Put(path, ref)

	if existed && previous != ref && r.pathByRef[previous] == path {
		delete(r.pathByRef, previous)
		other, ok := lo.Find(
			r.containers.Keys(),
			func(other string) bool {
				otherRef, _ := r.containers.Get(other)
				return otherRef == previous
			},
		)
		if ok {
			r.pathByRef[previous] = other
		}
	}
	if current, ok := r.pathByRef[ref]; !ok || r.position[path] < r.position[current] {
		r.pathByRef[ref] = path
	}
}

func (r *Viewer) ContainerByPath(path string) (ObjectRef, bool) {
	return r.containers.Get(path)
}

// Containers lists container paths in insertion order.
func (r *Viewer) Containers() []Container {
	return lo.Map(
		r.containers.Keys(),
		func(path string, _ int) Container {
			ref, _ := r.containers.Get(path)
			return Container{Path: path, Ref: ref}
		},
	)
}

// ContainerOf finds the first container path that maps to ref.
func (r *Viewer) ContainerOf(ref ObjectRef) (string, bool) {
	path, ok := r.pathByRef[ref]
	return path, ok
}

// IndexContainers reads the m_Container tables of every asset bundle and
// resource manager object. Entries that fail to resolve are skipped with a
// warning; only format and I/O errors stop the indexing.
func (r *Viewer) IndexContainers() (int, error) {
	count := 0
	for _, classID := range []int32{uclass.AssetBundle, uclass.ResourceManager} {
		for _, ref := range r.ObjectsByClass(classID) {
			n, err := r.indexContainer(ref, classID)
			count += n
			if err == nil {
				continue
			}
			if !uerr.IsRecoverable(err) {
				return count, err
			}
			logger.WarnMessage("Viewer.IndexContainers: skipping %s: %v", ref, err)
		}
	}
	return count, nil
}

func (r *Viewer) indexContainer(ref ObjectRef, classID int32) (int, error) {
	owner, err := r.mustFile("Viewer.IndexContainers", ref.SerializedFileID)
	if err != nil {
		return 0, err
	}
	obj, err := owner.ReadObject(ref.PathID)
	if err != nil {
		return 0, err
	}
	entries, err := uobject.GetAs[[]*uobject.Object](obj, "/Base/m_Container")
	if err != nil {
		return 0, err
	}

	count := 0
	for i, entry := range entries {
		path, ptr, err := containerEntry(entry, classID)
		if err != nil {
			return count, errors.Wrapf(err, "entry %d", i)
		}
		if ptr.IsNull() {
			continue
		}
		target, err := r.RefOf(owner, ptr)
		if err != nil {
			logger.WarnMessage(`Viewer.IndexContainers: "%s" in %s: %v`, path, owner.Name(), err)
			continue
		}
		r.AddContainer(path, target)
		count++
	}
	return count, nil
}

// containerEntry splits one (path, target) pair. Asset bundles wrap the
// pointer in an AssetInfo; resource managers store it directly.
func containerEntry(entry *uobject.Object, classID int32) (string, uptr.PPtr, error) {
	name := entry.Name()
	path, err := uobject.GetAs[string](entry, name+"/first")
	if err != nil {
		return "", uptr.PPtr{}, err
	}
	pointerPath := name + "/second"
	if classID == uclass.AssetBundle {
		pointerPath += "/asset"
	}
	ptr, err := uobject.GetAs[uptr.PPtr](entry, pointerPath)
	if err != nil {
		return "", uptr.PPtr{}, err
	}
	return path, ptr, nil
}

// ScriptClassName follows a MonoBehaviour's m_Script pointer to its
// MonoScript and returns the script's class name.
func (r *Viewer) ScriptClassName(ref ObjectRef) (string, error) {
	owner, err := r.mustFile("Viewer.ScriptClassName", ref.SerializedFileID)
	if err != nil {
		return "", err
	}
	obj, err := owner.ReadObject(ref.PathID)
	if err != nil {
		return "", err
	}
	ptr, err := uobject.GetAs[uptr.PPtr](obj, "/Base/m_Script")
	if err != nil {
		return "", err
	}
	script, err := r.Deref(owner, ptr)
	if err != nil {
		return "", err
	}
	if script == nil {
		return "", uerr.Referencef("Viewer.ScriptClassName", uerr.ErrPathIDNotFound, "%s has a null m_Script", ref)
	}
	return uobject.GetAs[string](script, "/Base/m_ClassName")
}

// ScriptClassNames collects the distinct script class names of all
// MonoBehaviours, in first-seen order. Unresolvable scripts are skipped.
func (r *Viewer) ScriptClassNames() []string {
	names := make([]string, 0)
	for _, ref := range r.ObjectsByClass(uclass.MonoBehaviour) {
		name, err := r.ScriptClassName(ref)
		if err != nil {
			logger.DebugMessage("Viewer.ScriptClassNames: %s: %v", ref, err)
			continue
		}
		names = append(names, name)
	}
	return lo.Uniq(names)
}

