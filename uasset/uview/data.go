// Package uview is the session registry of serialized files. It resolves
// pointers across files and maps container paths to objects.
//
// Ingestion and querying are separate phases: a Viewer is not safe for
// concurrent mutation, while reads of a fully populated Viewer may run in
// parallel.
package uview

import (
	"fmt"

	"unity-viewer/ds"
	"unity-viewer/uasset/ufile"
	"unity-viewer/uasset/usource"
	"unity-viewer/uasset/utree"
)

type (
	ObjectRef struct {
		SerializedFileID int   `json:"serialized_file_id"`
		PathID           int64 `json:"path_id"`
	}
	Container struct {
		Path string    `json:"path"`
		Ref  ObjectRef `json:"ref"`
	}

	Viewer struct {
		files      map[int]*ufile.File
		order      []int
		idByName   map[string]int
		archives   map[int]string
		containers *ds.LinkedHashMap[string, ObjectRef]
		// first container path of each ref, by insertion position
		pathByRef  map[ObjectRef]string
		position   map[string]int
		provider   usource.Provider
		database   *utree.Database
		nextID     int
	}
	Option func(v *Viewer)
)

func (r ObjectRef) String() string {
	return fmt.Sprintf("%d:%d", r.SerializedFileID, r.PathID)
}

// WithProvider sets where AddFile and AddDataDir read from. The default is
// the operating system's filesystem.
func WithProvider(provider usource.Provider) Option {
	return func(v *Viewer) {
		v.provider = provider
	}
}

// WithDatabase supplies schemas to every file ingested afterwards.
func WithDatabase(database *utree.Database) Option {
	return func(v *Viewer) {
		v.database = database
	}
}

func New(options ...Option) *Viewer {
	v := Viewer{
		files:      map[int]*ufile.File{},
		order:      make([]int, 0),
		idByName:   map[string]int{},
		archives:   map[int]string{},
		containers: ds.NewLinkedHashMap[string, ObjectRef](),
		pathByRef:  map[ObjectRef]string{},
		position:   map[string]int{},
		provider:   usource.NewOsProvider(),
	}
	for _, option := range options {
		option(&v)
	}
	return &v
}
