package utree

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/DataDog/zstd"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/uversion"
)

type (
	// Database serves class schemas for files stored without an embedded
	// type tree, from a zstd-compressed tar of InfoJson documents named
	// after the engine version they were dumped from.
	Database struct {
		mu       sync.Mutex
		raw      map[string][]byte
		versions []uversion.Version
		parsed   map[string]map[int32]*Tree
	}
	infoJSON struct {
		Version string          `json:"Version"`
		Classes []infoJSONClass `json:"Classes"`
	}
	infoJSONClass struct {
		TypeID          int32     `json:"TypeID"`
		Name            string    `json:"Name"`
		ReleaseRootNode *JSONNode `json:"ReleaseRootNode"`
	}
)

// OpenDatabase reads the whole archive up front and keeps each document as
// raw bytes; documents are parsed on first lookup.
func OpenDatabase(r io.Reader) (*Database, error) {
	decompressed := zstd.NewReader(r)
	defer decompressed.Close()

	db := Database{
		raw:    map[string][]byte{},
		parsed: map[string]map[int32]*Tree{},
	}
	archive := tar.NewReader(decompressed)
	for {
		header, err := archive.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "OpenDatabase error reading archive")
		}
		if header.Typeflag != tar.TypeReg || !strings.HasSuffix(header.Name, ".json") {
			continue
		}
		version, err := uversion.Parse(strings.TrimSuffix(path.Base(header.Name), ".json"))
		if err != nil {
			continue
		}
		bs, err := io.ReadAll(archive)
		if err != nil {
			return nil, errors.Wrapf(err, `OpenDatabase error reading "%s"`, header.Name)
		}
		db.raw[version.String()] = bs
		db.versions = append(db.versions, version)
	}
	sort.Slice(db.versions, func(i, j int) bool {
		return db.versions[i].Compare(db.versions[j]) < 0
	})

	return &db, nil
}

// LoadDatabase opens the archive at archivePath, which may start with "~".
func LoadDatabase(fs afero.Fs, archivePath string) (*Database, error) {
	expanded, err := homedir.Expand(archivePath)
	if err != nil {
		return nil, errors.Wrap(err, "LoadDatabase error")
	}
	bs, err := afero.ReadFile(fs, expanded)
	if err != nil {
		return nil, err
	}
	return OpenDatabase(bytes.NewReader(bs))
}

func (r *Database) Versions() []uversion.Version {
	return lo.Map(
		r.versions,
		func(v uversion.Version, _ int) uversion.Version {
			return v
		},
	)
}

// Nearest picks the exact version if it was dumped, otherwise the newest
// dumped version that is not newer than the requested one.
func (r *Database) Nearest(version uversion.Version) (uversion.Version, bool) {
	candidates := lo.Filter(
		r.versions,
		func(v uversion.Version, _ int) bool {
			return v.Compare(version) <= 0
		},
	)
	if len(candidates) == 0 {
		return uversion.Version{}, false
	}
	return candidates[len(candidates)-1], true
}

func (r *Database) Lookup(version uversion.Version, classID int32) (*Tree, error) {
	nearest, ok := r.Nearest(version)
	if !ok {
		return nil, uerr.Schemaf(
			"Database.Lookup", uerr.ErrSchemaNotFound,
			"no dump at or before version %s", version,
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	classes, err := r.classesLocked(nearest.String())
	if err != nil {
		return nil, err
	}
	tree, ok := classes[classID]
	if !ok {
		return nil, uerr.Schemaf(
			"Database.Lookup", uerr.ErrSchemaNotFound,
			"class %d not in dump %s", classID, nearest,
		)
	}
	return tree, nil
}

func (r *Database) classesLocked(key string) (map[int32]*Tree, error) {
	if classes, ok := r.parsed[key]; ok {
		return classes, nil
	}
	doc := infoJSON{}
	if err := json.Unmarshal(r.raw[key], &doc); err != nil {
		return nil, uerr.Schema("Database.Lookup", errors.Wrapf(err, `parsing dump "%s"`, key))
	}
	classes := map[int32]*Tree{}
	for _, class := range doc.Classes {
		if class.ReleaseRootNode == nil {
			continue
		}
		tree, err := NewTree(FlattenJSONNode(class.ReleaseRootNode))
		if err != nil {
			return nil, uerr.Schema(
				"Database.Lookup",
				errors.Wrapf(err, `class %d "%s" of dump "%s"`, class.TypeID, class.Name, key),
			)
		}
		classes[class.TypeID] = tree
	}
	r.parsed[key] = classes
	delete(r.raw, key)
	return classes, nil
}

// FlattenJSONNode lists a nested node and its descendants in pre-order.
func FlattenJSONNode(root *JSONNode) []TypeField {
	fields := []TypeField{root}
	for i := range root.SubNodes {
		fields = append(fields, FlattenJSONNode(&root.SubNodes[i])...)
	}
	return fields
}
