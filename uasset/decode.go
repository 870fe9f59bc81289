// Package uasset stores the code to read Unity serialized asset files and
// render their objects as JSON.
package uasset

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"unity-viewer/uasset/uclass"
	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/ufile"
	"unity-viewer/uasset/uobject"
)

type (
	// DebugObject carries what went into decoding an object next to the
	// result.
	DebugObject struct {
		Metadata ufile.ObjectMetadata `json:"metadata"`
		Class    string               `json:"class"`
		Schema   []string             `json:"schema"`
		Object   *uobject.Object      `json:"object"`
	}
	ObjectSummary struct {
		PathID    int64  `json:"path_id"`
		ClassID   int32  `json:"class_id"`
		Class     string `json:"class"`
		ByteStart uint64 `json:"byte_start"`
		ByteSize  uint32 `json:"byte_size"`
	}
	FileSummary struct {
		Name            string          `json:"name"`
		FormatVersion   uint32          `json:"format_version"`
		UnityVersion    string          `json:"unity_version"`
		TargetPlatform  string          `json:"target_platform"`
		Endianness      string          `json:"endianness"`
		EnableTypeTree  bool            `json:"enable_type_tree"`
		Externals       []string        `json:"externals"`
		UserInformation string          `json:"user_information,omitempty"`
		Objects         []ObjectSummary `json:"objects"`
	}
)

// DecodeJSON renders one object as indented JSON with fields in schema
// order. With debug set, the metadata and the schema are included.
func DecodeJSON(file *ufile.File, pathID int64, debug bool) ([]byte, error) {
	meta, ok := file.Object(pathID)
	if !ok {
		return nil, uerr.Referencef("DecodeJSON", uerr.ErrPathIDNotFound, "path id %d in %s", pathID, file.Name())
	}
	obj, err := file.DecodeObject(meta)
	if err != nil {
		return nil, err
	}

	if !debug {
		bs, err := json.MarshalIndent(obj, "", "  ")
		return bs, errors.Wrap(err, "DecodeJSON error marshalling object")
	}

	schema, err := file.Schema(meta)
	if err != nil {
		return nil, err
	}
	debugObject := DebugObject{
		Metadata: meta,
		Class:    uclass.Name(meta.ClassID),
		Schema:   strings.Split(strings.TrimSuffix(schema.String(), "\n"), "\n"),
		Object:   obj,
	}
	bs, err := json.MarshalIndent(debugObject, "", "  ")
	return bs, errors.Wrap(err, "DecodeJSON error marshalling debug object")
}

func Summarize(file *ufile.File) FileSummary {
	return FileSummary{
		Name:           file.Name(),
		FormatVersion:  file.FormatVersion(),
		UnityVersion:   file.UnityVersion(),
		TargetPlatform: file.TargetPlatform().String(),
		Endianness:     file.Endianness().String(),
		EnableTypeTree: file.EnableTypeTree(),
		Externals: lo.Map(
			file.Externals(),
			func(external ufile.FileIdentifier, _ int) string {
				return external.PathName
			},
		),
		UserInformation: file.UserInformation(),
		Objects: lo.Map(
			file.ObjectsMetadata(),
			func(meta ufile.ObjectMetadata, _ int) ObjectSummary {
				return ObjectSummary{
					PathID:    meta.PathID,
					ClassID:   meta.ClassID,
					Class:     uclass.Name(meta.ClassID),
					ByteStart: meta.ByteStart,
					ByteSize:  meta.ByteSize,
				}
			},
		),
	}
}

// SummaryJSON renders Summarize as indented JSON.
func SummaryJSON(file *ufile.File) ([]byte, error) {
	bs, err := json.MarshalIndent(Summarize(file), "", "  ")
	return bs, errors.Wrap(err, "SummaryJSON error")
}
