package uobject

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/iancoleman/orderedmap"
	"github.com/ohler55/ojg/jp"
	"github.com/pkg/errors"

	"unity-viewer/uasset/uerr"
	"unity-viewer/uasset/uptr"
	"unity-viewer/uasset/utree"
)

func (r *Object) Field() utree.TypeField {
	return r.field
}

func (r *Object) Name() string {
	return r.field.Name()
}

func (r *Object) TypeName() string {
	return r.field.TypeName()
}

func (r *Object) Kind() Kind {
	return r.kind
}

func (r *Object) Value() any {
	return r.value
}

// Len is the entry count of maps and the element count of arrays, bytes
// and strings; scalars have no length.
func (r *Object) Len() int {
	switch value := r.value.(type) {
	case *Map:
		return value.Len()
	case []*Object:
		return len(value)
	case []byte:
		return len(value)
	case string:
		return len(value)
	default:
		return 0
	}
}

// Children lists map entries in schema order or array elements in order.
func (r *Object) Children() []*Object {
	switch value := r.value.(type) {
	case *Map:
		children := make([]*Object, 0, value.Len())
		_ = value.ForEach(func(_ string, child *Object) error {
			children = append(children, child)
			return nil
		})
		return children
	case []*Object:
		return value
	default:
		return nil
	}
}

// Get follows a slash-separated path whose first segment is this object's
// own field name, such as "/Base/m_Children/0/m_PathID". Numeric segments
// index arrays.
func (r *Object) Get(path string) (*Object, error) {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if segments[0] != r.Name() {
		return nil, uerr.Schemaf(
			"Object.Get", uerr.ErrWrongShape,
			`path "%s" does not start at "%s"`, path, r.Name(),
		)
	}
	current := r
	for _, segment := range segments[1:] {
		next, err := current.child(segment)
		if err != nil {
			return nil, errors.Wrapf(err, `path "%s"`, path)
		}
		current = next
	}
	return current, nil
}

func (r *Object) child(segment string) (*Object, error) {
	switch value := r.value.(type) {
	case *Map:
		child, ok := value.Get(segment)
		if !ok {
			return nil, uerr.Schemaf("Object.Get", uerr.ErrWrongShape, `"%s" has no field "%s"`, r.Name(), segment)
		}
		return child, nil
	case []*Object:
		index, err := strconv.Atoi(segment)
		if err != nil || index < 0 || index >= len(value) {
			return nil, uerr.Schemaf(
				"Object.Get", uerr.ErrWrongShape,
				`"%s" has no element "%s" among %d`, r.Name(), segment, len(value),
			)
		}
		return value[index], nil
	default:
		return nil, uerr.Schemaf(
			"Object.Get", uerr.ErrWrongShape,
			`"%s" is a %s, cannot descend into "%s"`, r.Name(), r.kind, segment,
		)
	}
}

// As extracts the value with its exact Go type. Use *Map for structures,
// []*Object for arrays, []byte for byte arrays and uptr.PPtr for pointers.
func As[T any](obj *Object) (T, error) {
	value, ok := obj.value.(T)
	if !ok {
		var zero T
		return zero, uerr.Schemaf(
			"As", uerr.ErrWrongShape,
			`"%s" is a %s, not %T`, obj.Name(), obj.kind, zero,
		)
	}
	return value, nil
}

func GetAs[T any](obj *Object, path string) (T, error) {
	found, err := obj.Get(path)
	if err != nil {
		var zero T
		return zero, err
	}
	return As[T](found)
}

func (r *Object) AsString() (string, error) {
	return As[string](r)
}

func (r *Object) AsBool() (bool, error) {
	return As[bool](r)
}

func (r *Object) AsBytes() ([]byte, error) {
	return As[[]byte](r)
}

func (r *Object) AsPPtr() (uptr.PPtr, error) {
	return As[uptr.PPtr](r)
}

func (r *Object) AsMap() (*Map, error) {
	return As[*Map](r)
}

func (r *Object) AsArray() ([]*Object, error) {
	return As[[]*Object](r)
}

// Int64 widens any integer kind that fits.
func (r *Object) Int64() (int64, error) {
	switch value := r.value.(type) {
	case int8:
		return int64(value), nil
	case uint8:
		return int64(value), nil
	case int16:
		return int64(value), nil
	case uint16:
		return int64(value), nil
	case int32:
		return int64(value), nil
	case uint32:
		return int64(value), nil
	case int64:
		return value, nil
	case uint64:
		if value <= math.MaxInt64 {
			return int64(value), nil
		}
	}
	return 0, uerr.Schemaf("Object.Int64", uerr.ErrWrongShape, `"%s" is a %s, not an integer`, r.Name(), r.kind)
}

// Float64 widens either float kind.
func (r *Object) Float64() (float64, error) {
	switch value := r.value.(type) {
	case float32:
		return float64(value), nil
	case float64:
		return value, nil
	}
	return 0, uerr.Schemaf("Object.Float64", uerr.ErrWrongShape, `"%s" is a %s, not a float`, r.Name(), r.kind)
}

// Interface converts the tree to plain maps, slices and scalars, with
// integers widened to int64 and floats to float64.
func (r *Object) Interface() any {
	switch value := r.value.(type) {
	case *Map:
		m := make(map[string]any, value.Len())
		_ = value.ForEach(func(key string, child *Object) error {
			m[key] = child.Interface()
			return nil
		})
		return m
	case []*Object:
		s := make([]any, len(value))
		for i, child := range value {
			s[i] = child.Interface()
		}
		return s
	case uptr.PPtr:
		return map[string]any{"m_FileID": value.FileID, "m_PathID": value.PathID}
	case float32, float64:
		f, _ := r.Float64()
		return f
	case uint64:
		if value > math.MaxInt64 {
			return value
		}
		return int64(value)
	case int8, uint8, int16, uint16, int32, uint32, int64:
		i, _ := r.Int64()
		return i
	default:
		return value
	}
}

// Ordered converts the tree like Interface, except that structures become
// ordered maps in schema order.
func (r *Object) Ordered() any {
	switch value := r.value.(type) {
	case *Map:
		m := orderedmap.New()
		_ = value.ForEach(func(key string, child *Object) error {
			m.Set(key, child.Ordered())
			return nil
		})
		return m
	case []*Object:
		s := make([]any, len(value))
		for i, child := range value {
			s[i] = child.Ordered()
		}
		return s
	case float32, float64:
		f, _ := r.Float64()
		// JSON has no spelling for these
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return f
	default:
		return r.Interface()
	}
}

func (r *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Ordered())
}

// Query runs a JSONPath expression against the plain form of obj.
func Query(obj *Object, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, errors.Wrapf(err, `Query error parsing "%s"`, expr)
	}
	return x.Get(obj.Interface()), nil
}
