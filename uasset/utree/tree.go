package utree

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"unity-viewer/ds"
	"unity-viewer/uasset/uerr"
)

// NewTree arranges a pre-order field list into a Tree. The first field must
// be the only one at level 0, and each field is at most one level deeper
// than the one before it.
func NewTree(fields []TypeField) (*Tree, error) {
	if len(fields) == 0 {
		return nil, uerr.Formatf("NewTree", uerr.ErrInvalidStructure, "empty field list")
	}
	if fields[0].Level() != 0 {
		return nil, uerr.Formatf("NewTree", uerr.ErrInvalidStructure, "root at level %d", fields[0].Level())
	}

	tree := Tree{
		fields:   fields,
		children: make([][]int, len(fields)),
	}
	// holds the chain of ancestors of the current field, root first
	ancestors := ds.NewStack[int]()
	ancestors.Push(0)
	for i := 1; i < len(fields); i++ {
		level := fields[i].Level()
		previous := fields[i-1].Level()
		if level == 0 {
			return nil, uerr.Formatf("NewTree", uerr.ErrInvalidStructure, "second root at field %d", i)
		}
		if level > previous+1 {
			return nil, uerr.Formatf(
				"NewTree", uerr.ErrInvalidStructure,
				`field %d "%s" jumps from level %d to %d`, i, fields[i].Name(), previous, level,
			)
		}
		for ancestors.Len() > level {
			ancestors.Pop()
		}
		parent, ok := ancestors.Peek()
		if !ok {
			return nil, uerr.Format("NewTree", ds.ErrUnreachableCode{Caller: "NewTree", Detail: "empty ancestor stack"})
		}
		tree.children[parent] = append(tree.children[parent], i)
		ancestors.Push(i)
	}

	return &tree, nil
}

func (r *Tree) Len() int {
	return len(r.fields)
}

func (r *Tree) Field(i int) TypeField {
	return r.fields[i]
}

func (r *Tree) Root() TypeField {
	return r.fields[0]
}

func (r *Tree) Fields() []TypeField {
	return ds.ShallowCopy(r.fields)
}

func (r *Tree) Children(i int) []int {
	return r.children[i]
}

// Child looks up a direct child of field i by name.
func (r *Tree) Child(i int, name string) (int, bool) {
	return lo.Find(
		r.children[i],
		func(child int) bool {
			return r.fields[child].Name() == name
		},
	)
}

// String renders one field per line, indented by level.
func (r *Tree) String() string {
	sb := strings.Builder{}
	for _, field := range r.fields {
		sb.WriteString(strings.Repeat("  ", field.Level()))
		sb.WriteString(fmt.Sprintf("%s %s // ByteSize{%d}", field.TypeName(), field.Name(), field.ByteSize()))
		if field.TypeFlags().Has(TypeFlagIsArray) {
			sb.WriteString(" IsArray")
		}
		if field.MetaFlags().Has(MetaFlagAlignBytes) {
			sb.WriteString(" Align")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
