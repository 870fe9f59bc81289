package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"unity-viewer/uasset/uclass"
	"unity-viewer/uasset/uobject"
	"unity-viewer/uasset/uptr"
	"unity-viewer/uasset/uview"
)

const (
	defaultHeight = 20
	maxValueWidth = 60
)

type (
	entry struct {
		label string
		// exactly one of the two is set
		ref    *uview.ObjectRef
		object *uobject.Object
	}
	frame struct {
		title   string
		fileID  int
		entries []entry
		cursor  int
	}

	// Browser walks from the object list of every registered file into
	// decoded objects, following pointers across files.
	Browser struct {
		viewer *uview.Viewer
		frames []frame
		height int
		err    error
	}
)

func objectEntries(viewer *uview.Viewer) []entry {
	entries := make([]entry, 0)
	for _, file := range viewer.Files() {
		for _, meta := range file.ObjectsMetadata() {
			ref := uview.ObjectRef{SerializedFileID: file.ID(), PathID: meta.PathID}
			label := fmt.Sprintf("%s  %d  %s", file.Name(), meta.PathID, uclass.Name(meta.ClassID))
			if container, ok := viewer.ContainerOf(ref); ok {
				label += "  " + container
			}
			entries = append(entries, entry{label: label, ref: &ref})
		}
	}
	return entries
}

func childEntries(obj *uobject.Object) []entry {
	return lo.Map(
		obj.Children(),
		func(child *uobject.Object, i int) entry {
			name := child.Name()
			if obj.Kind() == uobject.KindArray {
				name = fmt.Sprintf("[%d]", i)
			}
			return entry{
				label:  fmt.Sprintf("%s (%s): %s", name, child.TypeName(), preview(child)),
				object: child,
			}
		},
	)
}

func preview(obj *uobject.Object) string {
	var s string
	switch obj.Kind() {
	case uobject.KindMap:
		s = fmt.Sprintf("{%d fields}", obj.Len())
	case uobject.KindArray:
		s = fmt.Sprintf("[%d elements]", obj.Len())
	case uobject.KindBytes:
		s = fmt.Sprintf("<%d bytes>", obj.Len())
	case uobject.KindString:
		s = fmt.Sprintf("%q", obj.Value())
	default:
		s = fmt.Sprint(obj.Value())
	}
	if runes := []rune(s); len(runes) > maxValueWidth {
		s = string(runes[:maxValueWidth-3]) + "..."
	}
	return s
}

func CreateBrowser(viewer *uview.Viewer) Browser {
	return Browser{
		viewer: viewer,
		frames: []frame{{
			title:   fmt.Sprintf("UNITY VIEWER: %d files", len(viewer.Files())),
			fileID:  -1,
			entries: objectEntries(viewer),
		}},
		height: defaultHeight,
	}
}

func (b Browser) top() *frame {
	return &b.frames[len(b.frames)-1]
}

// Depth is the number of frames above the object list.
func (b Browser) Depth() int {
	return len(b.frames) - 1
}

func (b Browser) Err() error {
	return b.err
}

func (b Browser) push(title string, fileID int, obj *uobject.Object) Browser {
	frames := make([]frame, len(b.frames), len(b.frames)+1)
	copy(frames, b.frames)
	b.frames = append(frames, frame{
		title:   title,
		fileID:  fileID,
		entries: childEntries(obj),
	})
	return b
}

func (b Browser) open() Browser {
	current := b.top()
	if len(current.entries) == 0 {
		return b
	}
	selected := current.entries[current.cursor]
	b.err = nil

	if selected.ref != nil {
		obj, err := b.viewer.ReadObject(*selected.ref)
		if err != nil {
			b.err = err
			return b
		}
		return b.push(selected.label, selected.ref.SerializedFileID, obj)
	}

	obj := selected.object
	if obj.Kind() == uobject.KindPPtr {
		return b.follow(current.fileID, obj)
	}
	if len(obj.Children()) == 0 {
		return b
	}
	return b.push(current.title+"/"+obj.Name(), current.fileID, obj)
}

func (b Browser) follow(fileID int, obj *uobject.Object) Browser {
	ptr, err := obj.AsPPtr()
	if err != nil {
		b.err = err
		return b
	}
	if ptr.IsNull() {
		return b
	}
	owner, ok := b.viewer.File(fileID)
	if !ok {
		return b
	}
	ref, err := b.viewer.RefOf(owner, ptr)
	if err != nil {
		b.err = err
		return b
	}
	target, err := b.viewer.ReadObject(ref)
	if err != nil {
		b.err = err
		return b
	}
	return b.push(fmt.Sprintf("%s -> %s", obj.Name(), describe(ref, ptr)), ref.SerializedFileID, target)
}

func describe(ref uview.ObjectRef, ptr uptr.PPtr) string {
	return fmt.Sprintf("%s at %s", ptr, ref)
}

func (b Browser) back() Browser {
	if len(b.frames) > 1 {
		b.frames = b.frames[:len(b.frames)-1]
	}
	b.err = nil
	return b
}

func (b Browser) move(delta int) Browser {
	frames := make([]frame, len(b.frames))
	copy(frames, b.frames)
	b.frames = frames
	current := b.top()
	current.cursor = lo.Min([]int{current.cursor + delta, len(current.entries) - 1})
	current.cursor = lo.Max([]int{current.cursor, 0})
	return b
}

func (b Browser) Init() tea.Cmd {
	return nil
}

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.height = lo.Max([]int{msg.Height - 4, 1})
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return b, tea.Quit
		case "up", "k":
			return b.move(-1), nil
		case "down", "j":
			return b.move(1), nil
		case "pgup":
			return b.move(-b.height), nil
		case "pgdown":
			return b.move(b.height), nil
		case "enter", "right", "l":
			return b.open(), nil
		case "esc", "backspace", "left", "h":
			return b.back(), nil
		}
	}
	return b, nil
}

func (b Browser) View() string {
	current := b.top()
	sb := strings.Builder{}
	sb.WriteString(current.title + "\n\n")

	start := lo.Max([]int{current.cursor - b.height + 1, 0})
	end := lo.Min([]int{start + b.height, len(current.entries)})
	for i := start; i < end; i++ {
		marker := "  "
		if i == current.cursor {
			marker = "> "
		}
		sb.WriteString(marker + current.entries[i].label + "\n")
	}
	if len(current.entries) == 0 {
		sb.WriteString("  (empty)\n")
	}

	if b.err != nil {
		sb.WriteString("\nerror: " + b.err.Error() + "\n")
	}
	sb.WriteString("\nenter: open  esc: back  q: quit\n")
	return sb.String()
}
