package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unity-viewer/internal/fixture"
	"unity-viewer/uasset/ufile"
	"unity-viewer/uasset/usource"
	"unity-viewer/uasset/uview"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, model tea.Model, keys ...string) Browser {
	for _, k := range keys {
		model, _ = model.Update(key(k))
	}
	browser, ok := model.(Browser)
	require.True(t, ok)
	return browser
}

func TestBrowser_Update(t *testing.T) {
	viewer := uview.New()
	_, err := viewer.AddSerializedFile("level0", usource.Bytes(fixture.ScriptedFile().Build()), "")
	require.NoError(t, err)

	browser := CreateBrowser(viewer)
	assert.Equal(t, 0, browser.Depth())
	assert.Contains(t, browser.View(), "> level0  1  TextAsset")
	assert.Contains(t, browser.View(), "  level0  3  MonoBehaviour")

	browser = press(t, browser, "up", "down", "enter")
	assert.Equal(t, 1, browser.Depth())
	assert.Contains(t, browser.View(), "> m_Script (PPtr<MonoScript>): PPtr(0, 4)")
	assert.Contains(t, browser.View(), `  m_Name (string): "player"`)

	// pointers are followed into the object they point to
	browser = press(t, browser, "enter")
	assert.Equal(t, 2, browser.Depth())
	assert.Contains(t, browser.View(), `> m_ClassName (string): "PlayerController"`)
	assert.NoError(t, browser.Err())

	// leaves do not open
	browser = press(t, browser, "enter")
	assert.Equal(t, 2, browser.Depth())

	browser = press(t, browser, "esc", "esc", "esc")
	assert.Equal(t, 0, browser.Depth())
	assert.Contains(t, browser.View(), "> level0  3  MonoBehaviour")

	browser = press(t, browser, "down", "down", "down")
	assert.Contains(t, browser.View(), "> level0  4  MonoScript")

	_, cmd := browser.Update(key("q"))
	assert.NotNil(t, cmd)
}

func TestBrowser_Empty(t *testing.T) {
	browser := CreateBrowser(uview.New())
	browser = press(t, browser, "down", "enter")
	assert.Equal(t, 0, browser.Depth())
	assert.Contains(t, browser.View(), "(empty)")
}

func TestPreview_CutsOnRuneBoundaries(t *testing.T) {
	f := fixture.TextAssetFile(17, "poem", strings.Repeat("é", 100))
	file, err := ufile.Open(0, "poem", usource.Bytes(f.Build()))
	require.NoError(t, err)
	obj, err := file.ReadObject(1)
	require.NoError(t, err)
	script, err := obj.Get("/Base/m_Script")
	require.NoError(t, err)

	s := preview(script)
	assert.True(t, utf8.ValidString(s))
	assert.Equal(t, maxValueWidth, utf8.RuneCountInString(s))
	assert.True(t, strings.HasPrefix(s, `"éé`))
	assert.True(t, strings.HasSuffix(s, "é..."))

	name, err := obj.Get("/Base/m_Name")
	require.NoError(t, err)
	assert.Equal(t, `"poem"`, preview(name))
}
