package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"unity-viewer/uasset/uview"
)

func Start(viewer *uview.Viewer) error {
	browser := CreateBrowser(viewer)
	return tea.NewProgram(browser, tea.WithAltScreen()).Start()
}
