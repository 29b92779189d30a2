// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"cv-npr/internal/app"
	"cv-npr/internal/capability"
	"cv-npr/internal/examples"
	"cv-npr/internal/stage"
	"cv-npr/internal/version"
	"cv-npr/ui/panels"
	"cv-npr/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const appTitle = "cv-npr"

// Components are the parts the composition root hands to the window.
type Components struct {
	Load     *stage.LoadStage
	Filters  *stage.FilterStage
	Examples *examples.Catalog
	Prefs    *prefs.Prefs
	Variant  capability.Variant
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	state   *app.State
	prefs   *prefs.Prefs
	variant capability.Variant

	load        *stage.LoadStage
	filters     *stage.FilterStage
	examples    *examples.Catalog
	loadPanel   *panels.LoadPanel
	filterPanel *panels.FilterPanel
	statusBar   *widget.Label

	showOriginalItem *fyne.MenuItem
}

// New creates the main window around the two stages.
func New(fyneApp fyne.App, state *app.State, c Components) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window:   win,
		app:      fyneApp,
		state:    state,
		prefs:    c.Prefs,
		variant:  c.Variant,
		load:     c.Load,
		filters:  c.Filters,
		examples: c.Examples,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupInput()

	mw.Resize(fyne.NewSize(1024, 720))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.loadPanel = panels.NewLoadPanel(mw.state, mw.load, mw.examples)
	mw.loadPanel.SetWindow(mw.Window)
	mw.loadPanel.SetDirectoryMemory(mw.getLastDir, mw.saveLastDir)

	mw.filterPanel = panels.NewFilterPanel(mw.state, mw.filters)
	mw.filterPanel.SetWindow(mw.Window)
	mw.filterPanel.OnFilterSelected(func(id string) {
		mw.prefs.SetString(prefs.KeyLastFilter, id)
	})

	mw.statusBar = widget.NewLabel(fmt.Sprintf("Ready (%s)", mw.variant))

	mw.showPanel(mw.state.Visible())

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		container.NewStack(mw.loadPanel.Container(), mw.filterPanel.Container()), // center
	)
	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Load Image...", mw.load.Show),
		fyne.NewMenuItem("Paste Image", mw.loadPanel.Paste),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Download...", func() {
			if mw.filters.HasSource() {
				mw.filterPanel.Download()
			}
		}),
	)

	mw.showOriginalItem = fyne.NewMenuItem("Show Original", func() {
		mw.filters.ToggleOriginal()
	})
	viewMenu := fyne.NewMenu("View",
		mw.showOriginalItem,
		fyne.NewMenuItem("Load Panel", mw.filters.MoveToTop),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventPanelChanged, func(data interface{}) {
		if p, ok := data.(app.Panel); ok {
			mw.showPanel(p)
		}
	})

	mw.state.On(app.EventScrollIntoView, func(data interface{}) {
		if p, ok := data.(app.Panel); ok && p == app.PanelLoad {
			mw.loadPanel.ScrollToTop()
		}
	})

	mw.state.On(app.EventAlert, func(data interface{}) {
		if msg, ok := data.(string); ok {
			dialog.ShowInformation(appTitle, msg, mw.Window)
		}
	})

	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		w, h := mw.filters.Size()
		mw.updateStatus(fmt.Sprintf("Image loaded: %d×%d", w, h))
	})

	mw.state.On(app.EventBusyChanged, func(data interface{}) {
		if busy, ok := data.(bool); ok && busy {
			mw.updateStatus("Processing " + mw.filters.Current().Label() + "...")
		} else {
			mw.updateStatus(mw.filters.Current().Label())
		}
	})

	mw.state.On(app.EventPreviewToggled, func(data interface{}) {
		if showing, ok := data.(bool); ok {
			mw.showOriginalItem.Checked = showing
			mw.MainMenu().Refresh()
		}
	})

	mw.state.On(app.EventDownloaded, func(data interface{}) {
		if name, ok := data.(string); ok {
			mw.updateStatus("Saved " + name)
		}
	})
}

// setupInput wires drag-and-drop and the paste shortcut into the load stage.
func (mw *MainWindow) setupInput() {
	mw.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		mw.loadPanel.LoadURIs(uris)
	})
	mw.Canvas().AddShortcut(&fyne.ShortcutPaste{}, func(fyne.Shortcut) {
		mw.loadPanel.Paste()
	})
}

func (mw *MainWindow) showPanel(p app.Panel) {
	if p == app.PanelFilter {
		mw.loadPanel.Container().Hide()
		mw.filterPanel.Container().Show()
	} else {
		mw.filterPanel.Container().Hide()
		mw.loadPanel.Container().Show()
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDirectory)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDirectory, filepath.Dir(filePath))
}

// SavePreferences writes preferences to disk.
func (mw *MainWindow) SavePreferences() {
	if err := mw.prefs.Save(); err != nil {
		mw.state.Logger.Warn("failed to save preferences", "err", err)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\nEngine variant: %s", appTitle, version.String(), mw.variant),
		mw.Window)
}
