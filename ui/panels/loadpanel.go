package panels

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"cv-npr/internal/app"
	"cv-npr/internal/examples"
	"cv-npr/internal/stage"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// LoadPanel offers every way of choosing an image.
type LoadPanel struct {
	state    *app.State
	load     *stage.LoadStage
	catalog  *examples.Catalog
	win      fyne.Window
	lastDir  func() fyne.ListableURI
	setDir   func(path string)
	urlEntry *widget.Entry
	scroll   *container.Scroll
}

// NewLoadPanel creates the load panel.
func NewLoadPanel(state *app.State, load *stage.LoadStage, catalog *examples.Catalog) *LoadPanel {
	lp := &LoadPanel{state: state, load: load, catalog: catalog}
	lp.build()
	return lp
}

// SetWindow sets the parent window for dialogs.
func (lp *LoadPanel) SetWindow(w fyne.Window) {
	lp.win = w
}

// SetDirectoryMemory wires the last-used directory in and out of preferences.
func (lp *LoadPanel) SetDirectoryMemory(get func() fyne.ListableURI, set func(path string)) {
	lp.lastDir = get
	lp.setDir = set
}

// Container returns the panel's root object.
func (lp *LoadPanel) Container() fyne.CanvasObject {
	return lp.scroll
}

// ScrollToTop brings the panel's first row into view.
func (lp *LoadPanel) ScrollToTop() {
	lp.scroll.ScrollToTop()
}

func (lp *LoadPanel) build() {
	title := widget.NewLabelWithStyle("Load an image", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	selectBtn := widget.NewButton("Select Image...", lp.onSelectImage)
	clipboardBtn := widget.NewButton("Paste from Clipboard", lp.onClipboard)

	lp.urlEntry = widget.NewEntry()
	lp.urlEntry.SetPlaceHolder("https://... or a file path")
	lp.urlEntry.OnSubmitted = func(string) { lp.onOpenURL() }
	openBtn := widget.NewButton("Open", lp.onOpenURL)
	urlRow := container.NewBorder(nil, nil, nil, openBtn, lp.urlEntry)

	hint := widget.NewLabel("You can also drop an image onto the window or paste one.")

	content := container.NewVBox(
		title,
		container.NewHBox(selectBtn, clipboardBtn),
		urlRow,
		hint,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Examples", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		lp.buildExamples(),
	)
	lp.scroll = container.NewVScroll(container.NewPadded(content))
}

func (lp *LoadPanel) buildExamples() fyne.CanvasObject {
	grid := container.NewGridWrap(fyne.NewSize(96, 120))
	for _, ex := range lp.catalog.Examples() {
		thumbURL := examples.ThumbnailURL(ex.Name)
		data, err := lp.catalog.Fetch(thumbURL)
		if err != nil {
			lp.state.Logger.Warn("example thumbnail unavailable", "name", ex.Name, "err", err)
			continue
		}
		img := fynecanvas.NewImageFromReader(bytes.NewReader(data), ex.Name+".png")
		img.FillMode = fynecanvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(examples.ThumbSize, examples.ThumbSize))
		btn := widget.NewButton(ex.Title, func() {
			lp.run(func(ctx context.Context) error { return lp.load.LoadImage(ctx, examples.FullURL(thumbURL)) })
		})
		grid.Add(container.NewBorder(nil, btn, nil, nil, img))
	}
	return grid
}

// run performs a load off the UI goroutine and reports unexpected failures.
func (lp *LoadPanel) run(fn func(ctx context.Context) error) {
	go func() {
		if err := fn(context.Background()); err != nil {
			lp.state.Logger.Error("load failed", "err", err)
			showLoadError(err, lp.win)
		}
	}()
}

func (lp *LoadPanel) onSelectImage() {
	if lp.win == nil {
		return
	}
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, lp.win)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()
		f, err := readURI(reader.URI(), reader)
		if err != nil {
			dialog.ShowError(err, lp.win)
			return
		}
		if lp.setDir != nil && reader.URI().Scheme() == "file" {
			lp.setDir(reader.URI().Path())
		}
		lp.LoadFile(f)
	}, lp.win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff", ".svg"}))
	if lp.lastDir != nil {
		if dir := lp.lastDir(); dir != nil {
			d.SetLocation(dir)
		}
	}
	d.Show()
}

// LoadFile loads a file handed over by the picker or a drop.
func (lp *LoadPanel) LoadFile(f stage.File) {
	lp.state.Logger.Debug("loading file", "name", f.Name, "bytes", len(f.Data))
	lp.run(func(ctx context.Context) error { return lp.load.LoadFile(ctx, f) })
}

// LoadURIs loads the first of the dropped items.
func (lp *LoadPanel) LoadURIs(uris []fyne.URI) {
	if len(uris) == 0 {
		return
	}
	uri := uris[0]
	reader, err := storage.Reader(uri)
	if err != nil {
		lp.state.Logger.Error("failed to open dropped item", "uri", uri.String(), "err", err)
		return
	}
	defer reader.Close()
	f, err := readURI(uri, reader)
	if err != nil {
		lp.state.Logger.Error("failed to read dropped item", "uri", uri.String(), "err", err)
		return
	}
	lp.LoadFile(f)
}

func (lp *LoadPanel) onClipboard() {
	lp.run(lp.load.LoadClipboardImage)
}

// Paste loads the clipboard image, as the paste shortcut does.
func (lp *LoadPanel) Paste() {
	lp.onClipboard()
}

func (lp *LoadPanel) onOpenURL() {
	url := strings.TrimSpace(lp.urlEntry.Text)
	if url == "" {
		return
	}
	lp.state.Logger.Info("opening", slog.String("url", url))
	lp.run(func(ctx context.Context) error { return lp.load.LoadImage(ctx, url) })
}
