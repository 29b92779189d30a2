package panels

import (
	"fmt"
	"image"
	"sync"

	"cv-npr/internal/app"
	"cv-npr/internal/filter"
	"cv-npr/internal/stage"
	"cv-npr/pkg/colorutil"
	"cv-npr/pkg/geometry"
	"cv-npr/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// paramControl is the slider row of one filter parameter.
type paramControl struct {
	spec    filter.ParameterSpec
	slider  *widget.Slider
	value   *widget.Label
	syncing bool
}

// FilterPanel shows the preview, the filter picker and the active filter's controls.
type FilterPanel struct {
	state   *app.State
	filters *stage.FilterStage
	view    *canvas.ImageView
	win     fyne.Window

	filterSelect *widget.Select
	labelToID    map[string]string
	controls     map[string]*fyne.Container
	params       map[string]map[string]*paramControl
	toggleBtn    *widget.Button
	pixelLabel   *widget.Label
	onSelected   func(id string)

	// shown is the image currently in the view, sampled by the pixel readout.
	shownMu sync.Mutex
	shown   *image.RGBA

	root *fyne.Container
}

// NewFilterPanel creates the filter panel.
func NewFilterPanel(state *app.State, filters *stage.FilterStage) *FilterPanel {
	fp := &FilterPanel{
		state:     state,
		filters:   filters,
		view:      canvas.NewImageView(),
		labelToID: make(map[string]string),
		controls:  make(map[string]*fyne.Container),
		params:    make(map[string]map[string]*paramControl),
	}
	fp.build()
	fp.setupEventHandlers()
	return fp
}

// SetWindow sets the parent window for dialogs.
func (fp *FilterPanel) SetWindow(w fyne.Window) {
	fp.win = w
}

// OnFilterSelected registers a callback run after the user picks a filter.
func (fp *FilterPanel) OnFilterSelected(fn func(id string)) {
	fp.onSelected = fn
}

// Container returns the panel's root object.
func (fp *FilterPanel) Container() fyne.CanvasObject {
	return fp.root
}

// View returns the preview widget.
func (fp *FilterPanel) View() *canvas.ImageView {
	return fp.view
}

func (fp *FilterPanel) build() {
	var labels []string
	for _, f := range fp.filters.Registry().All() {
		labels = append(labels, f.Label())
		fp.labelToID[f.Label()] = f.ID()
		fp.controls[f.ID()] = fp.buildControls(f)
	}

	fp.filterSelect = widget.NewSelect(labels, func(label string) {
		id, ok := fp.labelToID[label]
		if !ok || id == fp.filters.Current().ID() {
			return
		}
		if err := fp.filters.SelectFilter(id); err != nil {
			fp.state.Logger.Error("select filter", "id", id, "err", err)
			return
		}
		if fp.onSelected != nil {
			fp.onSelected(id)
		}
	})

	controls := container.NewStack()
	current := fp.filters.Current().ID()
	for _, f := range fp.filters.Registry().All() {
		c := fp.controls[f.ID()]
		if f.ID() != current {
			c.Hide()
		}
		controls.Add(c)
	}
	fp.filterSelect.SetSelected(fp.filters.Current().Label())

	downloadBtn := widget.NewButton("Download", fp.Download)
	topBtn := widget.NewButton("Load Another Image", fp.filters.MoveToTop)
	fp.toggleBtn = widget.NewButton("Show Original", func() { fp.filters.ToggleOriginal() })
	fp.pixelLabel = widget.NewLabel("")

	fp.view.OnHover(func(p geometry.PointInt, inside bool) {
		if !inside {
			fp.pixelLabel.SetText("")
			return
		}
		fp.shownMu.Lock()
		shown := fp.shown
		fp.shownMu.Unlock()
		text := fmt.Sprintf("%d, %d", p.X, p.Y)
		if shown != nil && image.Pt(p.X, p.Y).In(shown.Rect) {
			text += "  " + colorutil.Describe(shown.At(p.X, p.Y))
		}
		fp.pixelLabel.SetText(text)
	})
	fp.view.OnTap(func(geometry.PointInt) {
		fp.filters.ToggleOriginal()
	})

	side := container.NewVBox(
		widget.NewLabelWithStyle("Filter", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		fp.filterSelect,
		controls,
		widget.NewSeparator(),
		fp.toggleBtn,
		downloadBtn,
		topBtn,
	)
	fp.root = container.NewBorder(nil, fp.pixelLabel, nil, container.NewVScroll(side), fp.view)
}

func (fp *FilterPanel) buildControls(f filter.Filter) *fyne.Container {
	box := container.NewVBox()
	values := fp.filters.Values(f.ID())
	fp.params[f.ID()] = make(map[string]*paramControl)
	for _, spec := range f.Parameters() {
		pc := &paramControl{
			spec:   spec,
			slider: widget.NewSlider(spec.Min, spec.Max),
			value:  widget.NewLabel(formatValue(spec, values[spec.Name])),
		}
		pc.slider.Step = spec.Step
		pc.slider.Value = values[spec.Name]
		name := spec.Name
		pc.slider.OnChanged = func(v float64) {
			if pc.syncing {
				return
			}
			got, err := fp.filters.SetParameter(name, v)
			if err != nil {
				fp.state.Logger.Error("set parameter", "name", name, "err", err)
			}
			pc.value.SetText(formatValue(pc.spec, got))
		}
		reset := widget.NewButton("Reset", func() {
			if _, err := fp.filters.ResetParameter(name); err != nil {
				fp.state.Logger.Error("reset parameter", "name", name, "err", err)
			}
		})
		fp.params[f.ID()][name] = pc

		header := container.NewBorder(nil, nil, widget.NewLabel(spec.Label), pc.value)
		box.Add(header)
		box.Add(container.NewBorder(nil, nil, nil, reset, pc.slider))
	}
	return box
}

func (fp *FilterPanel) setupEventHandlers() {
	fp.state.On(app.EventFilterSelected, func(data interface{}) {
		sel, ok := data.(app.FilterSelection)
		if !ok {
			return
		}
		if c := fp.controls[sel.Previous]; c != nil {
			c.Hide()
		}
		if c := fp.controls[sel.Current]; c != nil {
			c.Show()
		}
		if f, err := fp.filters.Registry().Get(sel.Current); err == nil && fp.filterSelect.Selected != f.Label() {
			fp.filterSelect.SetSelected(f.Label())
		}
	})

	fp.state.On(app.EventParameterChanged, func(data interface{}) {
		ch, ok := data.(app.ParameterChange)
		if !ok {
			return
		}
		pc := fp.params[ch.Filter][ch.Name]
		if pc == nil {
			return
		}
		pc.value.SetText(formatValue(pc.spec, ch.Value))
		if pc.slider.Value != ch.Value {
			pc.syncing = true
			pc.slider.SetValue(ch.Value)
			pc.syncing = false
		}
	})

	fp.state.On(app.EventBusyChanged, func(data interface{}) {
		if busy, ok := data.(bool); ok {
			fp.view.SetBusy(busy)
		}
	})

	refresh := func(interface{}) {
		img := fp.filters.Preview()
		fp.shownMu.Lock()
		fp.shown = img
		fp.shownMu.Unlock()
		fp.view.SetImage(img)
	}
	fp.state.On(app.EventWorkingUpdated, refresh)
	fp.state.On(app.EventPreviewToggled, func(data interface{}) {
		if showing, ok := data.(bool); ok && showing {
			fp.toggleBtn.SetText("Show Filtered")
		} else {
			fp.toggleBtn.SetText("Show Original")
		}
		refresh(data)
	})

	fp.state.On(app.EventApplyFailed, func(data interface{}) {
		if err, ok := data.(error); ok && fp.win != nil {
			dialog.ShowError(err, fp.win)
		}
	})
}

// Download asks where to save and exports the working image there.
func (fp *FilterPanel) Download() {
	if fp.win == nil || !fp.filters.HasSource() {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, fp.win)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()
		if err := fp.filters.DownloadTo(writer); err != nil {
			dialog.ShowError(err, fp.win)
		}
	}, fp.win)
	d.SetFileName(stage.DownloadName)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	d.Show()
}
