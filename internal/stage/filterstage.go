package stage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"cv-npr/internal/app"
	"cv-npr/internal/filter"
	"cv-npr/internal/raster"
)

// DownloadName is the file name offered for exported images.
const DownloadName = "npr.png"

var ErrNoSource = errors.New("no image loaded")

// Saver delivers an exported image to the user.
type Saver interface {
	Save(name string, r io.Reader) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(name string, r io.Reader) error

func (f SaverFunc) Save(name string, r io.Reader) error { return f(name, r) }

// FilterStage owns the original and working buffers, the active filter with the
// parameter values of every filter, and the apply cycle.
type FilterStage struct {
	state    *app.State
	engine   filter.Engine
	registry *filter.Registry
	saver    Saver

	// mu guards the selection and parameter state.
	mu           sync.Mutex
	current      filter.Filter
	values       map[string]filter.Values
	pending      bool
	showOriginal bool
	lastErr      error

	// busyMu orders each busy transition with the pending check that decides it.
	busyMu sync.Mutex

	// bufMu guards the buffers; held for the duration of a filter computation.
	bufMu     sync.RWMutex
	original  *raster.Buffer
	working   *raster.Buffer
	hasSource bool
}

// NewFilterStage creates a stage with every filter at its defaults and
// filter.DefaultID selected.
func NewFilterStage(state *app.State, engine filter.Engine, registry *filter.Registry, saver Saver) *FilterStage {
	fs := &FilterStage{
		state:    state,
		engine:   engine,
		registry: registry,
		saver:    saver,
		values:   make(map[string]filter.Values),
		original: raster.NewBuffer(0, 0),
		working:  raster.NewBuffer(0, 0),
	}
	for _, f := range registry.All() {
		fs.values[f.ID()] = filter.Defaults(f)
	}
	if f, err := registry.Get(filter.DefaultID); err == nil {
		fs.current = f
	} else if all := registry.All(); len(all) > 0 {
		fs.current = all[0]
	}
	return fs
}

// Registry returns the filters this stage can select.
func (fs *FilterStage) Registry() *filter.Registry {
	return fs.registry
}

// Current returns the active filter.
func (fs *FilterStage) Current() filter.Filter {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.current
}

// Values returns a copy of the parameter values of filter id.
func (fs *FilterStage) Values(id string) filter.Values {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.values[id].Clone()
}

// HasSource reports whether an image has been loaded.
func (fs *FilterStage) HasSource() bool {
	fs.bufMu.RLock()
	defer fs.bufMu.RUnlock()
	return fs.hasSource
}

// SetSource resizes both buffers to the image and draws it into both. It is the only
// writer of the original buffer.
func (fs *FilterStage) SetSource(src *raster.Source) {
	fs.bufMu.Lock()
	fs.original.Resize(src.Width(), src.Height())
	fs.original.DrawSource(src.Image)
	fs.working.Resize(src.Width(), src.Height())
	fs.working.CopyFrom(fs.original)
	fs.hasSource = true
	fs.bufMu.Unlock()

	fs.state.Logger.Info("source set", "width", src.Width(), "height", src.Height(), "format", src.Format)
	fs.state.Emit(app.EventWorkingUpdated, nil)
}

// SelectFilter makes id the active filter and applies it.
func (fs *FilterStage) SelectFilter(id string) error {
	f, err := fs.registry.Get(id)
	if err != nil {
		return err
	}
	fs.mu.Lock()
	prev := ""
	if fs.current != nil {
		prev = fs.current.ID()
	}
	fs.current = f
	fs.mu.Unlock()

	fs.state.Logger.Debug("filter selected", "previous", prev, "current", id)
	fs.state.Emit(app.EventFilterSelected, app.FilterSelection{Previous: prev, Current: id})
	fs.Apply()
	return nil
}

// SetParameter constrains value to the control's range and step, stores it for the
// active filter and applies. It returns the stored value.
func (fs *FilterStage) SetParameter(name string, value float64) (float64, error) {
	fs.mu.Lock()
	f := fs.current
	spec, err := filter.Lookup(f, name)
	if err != nil {
		fs.mu.Unlock()
		return 0, err
	}
	value = spec.Constrain(value)
	fs.values[f.ID()][name] = value
	fs.mu.Unlock()

	fs.state.Emit(app.EventParameterChanged, app.ParameterChange{Filter: f.ID(), Name: name, Value: value})
	fs.Apply()
	return value, nil
}

// ResetParameter restores the control's declared default and applies.
func (fs *FilterStage) ResetParameter(name string) (float64, error) {
	spec, err := filter.Lookup(fs.Current(), name)
	if err != nil {
		return 0, err
	}
	return fs.SetParameter(name, spec.Default)
}

// Apply schedules the active filter. The busy flag is raised and its listeners run
// before the computation is deferred, so the indicator paints first. A request made
// while an earlier one is still waiting is folded into it; parameter values are read
// when the computation starts.
func (fs *FilterStage) Apply() {
	if !fs.HasSource() {
		return
	}
	fs.busyMu.Lock()
	fs.mu.Lock()
	if fs.pending {
		fs.mu.Unlock()
		fs.busyMu.Unlock()
		return
	}
	fs.pending = true
	fs.mu.Unlock()
	fs.state.SetBusy(true)
	fs.busyMu.Unlock()

	fs.state.Scheduler.Defer(fs.runPending)
}

func (fs *FilterStage) runPending() {
	fs.mu.Lock()
	fs.pending = false
	fs.mu.Unlock()

	err := fs.Render()

	fs.busyMu.Lock()
	fs.mu.Lock()
	fs.lastErr = err
	again := fs.pending
	fs.mu.Unlock()
	if !again {
		fs.state.SetBusy(false)
	}
	fs.busyMu.Unlock()
	if err != nil {
		fs.state.Logger.Error("apply failed", "err", err)
		fs.state.Emit(app.EventApplyFailed, err)
		return
	}
	fs.state.Emit(app.EventWorkingUpdated, nil)
}

// Render runs the active filter synchronously from the original buffer into the
// working buffer.
func (fs *FilterStage) Render() error {
	fs.mu.Lock()
	f := fs.current
	v := fs.values[f.ID()].Clone()
	fs.mu.Unlock()

	fs.bufMu.Lock()
	defer fs.bufMu.Unlock()
	if !fs.hasSource {
		return ErrNoSource
	}
	return filter.Run(f, fs.engine, fs.original, fs.working, v)
}

// Err returns the result of the most recent apply cycle.
func (fs *FilterStage) Err() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.lastErr
}

// Download encodes the working buffer as PNG and hands it to the saver through a
// temporary object URL. The URL is revoked before Download returns.
func (fs *FilterStage) Download() error {
	if fs.saver == nil {
		return errors.New("no saver configured")
	}
	return fs.download(fs.saver)
}

// DownloadTo exports like Download but writes into w, for hosts that pick the
// destination before exporting.
func (fs *FilterStage) DownloadTo(w io.Writer) error {
	return fs.download(SaverFunc(func(_ string, r io.Reader) error {
		_, err := io.Copy(w, r)
		return err
	}))
}

func (fs *FilterStage) download(saver Saver) error {
	fs.bufMu.RLock()
	if !fs.hasSource {
		fs.bufMu.RUnlock()
		return ErrNoSource
	}
	data, err := fs.working.EncodePNG()
	fs.bufMu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}

	url := fs.state.URLs.Create(data, "image/png")
	defer fs.state.URLs.Revoke(url)

	payload, _, err := fs.state.URLs.Resolve(url)
	if err != nil {
		return err
	}
	if err := saver.Save(DownloadName, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to save %s: %w", DownloadName, err)
	}
	fs.state.Logger.Info("downloaded", "name", DownloadName, "bytes", len(payload))
	fs.state.Emit(app.EventDownloaded, DownloadName)
	return nil
}

// MoveToTop hides the filter panel and returns to the load panel.
func (fs *FilterStage) MoveToTop() {
	fs.state.ShowPanel(app.PanelLoad)
	fs.state.Emit(app.EventScrollIntoView, app.PanelLoad)
}

// ToggleOriginal switches the preview between the filtered and the original image.
func (fs *FilterStage) ToggleOriginal() bool {
	fs.mu.Lock()
	fs.showOriginal = !fs.showOriginal
	showing := fs.showOriginal
	fs.mu.Unlock()
	fs.state.Emit(app.EventPreviewToggled, showing)
	return showing
}

// ShowingOriginal reports whether the preview shows the original image.
func (fs *FilterStage) ShowingOriginal() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.showOriginal
}

// Preview returns a copy of the image the preview should show.
func (fs *FilterStage) Preview() *image.RGBA {
	if fs.ShowingOriginal() {
		return fs.OriginalImage()
	}
	return fs.WorkingImage()
}

// WorkingImage returns a copy of the working buffer.
func (fs *FilterStage) WorkingImage() *image.RGBA {
	fs.bufMu.RLock()
	defer fs.bufMu.RUnlock()
	return fs.working.Clone()
}

// OriginalImage returns a copy of the original buffer.
func (fs *FilterStage) OriginalImage() *image.RGBA {
	fs.bufMu.RLock()
	defer fs.bufMu.RUnlock()
	return fs.original.Clone()
}

// Size returns the intrinsic size of the loaded image.
func (fs *FilterStage) Size() (width, height int) {
	fs.bufMu.RLock()
	defer fs.bufMu.RUnlock()
	return fs.original.Width(), fs.original.Height()
}

// BuffersEqual reports whether the working buffer matches the original.
func (fs *FilterStage) BuffersEqual() bool {
	fs.bufMu.RLock()
	defer fs.bufMu.RUnlock()
	return fs.working.Equal(fs.original)
}
