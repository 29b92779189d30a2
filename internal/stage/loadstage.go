// Package stage implements the two panels of the application: loading an image from
// any input channel and filtering it.
package stage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cv-npr/internal/app"
	"cv-npr/internal/clipboard"
	"cv-npr/internal/examples"
	"cv-npr/internal/raster"
)

const (
	AlertNotImage       = "Only image files are supported."
	AlertSVGUnsupported = "SVG is not supported."
)

var (
	ErrNotImage       = errors.New("not an image file")
	ErrSVGUnsupported = errors.New("SVG is not supported")
)

// File is a file handed over by the picker, a drop or a paste.
type File struct {
	Name string
	// MediaType may be empty, in which case it is detected from Name and Data.
	MediaType string
	Data      []byte
}

// LoadStage funnels every input channel into one loaded image.
type LoadStage struct {
	state     *app.State
	filters   *FilterStage
	resolver  *Resolver
	clipboard clipboard.Reader
}

// NewLoadStage creates a load stage feeding filters. clip may be nil when the host
// has no clipboard.
func NewLoadStage(state *app.State, filters *FilterStage, resolver *Resolver, clip clipboard.Reader) *LoadStage {
	return &LoadStage{state: state, filters: filters, resolver: resolver, clipboard: clip}
}

// Show makes the load panel visible and scrolls it into view.
func (ls *LoadStage) Show() {
	ls.state.ShowPanel(app.PanelLoad)
	ls.state.Emit(app.EventScrollIntoView, app.PanelLoad)
}

// checkMediaType raises the user-facing alert for unsupported types.
func (ls *LoadStage) checkMediaType(mediaType string) error {
	if !raster.IsImage(mediaType) {
		ls.state.Alert(AlertNotImage)
		return fmt.Errorf("%w: %q", ErrNotImage, mediaType)
	}
	if mediaType == raster.MediaTypeSVG {
		ls.state.Alert(AlertSVGUnsupported)
		return ErrSVGUnsupported
	}
	return nil
}

// LoadFile validates f and loads it through a temporary object URL.
func (ls *LoadStage) LoadFile(ctx context.Context, f File) error {
	mediaType := f.MediaType
	if mediaType == "" {
		mediaType = raster.DetectMediaType(f.Name, f.Data)
	}
	if err := ls.checkMediaType(mediaType); err != nil {
		ls.state.Logger.Info("file rejected", "name", f.Name, "type", mediaType)
		return err
	}
	return ls.loadBytes(ctx, f.Data, mediaType)
}

func (ls *LoadStage) loadBytes(ctx context.Context, data []byte, mediaType string) error {
	url := ls.state.URLs.Create(data, mediaType)
	defer ls.state.URLs.Revoke(url)
	return ls.LoadImage(ctx, url)
}

// LoadClipboardImage loads the first raster image type of the first clipboard item.
// A clipboard that cannot be read is logged and otherwise ignored.
func (ls *LoadStage) LoadClipboardImage(ctx context.Context) error {
	if ls.clipboard == nil {
		ls.state.Logger.Warn("clipboard read unavailable")
		return nil
	}
	items, err := ls.clipboard.Read(ctx)
	if err != nil {
		ls.state.Logger.Warn("clipboard read failed", "err", err)
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	item := items[0]
	for _, t := range item.Types {
		if t == raster.MediaTypeSVG {
			ls.state.Alert(AlertSVGUnsupported)
			return ErrSVGUnsupported
		}
		if !raster.IsImage(t) {
			continue
		}
		data, err := item.Get(ctx, t)
		if err != nil {
			ls.state.Logger.Warn("clipboard read failed", "type", t, "err", err)
			return nil
		}
		return ls.loadBytes(ctx, data, t)
	}
	ls.state.Logger.Debug("no image on clipboard", "types", item.Types)
	return nil
}

// LoadExample loads a bundled example by name. Thumbnail names load the full image.
func (ls *LoadStage) LoadExample(ctx context.Context, name string) error {
	name = strings.TrimPrefix(name, examples.Scheme)
	return ls.LoadImage(ctx, examples.FullURL(examples.URL(name)))
}

// LoadImage fetches and decodes url, makes it the source of the filter stage,
// switches to the filter panel and applies the active filter.
func (ls *LoadStage) LoadImage(ctx context.Context, url string) error {
	data, err := ls.resolver.Fetch(ctx, url)
	if err != nil {
		ls.state.Logger.Error("failed to fetch image", "url", url, "err", err)
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	src, err := raster.Decode(data)
	if err != nil {
		ls.state.Logger.Error("failed to decode image", "url", url, "err", err)
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}

	ls.filters.SetSource(src)
	ls.state.Emit(app.EventImageLoaded, src)
	ls.state.ShowPanel(app.PanelFilter)
	ls.state.Emit(app.EventScrollIntoView, app.PanelFilter)
	ls.filters.Apply()
	return nil
}
