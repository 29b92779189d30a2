package panels

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"cv-npr/internal/filter"
	"cv-npr/internal/stage"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

// formatValue renders a parameter value with as many decimals as its step.
func formatValue(p filter.ParameterSpec, v float64) string {
	decimals := 0
	step := strconv.FormatFloat(p.Step, 'f', -1, 64)
	if i := strings.IndexByte(step, '.'); i >= 0 {
		decimals = len(step) - i - 1
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// readURI reads a whole file picked or dropped by the user.
func readURI(uri fyne.URI, r io.Reader) (stage.File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return stage.File{}, err
	}
	return stage.File{Name: uri.Name(), Data: data}, nil
}

// showLoadError reports failures that were not already surfaced as alerts.
func showLoadError(err error, win fyne.Window) {
	if err == nil || win == nil {
		return
	}
	if errors.Is(err, stage.ErrNotImage) || errors.Is(err, stage.ErrSVGUnsupported) || errors.Is(err, context.Canceled) {
		return
	}
	dialog.ShowError(err, win)
}
