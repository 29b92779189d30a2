// Package app provides the application context shared by the stages: the visible
// panel, busy state, object URLs, the scheduler and the event bus.
package app

import (
	"log/slog"
	"sync"

	"cv-npr/internal/objurl"
)

// Panel identifies one of the two mutually exclusive panels.
type Panel int

const (
	PanelLoad Panel = iota
	PanelFilter
)

func (p Panel) String() string {
	if p == PanelFilter {
		return "filter"
	}
	return "load"
}

// EventType identifies different application events.
type EventType int

const (
	// EventPanelChanged carries the newly visible Panel.
	EventPanelChanged EventType = iota
	// EventScrollIntoView carries the Panel that asked to be scrolled into view.
	EventScrollIntoView
	// EventAlert carries a user-facing message string.
	EventAlert
	// EventImageLoaded carries the loaded *raster.Source.
	EventImageLoaded
	// EventFilterSelected carries FilterSelection.
	EventFilterSelected
	// EventParameterChanged carries ParameterChange.
	EventParameterChanged
	// EventBusyChanged carries a bool.
	EventBusyChanged
	// EventWorkingUpdated fires after a filter wrote the working buffer.
	EventWorkingUpdated
	// EventApplyFailed carries the error returned by the engine.
	EventApplyFailed
	// EventDownloaded carries the saved file name.
	EventDownloaded
	// EventPreviewToggled carries true when the original is being shown.
	EventPreviewToggled
)

// FilterSelection is the payload of EventFilterSelected.
type FilterSelection struct {
	Previous string
	Current  string
}

// ParameterChange is the payload of EventParameterChanged.
type ParameterChange struct {
	Filter string
	Name   string
	Value  float64
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State is the application context. It replaces process-wide singletons: the
// composition root creates one, hands it to every stage and closes it on exit.
type State struct {
	mu sync.RWMutex

	Logger    *slog.Logger
	URLs      *objurl.Registry
	Scheduler Scheduler

	visible Panel
	busy    bool

	listeners map[EventType][]EventListener
}

// NewState creates the application context. A nil logger discards output.
func NewState(logger *slog.Logger, scheduler Scheduler) *State {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &State{
		Logger:    logger,
		URLs:      objurl.NewRegistry(),
		Scheduler: scheduler,
		visible:   PanelLoad,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Visible returns the panel currently shown.
func (s *State) Visible() Panel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// ShowPanel makes p the only visible panel.
func (s *State) ShowPanel(p Panel) {
	s.mu.Lock()
	changed := s.visible != p
	s.visible = p
	s.mu.Unlock()
	if changed {
		s.Logger.Debug("panel changed", "panel", p)
		s.Emit(EventPanelChanged, p)
	}
}

// Busy reports whether a filter computation is pending or running.
func (s *State) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// SetBusy updates the busy flag and notifies listeners, which repaint before the
// deferred computation starts.
func (s *State) SetBusy(busy bool) {
	s.mu.Lock()
	changed := s.busy != busy
	s.busy = busy
	s.mu.Unlock()
	if changed {
		s.Emit(EventBusyChanged, busy)
	}
}

// Alert surfaces a blocking message to the user.
func (s *State) Alert(msg string) {
	s.Logger.Info("alert", "message", msg)
	s.Emit(EventAlert, msg)
}

// Close stops the scheduler and releases object URLs that were never revoked.
func (s *State) Close() {
	if c, ok := s.Scheduler.(interface{ Close() }); ok {
		c.Close()
	}
	if n := s.URLs.RevokeAll(); n > 0 {
		s.Logger.Warn("object URLs still live at shutdown", "count", n)
	}
}
