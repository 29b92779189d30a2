package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestShowPanelEmitsOnChange(t *testing.T) {
	s := NewState(nil, ImmediateScheduler{})
	var got []Panel
	s.On(EventPanelChanged, func(data interface{}) {
		got = append(got, data.(Panel))
	})

	s.ShowPanel(PanelLoad) // already visible
	s.ShowPanel(PanelFilter)
	s.ShowPanel(PanelFilter)
	s.ShowPanel(PanelLoad)

	if diff := cmp.Diff([]Panel{PanelFilter, PanelLoad}, got); diff != "" {
		t.Errorf("panel events (-want +got):\n%s", diff)
	}
	if s.Visible() != PanelLoad {
		t.Errorf("Visible = %v", s.Visible())
	}
}

func TestSetBusy(t *testing.T) {
	s := NewState(nil, ImmediateScheduler{})
	var got []bool
	s.On(EventBusyChanged, func(data interface{}) { got = append(got, data.(bool)) })
	s.SetBusy(true)
	s.SetBusy(true)
	s.SetBusy(false)
	if diff := cmp.Diff([]bool{true, false}, got); diff != "" {
		t.Errorf("busy events (-want +got):\n%s", diff)
	}
}

func TestCloseRevokesLeftoverURLs(t *testing.T) {
	q := NewQueueScheduler()
	s := NewState(nil, q)
	s.URLs.Create([]byte("x"), "image/png")
	s.Close()
	if s.URLs.Len() != 0 {
		t.Errorf("%d URLs survived Close", s.URLs.Len())
	}
	// Defer after Close is dropped, not run and not blocking.
	s.Scheduler.Defer(func() { t.Errorf("deferred function ran after Close") })
}

func TestQueueSchedulerOrder(t *testing.T) {
	q := NewQueueScheduler()
	var (
		mu  sync.Mutex
		got []int
		wg  sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		q.Defer(func() {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not drain")
	}
	q.Close()
	q.Close()

	for i, v := range got {
		if v != i {
			t.Fatalf("ran out of order: %v", got)
		}
	}
}

func TestManualScheduler(t *testing.T) {
	var m ManualScheduler
	var got []string
	m.Defer(func() {
		got = append(got, "a")
		m.Defer(func() { got = append(got, "c") })
	})
	m.Defer(func() { got = append(got, "b") })
	if m.Pending() != 2 {
		t.Errorf("Pending = %d", m.Pending())
	}
	m.Flush()
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("flush order (-want +got):\n%s", diff)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	} {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestHotReloaderDetectsNewerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin")
	if err := os.WriteFile(path, []byte("v1"), 0755); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}
	h, err := NewHotReloader(path, 5*time.Millisecond, slog.New(discardHandler{}))
	if err != nil {
		t.Fatal(err)
	}
	fired := make(chan struct{}, 1)
	h.OnNewBinary(func() { fired <- struct{}{} })
	h.Start()
	defer h.Stop()

	if err := os.Chtimes(path, time.Now(), time.Now()); err != nil {
		t.Fatal(err)
	}
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("newer binary not reported")
	}

	h.ResetBaseline()
	if h.newer() {
		t.Error("newer after ResetBaseline")
	}
}
