package offline

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var nopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestPutGet(t *testing.T) {
	c, err := Open(t.TempDir(), Version, nopLogger)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Get("https://x/a"); err == nil {
		t.Fatal("Get on empty cache succeeded")
	}
	if err := c.Put("https://x/a", "image/png", []byte("hello")); err != nil {
		t.Fatal(err)
	}
	body, ct, err := c.Get("https://x/a")
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "hello" || ct != "image/png" {
		t.Errorf("Get = %q, %q", body, ct)
	}
}

func TestInstallAndTransport(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/wasm")
		io.WriteString(w, "body:"+r.URL.Path)
	}))
	defer srv.Close()

	c, err := Open(t.TempDir(), Version, nopLogger)
	if err != nil {
		t.Fatal(err)
	}
	urls := []string{srv.URL + "/a", srv.URL + "/b"}
	if err := c.Install(context.Background(), srv.Client(), urls); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Fatalf("server hits after install = %d; want 2", hits.Load())
	}

	client := &http.Client{Transport: &Transport{Cache: c, Next: srv.Client().Transport}}
	for _, u := range urls {
		resp, err := client.Get(u)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		want := "body:" + u[len(srv.URL):]
		if string(body) != want {
			t.Errorf("GET %s = %q; want %q", u, body, want)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/wasm" {
			t.Errorf("content type = %q", ct)
		}
	}
	if hits.Load() != 2 {
		t.Errorf("cached GETs reached the server: hits = %d", hits.Load())
	}

	// Misses fall through.
	resp, err := client.Get(srv.URL + "/c")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if hits.Load() != 3 {
		t.Errorf("miss did not reach the server: hits = %d", hits.Load())
	}
}

func TestInstallFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c, err := Open(t.TempDir(), Version, nopLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Install(context.Background(), srv.Client(), []string{srv.URL + "/missing"}); err == nil {
		t.Fatal("Install succeeded against 404")
	}
}

func TestActivateRemovesOtherVersions(t *testing.T) {
	root := t.TempDir()
	old, err := Open(root, "2024-01-01 00:00", nopLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := old.Put("u", "", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "unrelated"), 0755); err != nil {
		t.Fatal(err)
	}

	cur, err := Open(root, Version, nopLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := cur.Activate(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"unrelated", dirName(Version)}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("root after Activate (-want +got):\n%s", diff)
	}
}

func TestDirName(t *testing.T) {
	if got := dirName("2025-02-24 00:00"); got != "v2025-02-24_00-00" {
		t.Errorf("dirName = %q", got)
	}
}

func TestManifest(t *testing.T) {
	got := Manifest("https://cdn.example/", "opencv/simd/opencv_js.wasm",
		[]string{"index.html", "https://other/x.js", "index.html"})
	want := []string{
		"https://cdn.example/index.html",
		"https://other/x.js",
		"https://cdn.example/opencv/simd/opencv_js.wasm",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Manifest (-want +got):\n%s", diff)
	}
}
