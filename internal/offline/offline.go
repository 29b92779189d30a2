// Package offline keeps a versioned on-disk copy of the assets the application
// fetches over HTTP, so a later start can run without the network.
//
// Entries live under <root>/<version>/ as zstd-compressed bodies next to a small
// sidecar holding the content type. A version is identified by a timestamp string;
// activating one removes the directories of every other version.
package offline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"
)

// Version identifies the current asset set.
const Version = "2025-02-24 00:00"

// MaxConcurrentFetches bounds Install's parallelism.
const MaxConcurrentFetches = 4

var ErrNotCached = errors.New("not cached")

// Cache is one version of the asset cache.
type Cache struct {
	root    string
	version string
	dir     string
	logger  *slog.Logger
}

// Open prepares the cache directory for version under root.
func Open(root, version string, logger *slog.Logger) (*Cache, error) {
	dir := filepath.Join(root, dirName(version))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Cache{root: root, version: version, dir: dir, logger: logger}, nil
}

// dirName turns a version into a portable directory name.
func dirName(version string) string {
	r := strings.NewReplacer(" ", "_", ":", "-", "/", "-", "\\", "-")
	return "v" + r.Replace(version)
}

// Version returns the cache's version identifier.
func (c *Cache) Version() string {
	return c.version
}

func (c *Cache) entryPath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:]))
}

// Put stores body for url.
func (c *Cache) Put(url, contentType string, body []byte) error {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	defer enc.Close()
	compressed := enc.EncodeAll(body, nil)

	path := c.entryPath(url)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0644); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	if err := os.WriteFile(path+".type", []byte(contentType), 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write entry type: %w", err)
	}
	return os.Rename(tmp, path)
}

// Get returns the cached body and content type for url, or ErrNotCached.
func (c *Cache) Get(url string) ([]byte, string, error) {
	path := c.entryPath(url)
	compressed, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("%w: %s", ErrNotCached, url)
	}
	if err != nil {
		return nil, "", err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, "", err
	}
	defer dec.Close()
	body, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, "", fmt.Errorf("corrupt entry for %s: %w", url, err)
	}
	contentType, _ := os.ReadFile(path + ".type")
	return body, string(contentType), nil
}

// Install fetches every URL and stores it. Fetches run concurrently; the first
// failure cancels the rest and is returned.
func (c *Cache) Install(ctx context.Context, client *http.Client, urls []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentFetches)
	for _, url := range urls {
		url := url
		g.Go(func() error {
			return c.fetch(ctx, client, url)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("offline install %s: %w", c.version, err)
	}
	c.logger.Info("offline assets installed", "version", c.version, "count", len(urls))
	return nil
}

func (c *Cache) fetch(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	return c.Put(url, resp.Header.Get("Content-Type"), body)
}

// Activate deletes the directories of all other cache versions under root.
func (c *Cache) Activate() error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return err
	}
	keep := dirName(c.version)
	var errs []error
	for _, e := range entries {
		if !e.IsDir() || e.Name() == keep || !strings.HasPrefix(e.Name(), "v") {
			continue
		}
		if err := os.RemoveAll(filepath.Join(c.root, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		c.logger.Info("removed stale offline cache", "dir", e.Name())
	}
	return errors.Join(errs...)
}

// Transport serves cached GET responses from disk and sends everything else to next.
type Transport struct {
	Cache *Cache
	Next  http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodGet || req.Method == "" {
		body, contentType, err := t.Cache.Get(req.URL.String())
		if err == nil {
			header := make(http.Header)
			if contentType != "" {
				header.Set("Content-Type", contentType)
			}
			return &http.Response{
				Status:        "200 OK",
				StatusCode:    http.StatusOK,
				Proto:         "HTTP/1.1",
				ProtoMajor:    1,
				ProtoMinor:    1,
				Header:        header,
				Body:          io.NopCloser(bytes.NewReader(body)),
				ContentLength: int64(len(body)),
				Request:       req,
			}, nil
		}
		if !errors.Is(err, ErrNotCached) {
			t.Cache.logger.Warn("offline cache read failed", "url", req.URL.String(), "err", err)
		}
	}
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(req)
}

// Manifest lists the URLs to install: the configured assets plus the engine
// asset for the selected variant under base.
func Manifest(base string, variantAsset string, assets []string) []string {
	base = strings.TrimSuffix(base, "/")
	out := make([]string, 0, len(assets)+1)
	seen := make(map[string]bool)
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	for _, a := range assets {
		if strings.Contains(a, "://") || base == "" {
			add(a)
		} else {
			add(base + "/" + strings.TrimPrefix(a, "/"))
		}
	}
	if base != "" && variantAsset != "" {
		add(base + "/" + variantAsset)
	}
	return out
}
