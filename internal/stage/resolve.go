package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"cv-npr/internal/clipboard"
	"cv-npr/internal/examples"
	"cv-npr/internal/objurl"
)

// MaxFetchSize bounds remote and local reads.
const MaxFetchSize = 256 << 20

var ErrUnsupportedURL = errors.New("unsupported URL")

// Resolver turns the URLs an image can be loaded from into bytes.
type Resolver struct {
	URLs     *objurl.Registry
	Examples *examples.Catalog
	// Client fetches http(s) URLs. The composition root installs the offline
	// cache transport here.
	Client *http.Client
}

// Fetch returns the payload behind url. Supported forms are blob:, example:, data:,
// file: and plain paths, and http(s).
func (r *Resolver) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	switch {
	case objurl.IsObjectURL(rawURL):
		data, _, err := r.URLs.Resolve(rawURL)
		return data, err
	case examples.IsExampleURL(rawURL):
		if r.Examples == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL)
		}
		return r.Examples.Fetch(rawURL)
	case strings.HasPrefix(rawURL, "data:"):
		_, data, err := clipboard.ParseDataURI(rawURL)
		return data, err
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		return r.fetchHTTP(ctx, rawURL)
	case strings.HasPrefix(rawURL, "file://"):
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, err
		}
		return readFile(u.Path)
	case strings.Contains(rawURL, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL)
	default:
		return readFile(rawURL)
	}
}

func (r *Resolver) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", rawURL, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize))
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, MaxFetchSize))
}
