// Package clipboard reads the host clipboard and presents its content as typed items.
//
// The system clipboard only carries text through the binding, so the text is
// interpreted: a data: URI yields its embedded payload, an existing file path yields
// the file, and an http(s) URL yields a deferred fetch.
package clipboard

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"cv-npr/internal/raster"
)

// MaxItemSize bounds the payload read for a file or URL item.
const MaxItemSize = 256 << 20

var (
	ErrUnavailable = errors.New("clipboard unavailable")
	ErrNoType      = errors.New("clipboard item has no such type")
	ErrTooLarge    = errors.New("clipboard item too large")
)

// maxItemSize is MaxItemSize; tests lower it.
var maxItemSize int64 = MaxItemSize

// Item is one clipboard entry with its available media types in preference order.
type Item struct {
	Types []string
	get   func(ctx context.Context) ([]byte, error)
}

// Get returns the payload for mediaType.
func (it Item) Get(ctx context.Context, mediaType string) ([]byte, error) {
	for _, t := range it.Types {
		if t == mediaType {
			return it.get(ctx)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoType, mediaType)
}

// NewItem builds an in-memory item; used by hosts that hand over raw data.
func NewItem(mediaType string, data []byte) Item {
	return Item{
		Types: []string{mediaType},
		get:   func(context.Context) ([]byte, error) { return data, nil },
	}
}

// Reader is the clipboard-read surface the load stage consumes.
type Reader interface {
	Read(ctx context.Context) ([]Item, error)
}

// System reads the host clipboard.
type System struct {
	Client *http.Client
}

func (s System) Read(ctx context.Context) ([]Item, error) {
	if clipboard.Unsupported {
		return nil, ErrUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	return Interpret(text, client), nil
}

// Interpret turns clipboard text into items. Empty text yields no items; text that is
// none of the recognised forms yields a single text/plain item.
func Interpret(text string, client *http.Client) []Item {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "data:") {
		if mediaType, data, err := ParseDataURI(text); err == nil {
			return []Item{NewItem(mediaType, data)}
		}
	}
	if u, err := url.Parse(text); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return []Item{remoteItem(text, u, client)}
	}
	path := strings.TrimPrefix(text, "file://")
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return []Item{fileItem(path)}
	}
	return []Item{NewItem("text/plain", []byte(text))}
}

func fileItem(path string) Item {
	head := make([]byte, 512)
	n := 0
	if f, err := os.Open(path); err == nil {
		n, _ = io.ReadFull(f, head)
		f.Close()
	}
	mediaType := raster.DetectMediaType(path, head[:n])
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return Item{
		Types: []string{mediaType},
		get: func(context.Context) ([]byte, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return readLimited(f, path)
		},
	}
}

func remoteItem(raw string, u *url.URL, client *http.Client) Item {
	mediaType := raster.DetectMediaType(u.Path, nil)
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return Item{
		Types: []string{mediaType},
		get: func(ctx context.Context) ([]byte, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("fetch %s: %s", raw, resp.Status)
			}
			return readLimited(resp.Body, raw)
		},
	}
}

// readLimited reads r fully, failing once more than maxItemSize bytes arrive.
func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxItemSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxItemSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, maxItemSize)
	}
	return data, nil
}

// ParseDataURI decodes a data: URI into its media type and payload.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("data URI without payload")
	}
	isBase64 := false
	params := strings.Split(meta, ";")
	mediaType := params[0]
	for _, p := range params[1:] {
		if p == "base64" {
			isBase64 = true
		}
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("data URI: %w", err)
		}
		return mediaType, data, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("data URI: %w", err)
	}
	return mediaType, []byte(decoded), nil
}
