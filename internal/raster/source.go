// Package raster holds decoded image sources and the RGBA buffers the filters read and write.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageWidth  = 16384
	MaxImageHeight = 16384
)

// MediaTypeSVG is the one image type the vision library cannot consume.
const MediaTypeSVG = "image/svg+xml"

var ErrTooLarge = errors.New("image too large")

// Source is a decoded image. It is never mutated; each load supersedes it.
type Source struct {
	Image     image.Image
	Format    string // decoder name, e.g. "png"
	MediaType string
}

// Width returns the intrinsic width in pixels.
func (s *Source) Width() int {
	return s.Image.Bounds().Dx()
}

// Height returns the intrinsic height in pixels.
func (s *Source) Height() int {
	return s.Image.Bounds().Dy()
}

// Decode decodes raw image bytes with every registered decoder.
func Decode(data []byte) (*Source, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width > MaxImageWidth || cfg.Height > MaxImageHeight {
		return nil, fmt.Errorf("%w: %dx%d (max %dx%d)", ErrTooLarge,
			cfg.Width, cfg.Height, MaxImageWidth, MaxImageHeight)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Source{
		Image:     img,
		Format:    format,
		MediaType: "image/" + format,
	}, nil
}

// NewSource wraps an already decoded image.
func NewSource(img image.Image) *Source {
	return &Source{Image: img, Format: "memory", MediaType: "image/png"}
}

// DetectMediaType guesses the media type of a payload from its name first and its
// leading bytes second.
func DetectMediaType(name string, data []byte) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		if ext == ".svg" || ext == ".svgz" {
			return MediaTypeSVG
		}
		if t := mime.TypeByExtension(ext); t != "" {
			if mt, _, err := mime.ParseMediaType(t); err == nil {
				return mt
			}
		}
	}
	if len(data) == 0 {
		return ""
	}
	if looksLikeSVG(data) {
		return MediaTypeSVG
	}
	if bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")) {
		return "image/tiff"
	}
	mt, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}
	return mt
}

// IsImage reports whether a media type names an image of any kind.
func IsImage(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.TrimSpace(head)
	if bytes.HasPrefix(head, []byte("<?xml")) || bytes.HasPrefix(head, []byte("<svg")) {
		return bytes.Contains(head, []byte("<svg"))
	}
	return false
}
