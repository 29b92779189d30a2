// Package objurl hands out blob: URLs for in-memory payloads. Every URL stays live
// until its creator revokes it.
package objurl

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

const scheme = "blob:"

var ErrNotFound = errors.New("object URL not found")

type object struct {
	data      []byte
	mediaType string
}

// Registry maps blob: URLs to payloads.
type Registry struct {
	mu      sync.RWMutex
	next    uint64
	objects map[string]object
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[string]object)}
}

// IsObjectURL reports whether url uses the blob: scheme.
func IsObjectURL(url string) bool {
	return strings.HasPrefix(url, scheme)
}

// Create registers data and returns its URL.
func (r *Registry) Create(data []byte, mediaType string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	url := fmt.Sprintf("%scv-npr/%d", scheme, r.next)
	r.objects[url] = object{data: data, mediaType: mediaType}
	return url
}

// Resolve returns the payload behind url.
func (r *Registry) Resolve(url string) ([]byte, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[url]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	return obj.data, obj.mediaType, nil
}

// Revoke releases url. Revoking an unknown URL is a no-op.
func (r *Registry) Revoke(url string) {
	r.mu.Lock()
	delete(r.objects, url)
	r.mu.Unlock()
}

// Len returns the number of live URLs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

// RevokeAll releases every live URL and returns how many there were.
func (r *Registry) RevokeAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.objects)
	r.objects = make(map[string]object)
	return n
}
