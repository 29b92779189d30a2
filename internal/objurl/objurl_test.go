package objurl

import (
	"errors"
	"testing"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	a := r.Create([]byte("a"), "image/png")
	b := r.Create([]byte("b"), "image/webp")
	if a == b {
		t.Fatalf("Create returned the same URL twice: %q", a)
	}
	if !IsObjectURL(a) {
		t.Errorf("IsObjectURL(%q) = false", a)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d; want 2", r.Len())
	}

	data, mt, err := r.Resolve(b)
	if err != nil || string(data) != "b" || mt != "image/webp" {
		t.Errorf("Resolve(%q) = %q, %q, %v", b, data, mt, err)
	}

	r.Revoke(a)
	r.Revoke(a)
	if _, _, err := r.Resolve(a); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve after Revoke: err = %v; want ErrNotFound", err)
	}
	if n := r.RevokeAll(); n != 1 {
		t.Errorf("RevokeAll = %d; want 1", n)
	}
	if r.Len() != 0 {
		t.Errorf("Len after RevokeAll = %d", r.Len())
	}
}

func TestIsObjectURL(t *testing.T) {
	for url, want := range map[string]bool{
		"blob:cv-npr/1":    true,
		"example:sunset":   false,
		"https://x/y.png":  false,
		"/tmp/blob:x.png":  false,
	} {
		if got := IsObjectURL(url); got != want {
			t.Errorf("IsObjectURL(%q) = %v; want %v", url, got, want)
		}
	}
}
