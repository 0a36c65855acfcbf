package backend

import (
	"testing"

	"github.com/gogpu/easel"
)

func TestSoftwareRegistered(t *testing.T) {
	if !IsRegistered(BackendSoftware) {
		t.Fatal("software backend should self-register")
	}
	b := Get(BackendSoftware)
	if b == nil {
		t.Fatal("Get(software) returned nil")
	}
	if b.Name() != BackendSoftware {
		t.Errorf("Name() = %q, want %q", b.Name(), BackendSoftware)
	}
}

func TestGetUnknown(t *testing.T) {
	if b := Get("quantum"); b != nil {
		t.Errorf("Get(unknown) = %v, want nil", b)
	}
	if IsRegistered("quantum") {
		t.Error("IsRegistered(unknown) = true")
	}
}

func TestDefaultFallsBackToSoftware(t *testing.T) {
	// Without the gpu package imported, software is the best available.
	b := Default()
	if b == nil {
		t.Fatal("Default() returned nil")
	}
	if _, err := b.NewBitmap(4, 4, easel.BitmapOptions{}); err != nil {
		t.Errorf("default backend cannot create bitmaps: %v", err)
	}
}

func TestDefaultSkipsNilFactories(t *testing.T) {
	Register(BackendGPU, func() easel.Backend { return nil })
	defer Unregister(BackendGPU)

	b := Default()
	if b == nil || b.Name() != BackendSoftware {
		t.Errorf("Default() should skip unavailable backends, got %v", b)
	}
}

func TestRegisterUnregister(t *testing.T) {
	Register("custom", func() easel.Backend { return easel.SoftwareBackend{} })
	if !IsRegistered("custom") {
		t.Fatal("custom backend should be registered")
	}
	Unregister("custom")
	if IsRegistered("custom") {
		t.Error("custom backend should be gone")
	}
}

func TestMustDefault(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("MustDefault() panicked with software registered: %v", r)
		}
	}()
	if MustDefault() == nil {
		t.Error("MustDefault() = nil")
	}
}
