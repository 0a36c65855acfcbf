package backend

import (
	"errors"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend name constants for the built-in backends.
const (
	// BackendSoftware is the CPU backend, always available.
	BackendSoftware = "software"

	// BackendGPU keeps bitmaps resident in GPU buffers via wgpu/hal.
	// Registered by importing backend/gpu.
	BackendGPU = "gpu"
)
