// Package backend provides a pluggable pixel-storage backend registry.
//
// The backend package lets easel keep a buffer's live bitmap and its
// checkpoint snapshots on either the CPU or the GPU without the core
// engine caring which. The engine only sees the easel.Backend,
// easel.Bitmap and easel.Rasterizer contracts.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The software backend is automatically registered on import:
//
//	import _ "github.com/gogpu/easel/backend"
//
// The GPU backend registers itself when its package is imported and a
// usable adapter exists:
//
//	import _ "github.com/gogpu/easel/backend/gpu"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	// Get the default (best available) backend
//	b := backend.Default()
//
//	// Or request a specific backend
//	b := backend.Get("software")
//
// # Usage with Picture
//
//	pic, err := easel.NewPicture(800, 600, easel.WithBackend(backend.MustDefault()))
//
// # Available Backends
//
// - "software": CPU pixel storage (always available)
// - "gpu": GPU-resident pixel storage via gogpu/wgpu hal
package backend
