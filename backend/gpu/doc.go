// Package gpu keeps buffer pixel storage resident in GPU buffers via
// gogpu/wgpu's hardware abstraction layer.
//
// The live bitmap is a GPU storage buffer with a CPU shadow: per-pixel
// blend math runs on the shadow and changed regions are uploaded, while
// checkpoint snapshots and restores are GPU buffer-to-buffer copies that
// never round-trip pixels through the host. Checkpoint memory therefore
// lives on the GPU instead of competing with the process heap.
//
// Importing the package registers the "gpu" backend:
//
//	import _ "github.com/gogpu/easel/backend/gpu"
//
// If no usable adapter is found the registration factory returns nil and
// backend.Default() falls through to the software backend. Building with
// the nogpu tag compiles the package to a no-op.
package gpu
