//go:build !nogpu

package gpu

import (
	"sync"

	"github.com/gogpu/easel"
	"github.com/gogpu/easel/backend"
)

// shared opens the device once; every factory call hands out the same
// backend so all bitmaps share one queue.
var shared = sync.OnceValues(New)

// init registers the GPU backend on package import:
//
//	import _ "github.com/gogpu/easel/backend/gpu"
//
// When no usable adapter exists the factory returns nil and
// backend.Default() falls through to the software backend.
func init() {
	backend.Register(backend.BackendGPU, func() easel.Backend {
		b, err := shared()
		if err != nil {
			easel.Logger().Warn("gpu backend unavailable, falling back", "err", err)
			return nil
		}
		return b
	})
}
