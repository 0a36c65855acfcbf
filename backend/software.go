package backend

import (
	"github.com/gogpu/easel"
)

// init registers the CPU backend. It is always available, so a plain
// import of this package guarantees Default() returns something.
func init() {
	Register(BackendSoftware, func() easel.Backend {
		return easel.SoftwareBackend{}
	})
}
