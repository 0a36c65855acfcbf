//go:build nogpu

package gpu

// Building with the nogpu tag compiles this package to a no-op: nothing
// registers and backend.Default() selects the software backend.
