package meshing

import "errors"

var (
	// ErrCancelled aborts a build between direction passes after its job was
	// superseded. Never published to the results channel.
	ErrCancelled = errors.New("meshing: build cancelled")

	// ErrOverflow means geometry is not representable in the compact vertex
	// layout; the build retries with the full-precision layout.
	ErrOverflow = errors.New("meshing: geometry exceeds compact layout range")
)
