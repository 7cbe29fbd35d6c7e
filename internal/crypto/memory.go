package crypto

import (
	"runtime"
)

// ZeroBytes securely zeroes out a byte slice.
// This should be called after using sensitive data like private keys.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	// Prevent compiler from optimizing away the zeroing
	runtime.KeepAlive(b)
}
