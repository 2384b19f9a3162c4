//go:build !cgo

package index

// Without cgo the mattn driver is a stub that never returns its error type.
func mattnResultCode(error) (int, bool) { return 0, false }
