//go:build !linux && !darwin

package input

// flushInput is a no-op where the platform has no portable input flush.
func flushInput(int) error {
	return nil
}
