// Package utils provides small helpers shared by tests.
package utils

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
