// Package ptr provides helper functions for creating pointers to primitive types.
package ptr

// Bool returns a pointer to the given bool value.
func Bool(b bool) *bool { return &b }

// Int64 returns a pointer to the given int64 value.
func Int64(i int64) *int64 { return &i }
