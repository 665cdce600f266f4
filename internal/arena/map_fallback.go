//go:build !unix

package arena

// Map falls back to a heap-backed arena on platforms without anonymous
// memory mappings.
func Map(base uint64, size int) (*Arena, error) {
	return New(base, size)
}
