//go:build unix

package arena

import (
	"golang.org/x/sys/unix"
)

// Map returns an arena covering [base, base+size) backed by an anonymous
// private mapping. The mapping is released by Close.
func Map(base uint64, size int) (*Arena, error) {
	if err := validate(base, size); err != nil {
		return nil, err
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return &Arena{
		base: base,
		data: data,
		unmap: func() error {
			return unix.Munmap(data)
		},
	}, nil
}
