package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_U64LE_RoundTrip(t *testing.T) {
	b := make([]byte, 8)
	PutU64LE(b, 0xDEADBEEFCAFEF00D)
	assert.Equal(t, uint64(0xDEADBEEFCAFEF00D), U64LE(b))
}

func Test_U64LE_Short(t *testing.T) {
	short := make([]byte, 7)
	assert.Equal(t, uint64(0), U64LE(short))

	// PutU64LE on a short buffer must not write anything.
	PutU64LE(short, 0xFFFFFFFFFFFFFFFF)
	for i, v := range short {
		assert.Zerof(t, v, "byte %d modified", i)
	}
}
