package mixedradix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	tests := []struct {
		name string
		dims []int
		want int
		ok   bool
	}{
		{name: "Qubits", dims: []int{2, 2, 2}, want: 8, ok: true},
		{name: "Heterogeneous", dims: []int{13, 17}, want: 221, ok: true},
		{name: "Empty", dims: nil, want: 1, ok: true},
		{name: "Zero", dims: []int{2, 0}, want: 0, ok: false},
		{name: "Negative", dims: []int{-3}, want: 0, ok: false},
		{name: "Overflow", dims: []int{1 << 31, 1 << 31, 1 << 31}, want: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Size(tt.dims)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStrides(t *testing.T) {
	assert.Equal(t, []int{4, 2, 1}, Strides([]int{2, 2, 2}))
	assert.Equal(t, []int{17, 1}, Strides([]int{13, 17}))
	assert.Equal(t, []int{1}, Strides([]int{5}))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	dims := []int{3, 2, 5}
	size, ok := Size(dims)
	require.True(t, ok)

	out := make([]int, len(dims))
	for i := 0; i < size; i++ {
		Decode(i, dims, out)
		for j, d := range out {
			assert.GreaterOrEqual(t, d, 0)
			assert.Less(t, d, dims[j])
			assert.Equal(t, d, Digit(i, dims, j))
		}
		assert.Equal(t, i, Encode(out, dims))
	}
}

func TestEncodeMostSignificantFirst(t *testing.T) {
	// Particle 0 carries the largest stride.
	dims := []int{2, 3}
	assert.Equal(t, 3, Encode([]int{1, 0}, dims))
	assert.Equal(t, 1, Encode([]int{0, 1}, dims))
}
