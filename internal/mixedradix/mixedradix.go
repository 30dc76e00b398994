// Package mixedradix converts between flat basis-state indices and
// per-particle digit vectors for heterogeneous radices.
//
// Particle 0 is the most-significant digit: for dims [d0, d1, d2] the flat
// index of digits [a, b, c] is a*d1*d2 + b*d2 + c.
package mixedradix

import "math"

// Size returns the product of dims. ok is false if the product does not
// fit in an int (or any radix is non-positive).
func Size(dims []int) (size int, ok bool) {
	size = 1
	for _, d := range dims {
		if d <= 0 {
			return 0, false
		}
		if size > math.MaxInt/d {
			return 0, false
		}
		size *= d
	}
	return size, true
}

// Strides returns the flat-index stride of each digit position.
// strides[i] is the product of dims[i+1:].
func Strides(dims []int) []int {
	strides := make([]int, len(dims))
	acc := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= dims[i]
	}
	return strides
}

// Encode packs digits into a flat index. Digits must satisfy
// 0 <= digits[i] < dims[i]; violations are the caller's bug.
func Encode(digits, dims []int) int {
	index := 0
	for i, d := range digits {
		index = index*dims[i] + d
	}
	return index
}

// Decode unpacks a flat index into out, which must have len(dims).
func Decode(index int, dims []int, out []int) {
	for i := len(dims) - 1; i >= 0; i-- {
		out[i] = index % dims[i]
		index /= dims[i]
	}
}

// Digit extracts the digit at position i without decoding the full index.
func Digit(index int, dims []int, i int) int {
	for j := len(dims) - 1; j > i; j-- {
		index /= dims[j]
	}
	return index % dims[i]
}
