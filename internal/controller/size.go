package controller

import "strconv"

const (
	// MaxSize is the largest row or column count offered by the size selector.
	MaxSize = 7

	// DefaultSizeIndex selects 3 in SizeOptions.
	DefaultSizeIndex = 2
)

// SizeOptions returns the labels "1".."max" offered for rows and columns.
func SizeOptions(max int) []string {
	if max < 1 {
		max = MaxSize
	}
	opts := make([]string, max)
	for i := range opts {
		opts[i] = strconv.Itoa(i + 1)
	}
	return opts
}

// SizeAt maps a selector index to a size.
func SizeAt(index int) int {
	return index + 1
}
