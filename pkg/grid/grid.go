// Package grid maps between linear buffer indices and 2D cell coordinates.
package grid

// GetGridCoords converts a row-major index into (x, y) for a grid cols wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// GetIndex is the inverse of GetGridCoords.
func GetIndex(x, y, cols int) int {
	return y*cols + x
}
