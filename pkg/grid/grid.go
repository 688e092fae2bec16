package grid

// GetGridCoords returns the column and row of a linear index laid out in rows
// of cols cells.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Rows returns how many rows of cols cells are needed to hold n items.
func Rows(n, cols int) int {
	if n <= 0 {
		return 0
	}
	return (n + cols - 1) / cols
}
