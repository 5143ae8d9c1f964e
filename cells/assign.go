package cells

// Assignment is the result of sorting particles into cells: CellStart[c]
// is the offset into SortedIndices where cell c's members begin, and
// CellStart[c+1] (or len(SortedIndices) for the last cell) is where they
// end. Built once per step by the first pair kernel and reused by later
// kernels of the same step (spec.md §4.2, §4.3).
type Assignment struct {
	SortedIndices []int
	CellStart     []int
}

// Members returns the slice of particle indices belonging to cell c.
func (a *Assignment) Members(c int) []int {
	return a.SortedIndices[a.CellStart[c]:a.CellStart[c+1]]
}

// Assign performs a counting sort of the n particles described by
// rx/ry/rz into the grid's cells, producing an O(1)-iterable Assignment.
func (g *Grid) Assign(rx, ry, rz []float64) *Assignment {
	n := len(rx)
	numCells := g.NumCells()

	cellOfParticle := make([]int, n)
	counts := make([]int, numCells+1)
	for i := 0; i < n; i++ {
		ix, iy, iz := g.CellOf(rx[i], ry[i], rz[i])
		c := g.Flatten(ix, iy, iz)
		cellOfParticle[i] = c
		counts[c+1]++
	}
	for c := 0; c < numCells; c++ {
		counts[c+1] += counts[c]
	}

	cellStart := make([]int, numCells+1)
	copy(cellStart, counts)

	cursor := make([]int, numCells)
	copy(cursor, counts[:numCells])

	sorted := make([]int, n)
	for i := 0; i < n; i++ {
		c := cellOfParticle[i]
		sorted[cursor[c]] = i
		cursor[c]++
	}

	return &Assignment{SortedIndices: sorted, CellStart: cellStart}
}
