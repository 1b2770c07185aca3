package analysis

// SettleTick returns the first index from which every value of series stays
// at or below tol, or -1 if the series never settles.
func SettleTick(series []float64, tol float64) int {
	settled := -1
	for i, v := range series {
		switch {
		case v > tol:
			settled = -1
		case settled < 0:
			settled = i
		}
	}
	return settled
}

// Peak returns the largest value of series and its index, or (0, -1) for an
// empty series.
func Peak(series []float64) (float64, int) {
	if len(series) == 0 {
		return 0, -1
	}
	best, idx := series[0], 0
	for i, v := range series[1:] {
		if v > best {
			best, idx = v, i+1
		}
	}
	return best, idx
}
