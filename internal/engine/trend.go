package engine

// Slope fits an ordinary least-squares line to values against a 0..n-1
// index and returns its slope. Fewer than two points give 0.
func Slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// SlopeWindow is Slope over at most the last window values.
func SlopeWindow(values []float64, window int) float64 {
	if window < len(values) {
		values = values[len(values)-window:]
	}
	return Slope(values)
}
