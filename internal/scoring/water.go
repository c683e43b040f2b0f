package scoring

import "strconv"

// WaterWindow is how many hours before the current one feed the water
// temperature estimate. The window holds WaterWindow+1 samples.
const WaterWindow = 72

// EstimateWaterTemp approximates water temperature as the causal mean of air
// temperatures over the window ending at index, rounded to 0.1°C.
// The caller guarantees 0 <= index < len(temps).
func EstimateWaterTemp(temps []float64, index int) float64 {
	start := index - WaterWindow
	if start < 0 {
		start = 0
	}
	window := temps[start : index+1]
	if len(window) == 0 {
		return temps[index]
	}

	var sum float64
	for _, v := range window {
		sum += v
	}
	return roundTenth(sum / float64(len(window)))
}

// roundTenth rounds the decimal value of v to one place, ties to even
func roundTenth(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}
