package pptx

import "math"

// EMU (English Metric Units) conversion helpers.
// 1 inch = 914400 EMU, 1 point = 12700 EMU.

const (
	EMUPerInch  = 914400
	EMUPerPoint = 12700

	// maxEMU is the maximum safe EMU value to prevent overflow.
	maxEMU = math.MaxInt64 / 2
)

// Inch converts inches to EMU, rounding to the nearest unit.
func Inch(n float64) int64 {
	return clampEMU(math.Round(n * EMUPerInch))
}

// Point converts points to EMU.
func Point(n float64) int64 {
	return clampEMU(math.Round(n * EMUPerPoint))
}

// EMUToInch converts EMU to inches.
func EMUToInch(emu int64) float64 {
	return float64(emu) / EMUPerInch
}

// EMUToPoint converts EMU to points.
func EMUToPoint(emu int64) float64 {
	return float64(emu) / EMUPerPoint
}

func clampEMU(v float64) int64 {
	if v > float64(maxEMU) {
		return maxEMU
	}
	if v < -float64(maxEMU) {
		return -maxEMU
	}
	return int64(v)
}
