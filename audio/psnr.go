package audio

import (
	"math"
)

// CalculatePSNR compares two byte sequences, +Inf meaning identical
func CalculatePSNR(original, repaired []byte) float64 {
	if len(original) != len(repaired) {
		return 0.0
	}

	if len(original) == 0 {
		return math.Inf(1)
	}

	var mse float64
	for i := range original {
		diff := float64(original[i]) - float64(repaired[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	// If MSE is 0, signals are identical
	if mse == 0 {
		return math.Inf(1)
	}

	// PSNR = 20 * log10(MAX_SIGNAL_VALUE / sqrt(MSE))
	maxSignalValue := 255.0
	return 20 * math.Log10(maxSignalValue/math.Sqrt(mse))
}

// CalculatePSNRSamples compares integer samples of the given bit depth
func CalculatePSNRSamples(original, repaired []int, bitDepth int) float64 {
	if len(original) != len(repaired) {
		return 0.0
	}

	if len(original) == 0 {
		return math.Inf(1)
	}

	var mse float64
	for i := range original {
		diff := float64(original[i] - repaired[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	if mse == 0 {
		return math.Inf(1)
	}

	maxSignalValue := math.Pow(2, float64(bitDepth-1))
	return 20 * math.Log10(maxSignalValue/math.Sqrt(mse))
}

func ValidatePSNR(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true // Infinite PSNR is always good
	}
	return psnr >= threshold
}
