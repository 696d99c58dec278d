package forecast

import (
	"math"

	"CoinPulse/internal/domain/models"
)

// BuildFeatures derives the feature matrix from candles, one row per candle
// in the same order. Rolling and lag columns that need more history than
// exists at a row are zero-filled rather than dropped, so row i of the output
// always corresponds to candle i.
//
// Columns, in schema order:
//
//	close       raw close price
//	ma7         trailing 7-row mean of close, defined from row 6
//	ma30        trailing 30-row mean of close, defined from row 29
//	volatility  trailing 7-row sample std of close, defined from row 6
//	lag1        close one row earlier, defined from row 1
//	lag7        close seven rows earlier, defined from row 7
//	hl_ratio    high divided by low
//	co_ratio    close divided by open
func BuildFeatures(candles []models.Candle) ([][]float64, error) {
	n := len(candles)
	matrix := make([][]float64, n)

	for i, c := range candles {
		if c.Low == 0 {
			return nil, models.Ef(models.ErrFeatureComputation, "", "row %d: low price is zero", i)
		}
		if c.Open == 0 {
			return nil, models.Ef(models.ErrFeatureComputation, "", "row %d: open price is zero", i)
		}

		row := make([]float64, len(featureColumns))
		row[0] = c.Close
		if i >= 6 {
			row[1] = trailingMean(candles, i, 7)
			row[3] = trailingStd(candles, i, 7)
		}
		if i >= 29 {
			row[2] = trailingMean(candles, i, 30)
		}
		if i >= 1 {
			row[4] = candles[i-1].Close
		}
		if i >= 7 {
			row[5] = candles[i-7].Close
		}
		row[6] = c.High / c.Low
		row[7] = c.Close / c.Open

		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, models.Ef(models.ErrFeatureComputation, "", "row %d: column %s is not finite", i, featureColumns[j])
			}
		}
		matrix[i] = row
	}
	return matrix, nil
}

// trailingMean averages close over the span rows ending at index i inclusive.
func trailingMean(candles []models.Candle, i, span int) float64 {
	sum := 0.0
	for k := i - span + 1; k <= i; k++ {
		sum += candles[k].Close
	}
	return sum / float64(span)
}

// trailingStd is the sample standard deviation (n-1 divisor) of close over
// the span rows ending at index i inclusive.
func trailingStd(candles []models.Candle, i, span int) float64 {
	mean := trailingMean(candles, i, span)
	sum := 0.0
	for k := i - span + 1; k <= i; k++ {
		d := candles[k].Close - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(span-1))
}
