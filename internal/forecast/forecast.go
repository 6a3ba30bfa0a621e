// Package forecast projects next month's spend from a spending history using
// a weighted moving average, with a confidence score derived from the
// coefficient of variation of the observed months.
package forecast

import (
	"math"

	"pitaka/internal/spending"

	"github.com/shopspring/decimal"
)

// Trend is the direction recent spending is moving in.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Weights applied to the most recent non-zero months, newest first.
var Weights = []decimal.Decimal{
	decimal.RequireFromString("0.30"),
	decimal.RequireFromString("0.25"),
	decimal.RequireFromString("0.20"),
	decimal.RequireFromString("0.15"),
	decimal.RequireFromString("0.07"),
	decimal.RequireFromString("0.03"),
}

var (
	upperBand = decimal.RequireFromString("1.1")
	lowerBand = decimal.RequireFromString("0.9")
)

// trendSample is how many months from each end of the series are compared.
const trendSample = 2

// Prediction is the projected spend for the next month.
type Prediction struct {
	PredictedAmount decimal.Decimal `json:"predicted_amount"`
	Confidence      float64         `json:"confidence"`
	Trend           Trend           `json:"trend"`
}

// Predict projects the next month's spend from history, which must be ordered
// most recent first. With a non-nil categoryID only that category's spend is
// considered. Months with zero spend count as missing data.
func Predict(history []spending.Summary, categoryID *string) Prediction {
	values := observed(history, categoryID)
	if len(values) == 0 {
		return Prediction{PredictedAmount: decimal.Zero, Confidence: 0, Trend: TrendStable}
	}
	return Prediction{
		PredictedAmount: WeightedAverage(values),
		Confidence:      Confidence(values),
		Trend:           Classify(values),
	}
}

func observed(history []spending.Summary, categoryID *string) []decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(history))
	for _, month := range history {
		v := month.Total
		if categoryID != nil {
			v = month.CategoryTotal(*categoryID)
		}
		if v.IsPositive() {
			values = append(values, v)
		}
	}
	return values
}

// WeightedAverage applies Weights to up to len(Weights) leading values and
// divides by the sum of the weights used. The result is rounded to 2 dp.
func WeightedAverage(values []decimal.Decimal) decimal.Decimal {
	sum, weight := decimal.Zero, decimal.Zero
	for i, v := range values {
		if i >= len(Weights) {
			break
		}
		sum = sum.Add(v.Mul(Weights[i]))
		weight = weight.Add(Weights[i])
	}
	if weight.IsZero() {
		return decimal.Zero
	}
	return sum.DivRound(weight, 2)
}

// Classify compares the mean of the newest values against the mean of the
// oldest ones. A move of more than 10% either way is a trend.
func Classify(values []decimal.Decimal) Trend {
	if len(values) == 0 {
		return TrendStable
	}
	n := min(trendSample, len(values))
	recent := mean(values[:n])
	older := mean(values[len(values)-n:])

	switch {
	case recent.GreaterThan(older.Mul(upperBand)):
		return TrendIncreasing
	case recent.LessThan(older.Mul(lowerBand)):
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Confidence is 1 minus the coefficient of variation (population standard
// deviation over mean), clamped to [0, 1] and rounded to 2 dp.
func Confidence(values []decimal.Decimal) float64 {
	if len(values) == 0 {
		return 0
	}
	floats := make([]float64, len(values))
	var total float64
	for i, v := range values {
		floats[i] = v.InexactFloat64()
		total += floats[i]
	}
	avg := total / float64(len(floats))

	var sq float64
	for _, f := range floats {
		sq += (f - avg) * (f - avg)
	}
	stdDev := math.Sqrt(sq / float64(len(floats)))

	var cv float64
	if avg != 0 {
		cv = stdDev / avg
	}
	c := math.Max(0, math.Min(1, 1-cv))
	return math.Round(c*100) / 100
}

func mean(values []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}
