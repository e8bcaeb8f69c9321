package neat

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// LossFunc scores a predicted vector against its target. Lower is better.
// Implementations iterate over the predicted values; target must be at least as long.
type LossFunc func(predicted, target []float64) float64

// lossEpsilon floors denominators and logarithm arguments.
const lossEpsilon = 1e-15

// LossFunctions maps loss names to implementations.
var LossFunctions = map[string]LossFunc{
	"mse":    MSELoss,
	"mbe":    MBELoss,
	"binary": BinaryLoss,
	"mae":    MAELoss,
	"mape":   MAPELoss,
	"wape":   WAPELoss,
	"msle":   MSLELoss,
	"hinge":  HingeLoss,
}

// GetLoss retrieves a loss function by name.
func GetLoss(name string) (LossFunc, error) {
	if fn, ok := LossFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown loss function: %s", name)
}

// LossNames returns the registered loss names in sorted order.
func LossNames() []string {
	names := make([]string, 0, len(LossFunctions))
	for name := range LossFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// meanOf averages term(i) over the predicted indices.
func meanOf(predicted []float64, term func(i int) float64) float64 {
	if len(predicted) == 0 {
		return 0
	}
	terms := make([]float64, len(predicted))
	for i := range predicted {
		terms[i] = term(i)
	}
	return floats.Sum(terms) / float64(len(predicted))
}

// MSELoss is the mean squared error.
func MSELoss(predicted, target []float64) float64 {
	return meanOf(predicted, func(i int) float64 {
		d := target[i] - predicted[i]
		return d * d
	})
}

// MBELoss is the mean bias error. It is signed, so it suits reporting more than ranking.
func MBELoss(predicted, target []float64) float64 {
	return meanOf(predicted, func(i int) float64 {
		return target[i] - predicted[i]
	})
}

// BinaryLoss is the fraction of outputs that land in a different half-unit bucket
// than their target.
func BinaryLoss(predicted, target []float64) float64 {
	return meanOf(predicted, func(i int) float64 {
		if math.Round(target[i]*2) != math.Round(predicted[i]*2) {
			return 1
		}
		return 0
	})
}

// MAELoss is the mean absolute error.
func MAELoss(predicted, target []float64) float64 {
	return meanOf(predicted, func(i int) float64 {
		return math.Abs(target[i] - predicted[i])
	})
}

// MAPELoss is the mean absolute percentage error, with the target floored at 1e-15.
func MAPELoss(predicted, target []float64) float64 {
	return meanOf(predicted, func(i int) float64 {
		return math.Abs((predicted[i] - target[i]) / math.Max(target[i], lossEpsilon))
	})
}

// WAPELoss is the weighted absolute percentage error: total absolute error over the
// total target.
func WAPELoss(predicted, target []float64) float64 {
	if len(predicted) == 0 {
		return 0
	}
	diff := make([]float64, len(predicted))
	for i := range predicted {
		diff[i] = math.Abs(target[i] - predicted[i])
	}
	return floats.Sum(diff) / math.Max(floats.Sum(target[:len(predicted)]), lossEpsilon)
}

// MSLELoss is the mean squared logarithmic error, with both sides floored at 1e-15.
func MSLELoss(predicted, target []float64) float64 {
	return meanOf(predicted, func(i int) float64 {
		d := math.Log(math.Max(target[i], lossEpsilon)) - math.Log(math.Max(predicted[i], lossEpsilon))
		return d * d
	})
}

// HingeLoss is the mean hinge loss for targets in {-1, 1}.
func HingeLoss(predicted, target []float64) float64 {
	return meanOf(predicted, func(i int) float64 {
		return math.Max(0, 1-predicted[i]*target[i])
	})
}
