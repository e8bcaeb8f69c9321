package neat

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// ActivationFunc is a pure scalar function applied to a node's summed input.
type ActivationFunc func(x float64) float64

var activationsMu sync.RWMutex

// ActivationFunctions maps function names to the actual activation functions.
// Genome options refer to activations by name so that snapshots stay serialisable.
var ActivationFunctions = map[string]ActivationFunc{
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"identity": Identity,
	"clamped":  Clamped,
	"gaussian": Gaussian,
	"absolute": Absolute,
	"abs":      Absolute, // Alias for absolute
	"sine":     Sine,
	"cosine":   Cosine,
	"inv":      Inv,
	"log":      Log,
	"exp":      Exp,
	"hat":      Hat,
	"square":   Square,
	"cube":     Cube,
}

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationFunc, error) {
	activationsMu.RLock()
	defer activationsMu.RUnlock()
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// RegisterActivation adds or replaces a named activation function.
func RegisterActivation(name string, fn ActivationFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("activation registration needs a name and a function")
	}
	activationsMu.Lock()
	defer activationsMu.Unlock()
	ActivationFunctions[name] = fn
	return nil
}

// ActivationNames returns the registered names in sorted order.
func ActivationNames() []string {
	activationsMu.RLock()
	defer activationsMu.RUnlock()
	names := make([]string, 0, len(ActivationFunctions))
	for name := range ActivationFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --- Standard Activation Function Implementations ---

// Sigmoid is the logistic function with a steepness of 4.9.
func Sigmoid(x float64) float64 {
	k := 4.9
	return 1.0 / (1.0 + math.Exp(-k*x))
}

// Tanh activation function.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// ReLU (Rectified Linear Unit) activation function.
func ReLU(x float64) float64 {
	return math.Max(0, x)
}

// Identity activation function (linear).
func Identity(x float64) float64 {
	return x
}

// Clamped activation function (clamps output between -1 and 1).
func Clamped(x float64) float64 {
	return clamp(x, -1.0, 1.0)
}

// Gaussian activation function.
func Gaussian(x float64) float64 {
	return math.Exp(-x * x / 2.0)
}

// Absolute value activation function.
func Absolute(x float64) float64 {
	return math.Abs(x)
}

// Sine activation function.
func Sine(x float64) float64 {
	return math.Sin(x)
}

// Cosine activation function.
func Cosine(x float64) float64 {
	return math.Cos(x)
}

// Inv returns 1/x, and 0 for x == 0.
func Inv(x float64) float64 {
	if x == 0.0 {
		return 0.0
	}
	return 1.0 / x
}

// Log is the natural logarithm with the input floored at a small epsilon.
func Log(x float64) float64 {
	epsilon := 1e-9
	return math.Log(math.Max(epsilon, x))
}

// Exp activation function (e^x), input clamped to [-60, 60].
func Exp(x float64) float64 {
	return math.Exp(clamp(x, -60.0, 60.0))
}

// Hat activation function (triangular pulse centered at 0).
func Hat(x float64) float64 {
	return math.Max(0.0, 1.0-math.Abs(x))
}

// Square activation function (x^2).
func Square(x float64) float64 {
	return x * x
}

// Cube activation function (x^3).
func Cube(x float64) float64 {
	return x * x * x
}
