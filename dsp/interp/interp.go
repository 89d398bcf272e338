package interp

import (
	"fmt"
	"strings"
)

// Mode selects the fractional read algorithm of a delay line.
type Mode int

const (
	// Linear blends the two samples around the read position.
	Linear Mode = iota
	// Hermite fits a cubic through four neighbouring samples.
	Hermite
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Hermite:
		return "hermite"
	default:
		return "unknown"
	}
}

// ParseMode accepts a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return Linear, nil
	case "hermite":
		return Hermite, nil
	default:
		return 0, fmt.Errorf("interp: unknown mode %q", s)
	}
}

// Linear2 returns (1-frac)*x0 + frac*x1.
// frac=0 yields x0 and frac=1 yields x1 exactly.
func Linear2(x0, x1, frac float64) float64 {
	return (1-frac)*x0 + frac*x1
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
