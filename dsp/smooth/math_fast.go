//go:build fastmath

package smooth

import "github.com/meko-christian/algo-approx"

// logE uses the fast approximation; only reporting paths call it.
func logE(x float64) float64 {
	return approx.FastLog(x)
}
