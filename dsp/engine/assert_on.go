//go:build dspassert

package engine

import "fmt"

func assertDelay(delaySamples float64, length int) {
	panic(fmt.Sprintf("engine: requested delay of %.3f samples exceeds ring length %d", delaySamples, length))
}
