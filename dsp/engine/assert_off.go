//go:build !dspassert

package engine

func assertDelay(float64, int) {}
