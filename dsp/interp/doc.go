// Package interp provides the interpolation primitives used by the delay
// lines to read between stored samples.
//
//   - [Linear2]:  2-point linear interpolation (the engine default)
//   - [Hermite4]: 4-point cubic Hermite
//
// The [Mode] enum lets [delay.Line] select one at construction time.
package interp
