// Package response measures the impulse and magnitude response of an engine
// configuration offline.
//
// An impulse is rendered through a freshly prepared engine, transformed
// with an FFT and reduced to per-bin magnitudes. For the plain delay the
// result is the familiar comb: peaks every 1/delay Hz, with notch depth
// set by the dry/wet balance and feedback. The modulated variant is
// time-varying, so its measurement is a snapshot starting at LFO phase 0.
package response
