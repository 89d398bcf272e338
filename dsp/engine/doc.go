// Package engine implements the per-sample delay, chorus/flanger and
// utility-delay processors on top of the shared delay-line machinery.
//
// Every variant runs the same loop for each channel and sample:
//
//  1. write input plus the previous feedback sample at the write head
//  2. work out this sample's delay (smoothed delay time, or LFO-mapped)
//  3. read the delayed value at the fractional position
//  4. keep delayed*feedback for the next sample
//  5. advance the write head
//  6. mix dry and delayed signal
//
// Variants differ only in the delay source and the mix policy. Parameter
// values are pulled from a [ParamSource] once per sample; the engine never
// validates them, allocates, locks or blocks while processing.
//
// [Engine.Prepare] must complete before the first call to [Engine.Process]
// and must never overlap processing. Processing an unprepared engine panics.
package engine
