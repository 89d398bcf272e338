// Package params holds the host-side parameter surface of an engine
// variant: declared ranges and defaults, lock-free value storage that a
// control thread writes and the audio thread reads, and persisted state.
//
// A [Registry] implements [engine.ParamSource], so it can be handed to
// [engine.Engine.ProcessBlock] directly. Values are clamped when they are
// set, never when they are read.
package params
