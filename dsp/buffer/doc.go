// Package buffer provides owned sample storage for the delay lines and
// stereo block scratch for hosts that drive the engines.
//
// [Buffer] keeps its backing array across Resize calls, so a prepare cycle
// that does not grow the capacity never allocates. [Stereo] pairs two
// channel slices for block processing and converts to and from the
// interleaved layouts used by audio devices and streaming libraries.
// [Pool] recycles Stereo blocks for offline rendering.
package buffer
