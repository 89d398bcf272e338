// Package delay provides the fixed-capacity circular delay line shared by
// every effect variant.
//
// A [Line] owns one channel of history. The write head always points at the
// slot that the next [Line.Write] overwrites; [Line.Advance] moves it on and
// wraps at the ring length. Reads are expressed as a delay in samples behind
// the write head, so a delay of 0 returns the value just written. Fractional
// delays interpolate between neighbouring slots.
//
// Capacity is fixed between [Line.Prepare] calls. Requesting a delay of at
// least [Line.Len] samples is a caller error: the read silently aliases into
// older history rather than failing.
package delay
