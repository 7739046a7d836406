// Package clip computes clip boundaries for matched subtitle events by
// reconciling event timing with detected audio silences. It is pure
// arithmetic: no I/O, no external collaborators.
package clip
