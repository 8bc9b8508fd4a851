// Package ring provides the fixed-capacity sample window shared between
// the audio capture callback and the analysis loop. The ring is the only
// structure touched by both sides; everything downstream works on
// chronological snapshots taken from it.
package ring
