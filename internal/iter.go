package internal

import (
	"iter"
)

// IterSeqConcat concatenates multiple iterators into a single iterator sequence.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return
				}
			}
		}
	}
}

// MirrorSubsets yields every combination of the bits set in mirror,
// starting with zero. A mirror of zero yields zero once.
func MirrorSubsets(mirror uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		bits := uint32(0)
		for {
			if !yield(bits) {
				return
			}
			bits = (bits - mirror) & mirror
			if bits == 0 {
				return
			}
		}
	}
}
