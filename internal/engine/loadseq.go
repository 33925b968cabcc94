package engine

import "sync/atomic"

// LoadSeq issues monotonically increasing sequence numbers for
// document load attempts.
//
// The fallback chain (exact date, index-resolved, latest alias) is
// asynchronous: a slow load for one date may still be in flight when
// the user navigates to another. Every load attempt takes a sequence
// number from Next; before applying its result it checks Superseded.
// A stale load must never overwrite state from a newer request.
//
// Thread-safety: safe for concurrent use (atomic operations).
type LoadSeq struct {
	seq atomic.Int64
}

// Next reserves and returns the next load sequence number.
func (l *LoadSeq) Next() int64 {
	return l.seq.Add(1)
}

// Current returns the most recently issued sequence number.
func (l *LoadSeq) Current() int64 {
	return l.seq.Load()
}

// Superseded reports whether a newer load has been issued since seq.
func (l *LoadSeq) Superseded(seq int64) bool {
	return l.seq.Load() > seq
}
