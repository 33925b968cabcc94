// Package engine implements the solve-mode session: selection,
// guess evaluation, mistake tracking, and terminal transitions.
//
// ARCHITECTURE:
//
// A Session owns all mutable play state for one loaded document. There
// is no package-level state; everything the original keeps in
// module-level caches (tile metadata, reentrancy flags) is an explicit
// Session field with a lifecycle scoped to one loaded puzzle.
//
// State machine:
//
//	selecting (0-3 tiles) -> ready (4 tiles) -> submitting
//	  -> selecting            (wrong or duplicate guess)
//	  -> selecting, one group fewer (correct guess)
//	  -> solved               (four groups formed)
//	  -> failed               (mistakes exhausted, rest auto-revealed)
//
// solved/failed are terminal for scoring but the results view stays
// dismissible and reopenable.
//
// Submission is two-phase to model the animated in-flight window:
// BeginSubmit snapshots the pending four tiles and locks reentrancy,
// ResolveSubmit evaluates and commits. Guesses are therefore scored
// strictly in submission order; a new submission cannot begin before
// the previous one's mutations have landed. Whether tile toggling is
// allowed during the window is a configurable product policy
// (WithStrictLock), not a bug to fix: one upstream variant locks all
// input, another only the four in-flight tiles.
package engine
