// Package puzzle defines the immutable puzzle document model and its
// derived play-time views.
//
// A Document is the verbatim payload fetched for one print date: four
// categories of four cards each, every card carrying a grid position in
// [0,15]. Documents are validated strictly on parse - a payload that
// does not flatten to exactly sixteen cards covering each position once
// is refused outright rather than partially loaded.
//
// Derived views are cheap and recomputed on demand:
//   - Tiles: the sixteen display tiles in grid-position order
//   - AnswerGroups: the four canonical answers, category order mapping
//     to difficulty rank (index 0 easiest, index 3 hardest)
//
// Nothing in this package mutates a Document after parse.
package puzzle
