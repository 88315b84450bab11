// Package linetree provides an order-statistics red-black tree that stores
// per-line metadata for an unbounded document.
//
// Each node represents one logical line and carries its byte length and
// laid-out height alongside cumulative left-subtree metrics (length, count,
// height). The three parallel metrics let the tree resolve a line by
// document offset, by line index, or by vertical position, all in O(log n).
//
// Key features:
//   - O(log n) insert, delete, and positional queries
//   - O(1)-amortized in-place updates of a line's length and height, with
//     cumulative metrics propagated to the root without rebalancing
//   - O(n) bulk construction from an ordered line list
//   - Restartable iterators that re-resolve from the root on every step,
//     so the tree may be mutated between steps
//
// Nodes live in a flat arena addressed by handles rather than pointers.
// The tree is not safe for concurrent use; the layout engine runs on a
// single logical thread.
//
// Basic usage:
//
//	t := linetree.Build(items, 16.0)
//	pos, ok := t.LineAt(120)       // line containing offset 120
//	t.Update(120, +3, 0)           // line grew by three bytes
//	t.Insert(data, 123, 10, 16.0)  // new line after the split point
package linetree
