// Package core provides shared value types for the layout engine.
// This package breaks import cycles between the tree, typesetter, and
// layout coordinator.
package core

import "fmt"

// Range is a half-open span of the document in byte offsets:
// [Location, Location+Length).
type Range struct {
	Location int
	Length   int
}

// NewRange creates a range from a location and length.
func NewRange(location, length int) Range {
	return Range{Location: location, Length: length}
}

// RangeFromBounds creates a range from start and end offsets.
func RangeFromBounds(start, end int) Range {
	return Range{Location: start, Length: end - start}
}

// Max returns the exclusive upper bound of the range.
func (r Range) Max() int {
	return r.Location + r.Length
}

// IsEmpty returns true if the range covers no offsets.
func (r Range) IsEmpty() bool {
	return r.Length <= 0
}

// Contains returns true if the offset falls inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Location && offset < r.Max()
}

// Intersects returns true if the two ranges share at least one offset.
func (r Range) Intersects(other Range) bool {
	return r.Location < other.Max() && other.Location < r.Max()
}

// Touches returns true if the ranges intersect or share a boundary.
// A range ending exactly where another begins touches it.
func (r Range) Touches(other Range) bool {
	return r.Location <= other.Max() && other.Location <= r.Max()
}

// Intersection returns the overlapping portion of two ranges.
// The second return value is false if they do not intersect.
func (r Range) Intersection(other Range) (Range, bool) {
	start := max(r.Location, other.Location)
	end := min(r.Max(), other.Max())
	if start >= end {
		return Range{}, false
	}
	return RangeFromBounds(start, end), true
}

// Union returns the smallest range covering both ranges.
func (r Range) Union(other Range) Range {
	start := min(r.Location, other.Location)
	end := max(r.Max(), other.Max())
	return RangeFromBounds(start, end)
}

// Shifted returns the range moved by delta offsets.
func (r Range) Shifted(delta int) Range {
	return Range{Location: r.Location + delta, Length: r.Length}
}

// String returns a debug representation.
func (r Range) String() string {
	return fmt.Sprintf("{%d, %d}", r.Location, r.Length)
}

// Point is a position in layout space. X grows rightward, Y downward.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in layout space.
type Rect struct {
	X, Y, Width, Height float64
}

// MaxX returns the right edge of the rectangle.
func (r Rect) MaxX() float64 {
	return r.X + r.Width
}

// MaxY returns the bottom edge of the rectangle.
func (r Rect) MaxY() float64 {
	return r.Y + r.Height
}

// ContainsPoint returns true if the point falls inside the rectangle.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// Union returns the smallest rectangle covering both rectangles.
func (r Rect) Union(other Rect) Rect {
	x := min(r.X, other.X)
	y := min(r.Y, other.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  max(r.MaxX(), other.MaxX()) - x,
		Height: max(r.MaxY(), other.MaxY()) - y,
	}
}

// TextSource provides read access to document text by absolute range.
// The layout engine never mutates text; it only reads slices for shaping.
type TextSource interface {
	// Slice returns the text covered by the range, clamped to the document.
	Slice(r Range) string

	// Len returns the total document length in bytes.
	Len() int
}
