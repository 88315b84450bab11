package layout

// LineEnding identifies a line-terminator style.
type LineEnding uint8

const (
	// LineEndingLF is the Unix style (\n).
	LineEndingLF LineEnding = iota

	// LineEndingCRLF is the Windows style (\r\n).
	LineEndingCRLF

	// LineEndingCR is the old Mac style (\r).
	LineEndingCR
)

// String returns the terminator characters for the ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// DetectLineEnding returns the most common line ending in the text.
// Returns LineEndingLF if no line endings are found. The detected value
// is cached per document; edit handling still recognizes mixed endings
// line by line.
func DetectLineEnding(text string) LineEnding {
	var lfCount, crlfCount, crCount int

	i := 0
	for i < len(text) {
		switch {
		case i+1 < len(text) && text[i] == '\r' && text[i+1] == '\n':
			crlfCount++
			i += 2
		case text[i] == '\r':
			crCount++
			i++
		case text[i] == '\n':
			lfCount++
			i++
		default:
			i++
		}
	}

	if crlfCount > 0 && crlfCount >= lfCount && crlfCount >= crCount {
		return LineEndingCRLF
	}
	if crCount > 0 && crCount >= lfCount && crCount >= crlfCount {
		return LineEndingCR
	}
	return LineEndingLF
}

// scanLineSegments splits text into logical line lengths. Every segment
// includes its terminator; a text ending with a terminator contributes a
// trailing zero-length segment, and empty text yields one zero-length
// segment, so a document always has at least one line.
func scanLineSegments(text string) []int {
	var lengths []int
	start := 0
	i := 0
	for i < len(text) {
		switch {
		case i+1 < len(text) && text[i] == '\r' && text[i+1] == '\n':
			lengths = append(lengths, i+2-start)
			i += 2
			start = i
		case text[i] == '\r' || text[i] == '\n':
			lengths = append(lengths, i+1-start)
			i++
			start = i
		default:
			i++
		}
	}
	lengths = append(lengths, len(text)-start)
	return lengths
}
