package norminette

import "math"

// EndOfLine is the column used for "the rest of the line".
const EndOfLine = math.MaxInt32

// The linter reports a start column only; this many columns are highlighted.
const highlightWidth = 3

// Position is a zero-based line and column.
type Position struct {
	Line   int
	Column int
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position
	End   Position
}

var fileStart = Range{
	Start: Position{Line: 0, Column: 0},
	End:   Position{Line: 1, Column: EndOfLine},
}

// RangeOf returns the addressable range of m. Clean has no range.
func RangeOf(m Message) (Range, bool) {
	switch m := m.(type) {
	case LocatedIssue:
		line := max(int(m.Line)-1, 0)
		col := max(int(m.Column), 0)
		end := min(col, EndOfLine-highlightWidth) + highlightWidth
		return Range{
			Start: Position{Line: line, Column: col},
			End:   Position{Line: line, Column: end},
		}, true
	case HeaderWarning:
		if m.Line <= 0 {
			return fileStart, true
		}
		return Range{
			Start: Position{Line: m.Line - 1, Column: 0},
			End:   Position{Line: m.Line, Column: 0},
		}, true
	case UnlocatedIssue:
		return fileStart, true
	}
	return Range{}, false
}
