package matrix

import "fmt"

// MalformedCellError reports a data cell that is not a finite number.
// Row and Col are zero-based indexes into the numeric matrix, not file lines.
type MalformedCellError struct {
	Row   int
	Col   int
	Value string
}

func (e *MalformedCellError) Error() string {
	return fmt.Sprintf("malformed cell at row %d, col %d: %q is not a number", e.Row, e.Col, e.Value)
}

// MalformedMatrixError reports a structural problem: no header or a ragged row.
type MalformedMatrixError struct {
	Row    int
	Got    int
	Want   int
	Reason string
}

func (e *MalformedMatrixError) Error() string {
	if e.Reason != "" {
		return "malformed matrix: " + e.Reason
	}
	return fmt.Sprintf("malformed matrix: row %d has %d fields, want %d", e.Row, e.Got, e.Want)
}
