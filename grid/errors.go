package grid

// EmptyInputError is returned when a matrix has no positive value to normalize against.
type EmptyInputError struct {
	Rows int
	Cols int
}

func (e *EmptyInputError) Error() string {
	return "empty input: no positive values in matrix"
}
