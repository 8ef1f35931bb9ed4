package translation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpened is returned when Sync or Save run before a successful Open.
	ErrNotOpened = errors.New("workbook not opened")
	// ErrSheetNotFound matches SheetNotFoundError.
	ErrSheetNotFound = errors.New("worksheet not found")
)

// SheetNotFoundError reports a workbook without the requested worksheet.
type SheetNotFoundError struct {
	Sheet string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("File does not contain worksheet '%s' to synchronize, skipping", e.Sheet)
}

func (e *SheetNotFoundError) Is(target error) bool {
	return target == ErrSheetNotFound
}

// HeaderError reports the first header cell that does not match the expected
// column name.
type HeaderError struct {
	Cell     string
	Expected string
	Actual   string
}

func (e *HeaderError) Error() string {
	actual := e.Actual
	if actual == "" {
		actual = "None"
	}
	return fmt.Sprintf("Column '%s' must be '%s', but it is '%s'", e.Cell, e.Expected, actual)
}
