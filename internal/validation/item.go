package validation

import (
	"github.com/connect-labs/ccli/internal/extension"
)

// Severity grades a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Item is a single diagnostic.
type Item struct {
	Severity  Severity
	Message   string
	File      string
	StartLine int    // first line of Code, 0 when there is no snippet
	LineNo    int    // line the diagnostic points at
	Code      string // surrounding source
}

func warning(msg, file string) Item {
	return Item{Severity: SeverityWarning, Message: msg, File: file}
}

func errorItem(msg, file string) Item {
	return Item{Severity: SeverityError, Message: msg, File: file}
}

// at attaches a source location, keeping the file when the location has none.
func (i Item) at(loc extension.Location) Item {
	if loc.File != "" {
		i.File = loc.File
	}
	i.StartLine = loc.StartLine
	i.LineNo = loc.LineNo
	i.Code = loc.Code
	return i
}
