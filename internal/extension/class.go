package extension

import (
	"path/filepath"
	"strings"
)

// Class is a loaded extension class.
type Class interface {
	// Name is the class name as written in the source.
	Name() string
	// Ref is the "package.module:Class" reference it was loaded from.
	Ref() string
	// File is the source file defining the class.
	File() string
	// Families lists the SDK base classes the class derives from.
	Families() []Family
	Methods() []Method
	Method(name string) (Method, bool)
	Events() []Event
	Schedulables() []Schedulable
	// Variables returns the variables declared with the @variables decorator.
	// The boolean is false when the class carries no such decorator.
	Variables() ([]Variable, bool)
	// VariablesErr explains why a @variables declaration could not be read
	// statically. It is nil when the declaration was decoded.
	VariablesErr() error
	// ModuleNames lists the names bound at module level: classes defined in
	// the module and names imported into it.
	ModuleNames() []string
	// Source is the class' own source span.
	Source() Source
	// ModuleSource is the source of the whole module.
	ModuleSource() Source
}

// Dir returns the directory holding the class source file.
func Dir(c Class) string {
	return filepath.Dir(c.File())
}

// Decorator is a single "@name(args)" line.
type Decorator struct {
	Name string
	Args string
	Text string
	Line int
}

// Method is a function defined in a class body.
type Method struct {
	Name       string
	Params     []string
	Decorators []Decorator
	Source     Source
}

// Signature renders the method as "name(p1, p2)".
func (m Method) Signature() string {
	return m.Name + "(" + strings.Join(m.Params, ", ") + ")"
}

// Event is an event handler declared with @event.
type Event struct {
	Method    string
	EventType string
	Statuses  []string
}

// Schedulable is a method declared with @schedulable.
type Schedulable struct {
	Method      string
	Name        string
	Description string
}

// Variable is one entry of a @variables declaration or of the descriptor's
// variables section. Values keep their decoded types so that type checks can
// report what was actually written.
type Variable map[string]any

// Source is a span of lines of a file. Line numbers are 1-based and inclusive.
type Source struct {
	File  string
	Lines []string
	Start int
	End   int
}

// Location points diagnostics at a spot in the source.
type Location struct {
	File      string
	StartLine int
	LineNo    int
	Code      string
}

const contextLines = 3

// Locate returns the location of the first line in s containing needle,
// together with a few lines of surrounding code. When needle is not found
// only the file is set.
func (s Source) Locate(needle string) Location {
	for n := s.Start; n <= s.End && n <= len(s.Lines); n++ {
		if !strings.Contains(s.Lines[n-1], needle) {
			continue
		}
		from := max(n-contextLines, s.Start, 1)
		to := min(n+contextLines, s.End, len(s.Lines))
		return Location{
			File:      s.File,
			StartLine: from,
			LineNo:    n,
			Code:      strings.Join(s.Lines[from-1:to], "\n"),
		}
	}
	return Location{File: s.File}
}

// Text returns the span as a single string.
func (s Source) Text() string {
	if s.Start < 1 || s.End < s.Start || s.End > len(s.Lines) {
		return ""
	}
	return strings.Join(s.Lines[s.Start-1:s.End], "\n")
}
