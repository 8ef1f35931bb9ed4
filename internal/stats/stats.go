package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Module holds the counters of one synchronized entity, e.g. "Attributes".
type Module struct {
	name    string
	updated int
	skipped int
	errors  map[int][]string
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Updated records n updated rows.
func (m *Module) Updated(n int) { m.updated += n }

// Skipped records n skipped rows.
func (m *Module) Skipped(n int) { m.skipped += n }

// Error records msg against every row in rows.
func (m *Module) Error(msg string, rows ...int) {
	if m.errors == nil {
		m.errors = make(map[int][]string)
	}
	for _, row := range rows {
		m.errors[row] = append(m.errors[row], msg)
	}
}

// Counts is a snapshot of a module's counters.
type Counts struct {
	Processed int
	Updated   int
	Skipped   int
	Errors    int
}

// Counts returns the current counters. Every row with at least one error
// counts once.
func (m *Module) Counts() Counts {
	c := Counts{
		Updated: m.updated,
		Skipped: m.skipped,
		Errors:  len(m.errors),
	}
	c.Processed = c.Updated + c.Skipped + c.Errors
	return c
}

// RowErrors returns the error messages of each failed row, by row.
func (m *Module) RowErrors() map[int][]string {
	return m.errors
}

// Stats is an ordered set of modules.
type Stats struct {
	order   []string
	modules map[string]*Module
}

// New creates Stats with the given modules pre-registered.
func New(names ...string) *Stats {
	s := &Stats{modules: make(map[string]*Module)}
	for _, name := range names {
		s.Module(name)
	}
	return s
}

// Module returns the named module, creating it on first use.
func (s *Stats) Module(name string) *Module {
	if m, ok := s.modules[name]; ok {
		return m
	}
	m := &Module{name: name}
	s.modules[name] = m
	s.order = append(s.order, name)
	return m
}

// HasErrors reports whether any module recorded an error.
func (s *Stats) HasErrors() bool {
	for _, m := range s.modules {
		if len(m.errors) > 0 {
			return true
		}
	}
	return false
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	nameStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Render writes the summary table followed by the row errors of each module.
func (s *Stats) Render(w io.Writer) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Module", "Processed", "Updated", "Skipped", "Errors").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return nameStyle
			default:
				return cellStyle
			}
		})
	for _, name := range s.order {
		c := s.modules[name].Counts()
		t.Row(name, num(c.Processed), num(c.Updated), num(c.Skipped), num(c.Errors))
	}

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	for _, name := range s.order {
		errs := s.modules[name].errors
		if len(errs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s errors:\n", name)
		rows := make([]int, 0, len(errs))
		for row := range errs {
			rows = append(rows, row)
		}
		sort.Ints(rows)
		for _, row := range rows {
			for _, msg := range errs[row] {
				b.WriteString(errorStyle.Render(fmt.Sprintf("  Errors at row #%d: %s", row, msg)))
				b.WriteString("\n")
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func num(n int) string {
	return printer.Sprintf("%d", n)
}
