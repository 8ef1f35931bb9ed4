package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/connect-labs/ccli/internal/validation"
	"github.com/fatih/color"
)

var (
	warningLabel = color.New(color.FgYellow, color.Bold)
	errorLabel   = color.New(color.FgRed, color.Bold)
	okLabel      = color.New(color.FgGreen, color.Bold)
	locationText = color.New(color.FgCyan)
	pointerText  = color.New(color.Bold)
)

// Write prints each item with its location and code snippet, then a summary.
func Write(w io.Writer, r validation.Report) error {
	var b strings.Builder
	for _, item := range r.Items {
		writeItem(&b, item)
	}
	writeSummary(&b, r)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeItem(b *strings.Builder, item validation.Item) {
	label := warningLabel
	if item.Severity == validation.SeverityError {
		label = errorLabel
	}
	fmt.Fprintf(b, "%s %s\n", label.Sprintf("%-7s", item.Severity), item.Message)

	loc := item.File
	if item.LineNo > 0 {
		loc = fmt.Sprintf("%s:%d", item.File, item.LineNo)
	}
	if loc != "" {
		fmt.Fprintf(b, "  --> %s\n", locationText.Sprint(loc))
	}

	if item.Code != "" && item.StartLine > 0 {
		lines := strings.Split(item.Code, "\n")
		width := len(fmt.Sprint(item.StartLine + len(lines) - 1))
		for i, line := range lines {
			n := item.StartLine + i
			marker := " "
			if n == item.LineNo {
				marker = pointerText.Sprint(">")
			}
			fmt.Fprintf(b, "  %s %*d | %s\n", marker, width, n, line)
		}
	}
	b.WriteString("\n")
}

func writeSummary(b *strings.Builder, r validation.Report) {
	errs := r.Count(validation.SeverityError)
	warns := r.Count(validation.SeverityWarning)
	if errs == 0 && warns == 0 {
		fmt.Fprintf(b, "%s no issues found.\n", okLabel.Sprint("OK"))
		return
	}
	fmt.Fprintf(b, "Found %s and %s.\n", plural(errs, "error"), plural(warns, "warning"))
	if r.StoppedBy != "" {
		fmt.Fprintf(b, "Validation stopped at the %s check.\n", r.StoppedBy)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
