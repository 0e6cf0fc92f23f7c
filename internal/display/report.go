package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/loteria-tools/tablero/internal/validate"
)

var (
	passMark = color.New(color.FgGreen)
	failMark = color.New(color.FgRed, color.Bold)
)

// ReportDisplayer renders validation reports with pass/fail marks.
type ReportDisplayer struct {
	w io.Writer
}

// NewReportDisplayer creates a displayer that writes to w.
func NewReportDisplayer(w io.Writer) *ReportDisplayer {
	return &ReportDisplayer{w: w}
}

// DisplayReport prints one line per check plus a closing verdict.
func (d *ReportDisplayer) DisplayReport(report *validate.Report) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(d.w, "\n%s\n", rule)
	fmt.Fprintln(d.w, "VALIDATION")
	fmt.Fprintln(d.w, rule)

	for _, check := range report.Checks {
		if check.Passed {
			passMark.Fprintf(d.w, "  ✓ %s", check.Name)
		} else {
			failMark.Fprintf(d.w, "  ✗ %s", check.Name)
		}
		fmt.Fprintf(d.w, ": %s\n", check.Details)
	}

	fmt.Fprintln(d.w)
	if report.OK() {
		passMark.Fprintln(d.w, "All checks passed")
	} else {
		failMark.Fprintf(d.w, "%d of %d checks failed\n", len(report.Failures()), len(report.Checks))
	}
}
