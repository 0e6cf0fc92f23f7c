package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/loteria-tools/tablero/internal/validate"
)

func TestDisplayReport(t *testing.T) {
	// Disable ANSI sequences so the assertions see plain text.
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	report := &validate.Report{
		Checks: []validate.Check{
			{Name: "item frequency", Passed: true, Details: "all targets met"},
			{Name: "no identical boards", Passed: false, Details: "boards 1 and 2 hold the same items"},
		},
	}

	var buf bytes.Buffer
	NewReportDisplayer(&buf).DisplayReport(report)

	out := buf.String()
	if !strings.Contains(out, "VALIDATION") {
		t.Errorf("output missing header:\n%s", out)
	}
	if !strings.Contains(out, "✓ item frequency: all targets met") {
		t.Errorf("output missing passing check:\n%s", out)
	}
	if !strings.Contains(out, "✗ no identical boards: boards 1 and 2 hold the same items") {
		t.Errorf("output missing failing check:\n%s", out)
	}
	if !strings.Contains(out, "1 of 2 checks failed") {
		t.Errorf("output missing verdict:\n%s", out)
	}
}

func TestDisplayReportAllPassed(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	report := &validate.Report{
		Checks: []validate.Check{
			{Name: "board count", Passed: true, Details: "15 boards"},
		},
	}

	var buf bytes.Buffer
	NewReportDisplayer(&buf).DisplayReport(report)

	if !strings.Contains(buf.String(), "All checks passed") {
		t.Errorf("output missing success verdict:\n%s", buf.String())
	}
}
