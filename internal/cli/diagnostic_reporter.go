package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/buildergen/internal/errors"
)

// Diagnostic output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DiagnosticReporter prints located diagnostics in compiler style or as JSON
type DiagnosticReporter struct {
	out       io.Writer
	format    string
	verbose   bool
	useColors bool
	baseDir   string
}

// NewDiagnosticReporter creates a new diagnostic reporter. File names are
// printed relative to the working directory when possible.
func NewDiagnosticReporter(out io.Writer, format string, verbose, useColors bool) *DiagnosticReporter {
	baseDir, _ := os.Getwd()
	return &DiagnosticReporter{
		out:       out,
		format:    format,
		verbose:   verbose,
		useColors: useColors,
		baseDir:   baseDir,
	}
}

// JSONDiagnostic is the JSON form of one diagnostic
type JSONDiagnostic struct {
	File      string   `json:"file,omitempty"`
	Line      int      `json:"line,omitempty"`
	Column    int      `json:"column,omitempty"`
	EndLine   int      `json:"end_line,omitempty"`
	EndColumn int      `json:"end_column,omitempty"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Hints     []string `json:"hints,omitempty"`
}

// ToJSONDiagnostics converts diagnostics to their JSON form
func ToJSONDiagnostics(diags []*errors.Diagnostic, relativeTo string) []JSONDiagnostic {
	out := make([]JSONDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, JSONDiagnostic{
			File:      relativePath(relativeTo, d.Span.Start.File),
			Line:      d.Span.Start.Line,
			Column:    d.Span.Start.Column,
			EndLine:   d.Span.End.Line,
			EndColumn: d.Span.End.Column,
			Code:      d.Code.String(),
			Message:   d.Message,
			Hints:     d.Hints,
		})
	}
	return out
}

// Report prints every diagnostic in order
func (r *DiagnosticReporter) Report(diags []*errors.Diagnostic) error {
	if r.format == FormatJSON {
		encoder := json.NewEncoder(r.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]any{
			"diagnostics": ToJSONDiagnostics(diags, r.baseDir),
		})
	}

	for _, d := range diags {
		r.reportText(d)
	}
	if len(diags) > 0 {
		fmt.Fprintf(r.out, "%s\n", r.paint(color.FgRed, fmt.Sprintf("%d %s", len(diags), plural(len(diags), "error", "errors"))))
	}
	return nil
}

// ReportError prints a tool-level error with its suggestions
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) {
		_ = r.Report(multi.Errors)
		return
	}

	if r.format == FormatJSON {
		_ = r.Report(errors.Diagnostics(err))
		return
	}

	fmt.Fprintf(r.out, "%s %s\n", r.paint(color.FgRed, "error:"), err.Error())

	var builderErr errors.BuilderError
	if stderrors.As(err, &builderErr) {
		for _, hint := range builderErr.Suggestions() {
			fmt.Fprintf(r.out, "\t%s %s\n", r.paint(color.FgCyan, "hint:"), hint)
		}
	}

	if r.verbose {
		if cause := stderrors.Unwrap(err); cause != nil {
			fmt.Fprintf(r.out, "\tcaused by: %v\n", cause)
		}
	}
}

// reportText prints `file:line:col: Code: message` followed by its hints
func (r *DiagnosticReporter) reportText(d *errors.Diagnostic) {
	location := d.Span.Start
	location.File = relativePath(r.baseDir, location.File)

	var prefix string
	if !location.IsEmpty() {
		prefix = r.paint(color.Bold, location.String()) + ": "
	}

	fmt.Fprintf(r.out, "%s%s %s\n", prefix, r.paint(color.FgRed, d.Code.String()+":"), d.Message)
	for _, hint := range d.Hints {
		fmt.Fprintf(r.out, "\t%s %s\n", r.paint(color.FgCyan, "hint:"), hint)
	}
}

func (r *DiagnosticReporter) paint(attr color.Attribute, text string) string {
	c := color.New(attr)
	if r.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

// relativePath shortens path against base unless that would leave base
func relativePath(base, path string) string {
	if base == "" || path == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
