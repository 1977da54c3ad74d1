package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level)
	d.SetOutput(&out, &errOut)
	d.SetShowTime(false)
	return d, &out, &errOut
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	d, out, errOut := newTestDiagnostics(DiagnosticInfo)

	d.Error("bad %s", "thing")
	d.Warn("careful")
	d.Info("hello")
	d.Verbose("hidden")
	d.Debug("hidden too")

	assert.Equal(t, "[ERROR] bad thing\n", errOut.String())
	assert.Contains(t, out.String(), "[WARN] careful\n")
	assert.Contains(t, out.String(), "[INFO] hello\n")
	assert.NotContains(t, out.String(), "hidden")
}

func TestDiagnosticSystem_Quiet(t *testing.T) {
	d, out, errOut := newTestDiagnostics(DiagnosticError)

	d.Header("Generating builders")
	d.PhaseItem("done")
	d.Summary("Summary", map[string]any{"records": 1})
	d.Error("still shown")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "still shown")
}

func TestDiagnosticSystem_NoColorsForBuffers(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "")

	d, out, _ := newTestDiagnostics(DiagnosticInfo)
	d.Header("Generating builders")

	assert.Equal(t, "buildergen: Generating builders\n", out.String())
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestDiagnosticSystem_ForceColor(t *testing.T) {
	t.Setenv("FORCE_COLOR", "1")
	t.Setenv("NO_COLOR", "")

	d, out, _ := newTestDiagnostics(DiagnosticInfo)
	d.Success("ok")

	assert.Contains(t, out.String(), "\x1b[")
}

func TestDiagnosticSystem_IndentedPhases(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	d, out, _ := newTestDiagnostics(DiagnosticInfo)
	d.PhaseHeader("Parsing")
	d.Indent()
	d.PhaseItem("%d records", 3)
	d.PhaseProgress("Writing %s", "autogen_builder.go")
	d.PhaseProgress("Skipping %s", "internal")
	d.Unindent()
	d.Unindent()
	d.List("top")

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"Parsing:",
		"  ✓ 3 records",
		"  ✏ Writing autogen_builder.go",
		"  - Skipping internal",
		"- top",
	}, lines)
}

func TestDiagnosticSystem_SummarySorted(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	d, out, _ := newTestDiagnostics(DiagnosticInfo)
	d.Summary("Summary", map[string]any{"written": 2, "packages": 4, "errors": 0})

	assert.Equal(t, "\nSummary\n   errors: 0\n   packages: 4\n   written: 2\n\n", out.String())
}
