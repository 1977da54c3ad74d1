package errors

import "fmt"

// Collector accumulates diagnostics during one declaration traversal.
//
// A collector starts empty, grows through Add and Extend, and is sealed by
// Finish. Any use after Finish panics.
type Collector struct {
	diagnostics []*Diagnostic
	finished    bool
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{
		diagnostics: make([]*Diagnostic, 0),
	}
}

// Add records one diagnostic and returns it so callers can attach hints
func (c *Collector) Add(span Span, code ErrorCode, message string) *Diagnostic {
	c.mustBeOpen()
	diag := NewDiagnostic(span, code, message)
	c.diagnostics = append(c.diagnostics, diag)
	return diag
}

// Addf records one diagnostic with a formatted message
func (c *Collector) Addf(span Span, code ErrorCode, format string, args ...interface{}) *Diagnostic {
	return c.Add(span, code, fmt.Sprintf(format, args...))
}

// Extend merges every diagnostic carried by err, in order
func (c *Collector) Extend(err error) {
	c.mustBeOpen()
	if err == nil {
		return
	}
	c.diagnostics = append(c.diagnostics, Diagnostics(err)...)
}

// IsEmpty returns true if nothing has been collected
func (c *Collector) IsEmpty() bool {
	c.mustBeOpen()
	return len(c.diagnostics) == 0
}

// Len returns the number of collected diagnostics
func (c *Collector) Len() int {
	c.mustBeOpen()
	return len(c.diagnostics)
}

// Finish seals the collector. It returns nil when nothing was collected and a
// *MultipleErrors holding every diagnostic in addition order otherwise.
func (c *Collector) Finish() error {
	c.mustBeOpen()
	c.finished = true
	if len(c.diagnostics) == 0 {
		return nil
	}
	return &MultipleErrors{Errors: c.diagnostics}
}

func (c *Collector) mustBeOpen() {
	if c.finished {
		panic("errors: collector used after Finish")
	}
}
