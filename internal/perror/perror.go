// Package perror provides Patito's error taxonomy and a small error
// collector. The compiler is single-threaded with no worker fan-out, so
// the collector is a plain slice behind an Append/Errors/Len/Flush
// surface.
package perror

import "fmt"

// Category distinguishes the broad error classes the toolchain reports.
// The CLI treats every category as a flat error message; callers are
// free to branch on Category for richer diagnostics.
type Category int

const (
	Declaration Category = iota
	Resolution
	Type
	Control
	Runtime
)

func (c Category) String() string {
	switch c {
	case Declaration:
		return "declaration error"
	case Resolution:
		return "resolution error"
	case Type:
		return "type error"
	case Control:
		return "control error"
	case Runtime:
		return "runtime error"
	default:
		return "error"
	}
}

// SemanticError is returned by every stage of the generator; the first
// one aborts the pipeline.
type SemanticError struct {
	Category Category
	Message  string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// New constructs a SemanticError, following the fmt.Errorf calling
// convention.
func New(cat Category, format string, args ...any) error {
	return &SemanticError{Category: cat, Message: fmt.Sprintf(format, args...)}
}

// Collector buffers reported errors. Generation aborts on the first
// error in practice, but trace tooling and tests both find it convenient
// to gather more than one diagnostic before giving up.
type Collector struct {
	errors []error
}

// Append records err. A nil error is ignored.
func (c *Collector) Append(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Len returns the number of buffered errors.
func (c *Collector) Len() int { return len(c.errors) }

// Flush empties the buffer.
func (c *Collector) Flush() { c.errors = nil }

// Errors returns the buffered errors in report order.
func (c *Collector) Errors() []error {
	out := make([]error, len(c.errors))
	copy(out, c.errors)
	return out
}
