package perror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_New_formatsCategoryAndMessage(t *testing.T) {
	err := New(Type, "cannot assign %s to %s", "float", "entero")
	assert.EqualError(t, err, "type error: cannot assign float to entero")

	var semErr *SemanticError
	assert.ErrorAs(t, err, &semErr)
	assert.Equal(t, Type, semErr.Category)
}

func Test_Category_String(t *testing.T) {
	cases := map[Category]string{
		Declaration: "declaration error",
		Resolution:  "resolution error",
		Type:        "type error",
		Control:     "control error",
		Runtime:     "runtime error",
	}
	for cat, want := range cases {
		assert.Equal(t, want, cat.String())
	}
}

// Test_Collector_buffersInReportOrder exercises the Append/Len/Errors/Flush
// surface a tool driving the generator in "collect everything" mode would
// use instead of aborting on the first error, the way a linter-style
// caller gathering every diagnostic from one source file would.
func Test_Collector_buffersInReportOrder(t *testing.T) {
	var c Collector
	assert.Equal(t, 0, c.Len())

	c.Append(nil) // nil errors are ignored.
	assert.Equal(t, 0, c.Len())

	c.Append(New(Declaration, "duplicate variable %q", "x"))
	c.Append(New(Resolution, "undeclared variable %q", "y"))
	assert.Equal(t, 2, c.Len())

	errs := c.Errors()
	assert.EqualError(t, errs[0], `declaration error: duplicate variable "x"`)
	assert.EqualError(t, errs[1], `resolution error: undeclared variable "y"`)

	c.Flush()
	assert.Equal(t, 0, c.Len())
}
