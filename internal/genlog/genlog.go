// Package genlog wires up the structured diagnostic logger the rest of
// the toolchain shares, gated behind the -vb/-trace flags. Every
// invocation is tagged with a fresh correlation ID so interleaved runs
// can be told apart in a shared log stream.
package genlog

import (
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// New returns a logger at TraceLevel when trace is true, otherwise at
// DebugLevel when verbose is true, otherwise at WarnLevel. A disabled
// logger (verbose=false, trace=false) still exists so callers never need
// a nil check; it simply never logs below Warn. The logger adds no fields
// of its own; pipeline.Run attaches a "run_id" field (see RunID) to the
// entries it logs itself.
func New(verbose, trace bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	switch {
	case trace:
		l.SetLevel(logrus.TraceLevel)
	case verbose:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

// RunID returns a fresh correlation ID for one pipeline invocation.
func RunID() string {
	return uuid.NewString()
}
