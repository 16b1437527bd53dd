package report

import (
	"io"

	"github.com/nethahussain/padarchive/internal/model"
)

// Writer outputs a link report in one format.
// Implementations hold their destination and any wiki context they need;
// Write is a single deterministic serialization of the report.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)
}

// baseWriter provides the shared output destination for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
