package report

import (
	"io"
	"strings"

	"github.com/nethahussain/padarchive/internal/model"
)

// URLListWriter outputs the sorted set of unique pad URLs, one per line.
// This is the simplest export format, suitable for shell pipelines.
type URLListWriter struct {
	baseWriter
}

// NewURLListWriter creates a URLListWriter that outputs to the given writer.
func NewURLListWriter(output io.Writer) *URLListWriter {
	return &URLListWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs one pad URL per line in sorted order.
func (w *URLListWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder
	for _, u := range report.PadURLs() {
		sb.WriteString(u)
		sb.WriteByte('\n')
	}
	return io.WriteString(w.output, sb.String())
}
