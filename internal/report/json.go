package report

import (
	"encoding/json"
	"io"

	"github.com/nethahussain/padarchive/internal/model"
)

// JSONWriter serializes the full report verbatim. Its output is the
// interchange file the download pipeline reads back, so the schema here
// is load-bearing: field names come from the model's JSON tags and map
// keys are marshalled in sorted order by encoding/json.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report as indented JSON.
func (w *JSONWriter) Write(report *model.Report) (int, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
