package report

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/nethahussain/padarchive/internal/model"
)

// CSVWriter outputs one row per (page, pad URL) pair with the page's
// article URL, sorted by page title then URL. The article URL is the
// wiki's base URL plus the title with spaces replaced by underscores.
type CSVWriter struct {
	baseWriter

	// baseURL is the wiki's article-view URL prefix.
	baseURL string
}

// NewCSVWriter creates a CSVWriter for the given wiki base URL.
func NewCSVWriter(output io.Writer, baseURL string) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
		baseURL:    baseURL,
	}
}

// Write outputs the tabular export with a header row.
func (w *CSVWriter) Write(report *model.Report) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	if err := cw.Write([]string{"Etherpad URL", "Wiki Page", "Wiki Page URL"}); err != nil {
		return counter.n, err
	}

	for _, page := range report.PageTitles() {
		pageURL := w.baseURL + strings.ReplaceAll(page, " ", "_")
		for _, u := range report.PagesWithEtherpads[page] {
			if err := cw.Write([]string{u, page, pageURL}); err != nil {
				return counter.n, err
			}
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// countingWriter counts bytes passed through to the underlying writer.
type countingWriter struct {
	w io.Writer
	n int
}

// Write forwards to the underlying writer and records the byte count.
func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
