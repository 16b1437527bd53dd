package report

import (
	"io"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"github.com/nethahussain/padarchive/internal/model"
)

// MarkdownWriter outputs the report as a GitHub-flavored Markdown
// document, for sharing the inventory outside the wiki itself.
type MarkdownWriter struct {
	baseWriter

	// baseURL is the wiki's article-view URL prefix.
	baseURL string

	// label is the wiki's short display label.
	label string
}

// NewMarkdownWriter creates a MarkdownWriter for the given wiki.
func NewMarkdownWriter(output io.Writer, baseURL, label string) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		baseURL:    baseURL,
		label:      label,
	}
}

// Write renders the full Markdown document.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Etherpad Links on " + w.label)
	md.PlainText("")
	md.PlainTextf("External links to `etherpad.wikimedia.org` found on [%s](%s).", w.label, w.baseURL)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Statistic", "Count"},
		Rows: [][]string{
			{"Unique Etherpad URLs", humanize.Comma(int64(report.Summary.UniqueEtherpadURLs))},
			{"Wiki pages with Etherpad links", humanize.Comma(int64(report.Summary.UniqueWikiPages))},
			{"Total link instances (incl. duplicates)", humanize.Comma(int64(report.Summary.TotalResults))},
		},
	})
	md.PlainText("")

	md.H2("Pads by page")
	md.PlainText("")

	for _, page := range report.PageTitles() {
		md.H3(page)
		md.BulletList(report.PagesWithEtherpads[page]...)
		md.PlainText("")
	}

	md.HorizontalRule()
	md.PlainText("*Generated by padarchive*")

	return len(md.String()), md.Build()
}
