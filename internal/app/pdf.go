package app

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/articlereader/articlereader/internal/textutil"
)

// writeArticlePDF renders a minimal PDF of one extraction result: title,
// byline, the top passages with their scores, then the article body. This is
// intentionally simple and does not attempt real typography.
func writeArticlePDF(res *ExtractionResult, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	title := res.Title
	if strings.TrimSpace(title) == "" {
		title = "Extracted article"
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, title, "", "L", false)

	if res.Byline != "" {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 6, res.Byline, "", "L", false)
	}
	pdf.Ln(4)

	if len(res.RelevantPassages) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, "Top relevant passages", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for i, p := range res.RelevantPassages {
			line := fmt.Sprintf("%d. [%.4f] %s", i+1, p.Score, textutil.Prefix(p.Text, 400))
			pdf.MultiCell(0, 5, line, "", "L", false)
			pdf.Ln(1)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Article", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, para := range strings.Split(res.ArticleText, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		pdf.MultiCell(0, 5, para, "", "L", false)
		pdf.Ln(2)
	}

	return pdf.OutputFileAndClose(outPath)
}
