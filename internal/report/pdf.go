package report

import (
	"bufio"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the Markdown summary as a simple PDF: headings in bold,
// table rows as fixed-width cells, everything else as wrapped paragraphs.
func WritePDF(markdown string, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		switch {
		case s == "":
			pdf.Ln(4)
		case strings.HasPrefix(s, "#"):
			text := strings.TrimSpace(strings.TrimLeft(s, "#"))
			pdf.SetFont("Helvetica", "B", 14)
			pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
		case strings.HasPrefix(s, "|"):
			cells := strings.Split(strings.Trim(s, "|"), "|")
			if strings.HasPrefix(strings.TrimSpace(cells[0]), "---") {
				continue
			}
			for _, c := range cells {
				pdf.CellFormat(50, 6, tr(strings.TrimSpace(c)), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(6)
		case strings.HasPrefix(s, "- "):
			pdf.MultiCell(0, 5, tr("• "+strings.TrimPrefix(s, "- ")), "", "L", false)
		default:
			pdf.MultiCell(0, 5, tr(s), "", "L", false)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(outPath)
}
