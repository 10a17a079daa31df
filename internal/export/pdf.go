package export

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/models"
)

type PDFOptions struct {
	// Compress deflates page streams. Tests turn it off to inspect the text.
	Compress bool
}

const (
	pdfMargin        = 15.0
	pdfRowHeight     = 6.0
	pdfTableFontSize = 8.0
	pdfMinIDFontSize = 5.0
	pdfIDLineHeight  = 3.0

	coreFont    = "Helvetica"
	unicodeFont = "DejaVu"
)

//go:embed fonts/DejaVuSansCondensed.ttf
var dejaVuRegular []byte

//go:embed fonts/DejaVuSansCondensed-Bold.ttf
var dejaVuBold []byte

type pdfColumn struct {
	title string
	width float64
	align string
}

var pdfColumns = []pdfColumn{
	{title: "ID", width: 40, align: "L"},
	{title: "Date", width: 22, align: "L"},
	{title: "Score", width: 15, align: "R"},
	{title: "Label", width: 20, align: "L"},
	{title: "Polarity", width: 18, align: "R"},
	{title: "Title", width: 65, align: "L"},
}

var labelColors = map[models.Label][3]int{
	models.LabelPositive: {46, 139, 87},
	models.LabelNeutral:  {150, 150, 150},
	models.LabelNegative: {200, 55, 55},
}

// pdfText picks a font per string. Text the core fonts can encode (cp1252)
// stays on Helvetica; anything else, Arabic included, uses the embedded
// DejaVu font, loaded on first use.
type pdfText struct {
	pdf           *fpdf.Fpdf
	tr            func(string) string
	unicodeLoaded bool
}

func newPDFText(pdf *fpdf.Fpdf) *pdfText {
	return &pdfText{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// font selects the font for s at size and returns the encoder for strings
// drawn with it.
func (t *pdfText) font(style string, size float64, s string) func(string) string {
	if cp1252(s) {
		t.pdf.LTR()
		t.pdf.SetFont(coreFont, style, size)
		return t.tr
	}

	if !t.unicodeLoaded {
		t.pdf.AddUTF8FontFromBytes(unicodeFont, "", dejaVuRegular)
		t.pdf.AddUTF8FontFromBytes(unicodeFont, "B", dejaVuBold)
		t.unicodeLoaded = true
	}
	unicodeStyle := ""
	if strings.Contains(style, "B") {
		unicodeStyle = "B"
	}
	t.pdf.SetFont(unicodeFont, unicodeStyle, size)
	if rightToLeft(s) {
		t.pdf.RTL()
	} else {
		t.pdf.LTR()
	}
	return func(v string) string { return v }
}

// line writes s as a full-width line.
func (t *pdfText) line(style string, size, height float64, s string) {
	enc := t.font(style, size, s)
	t.pdf.CellFormat(0, height, enc(s), "", 1, "L", false, 0, "")
}

func cp1252(s string) bool {
	for _, r := range s {
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return false
		}
	}
	return true
}

func rightToLeft(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Arabic, unicode.Hebrew) {
			return true
		}
	}
	return false
}

// WritePDF renders the printable report: summary header, label distribution
// bar, the row table and recommendations.
func WritePDF(w io.Writer, report Report, opts PDFOptions) error {
	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	generated = generated.UTC()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(opts.Compress)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("Reddit Sentiment Report", true)
	pdf.SetCreator("sentiboard", true)
	pdf.SetCreationDate(generated)
	pdf.SetModificationDate(generated)
	pdf.AliasNbPages("")
	text := newPDFText(pdf)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.LTR()
		pdf.SetFont(coreFont, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeSummary(text, report, generated)
	writeDistribution(pdf, report.Summary)
	writeTable(text, report.View.Posts)
	writeRecommendations(text, report.Recommendations)

	if err := pdf.Output(w); err != nil {
		return apperrors.Export("PDFExport", "could not render report", err)
	}
	return nil
}

func writeSummary(text *pdfText, report Report, generated time.Time) {
	pdf := text.pdf
	s := report.Summary

	pdf.SetTextColor(0, 0, 0)
	text.line("B", 16, 10, "Reddit Sentiment Report")

	pdf.SetTextColor(80, 80, 80)
	text.line("", 10, 5, "Generated: "+generated.Format("2006-01-02 15:04 UTC"))
	if s.Keyword != "" {
		text.line("", 10, 5, "Search term: "+s.Keyword)
	}
	pdf.Ln(3)

	pdf.SetTextColor(0, 0, 0)
	text.line("B", 12, 7, "Summary")

	text.line("", 10, 5, fmt.Sprintf("Posts in view: %d of %d", s.Total, s.CollectionLen))
	for _, lc := range s.Labels {
		text.line("", 10, 5, fmt.Sprintf("%s: %d (%.1f%%)", lc.Label, lc.Count, lc.Percent))
	}
	text.line("", 10, 5, fmt.Sprintf("Mean polarity: %.3f", s.MeanPolarity))
	text.line("", 10, 5, fmt.Sprintf("Mean score: %.1f", s.MeanScore))
	if !s.Earliest.IsZero() {
		text.line("", 10, 5, fmt.Sprintf("Date range: %s to %s",
			s.Earliest.UTC().Format("2006-01-02"), s.Latest.UTC().Format("2006-01-02")))
	}
	pdf.Ln(3)
}

func writeDistribution(pdf *fpdf.Fpdf, s models.Summary) {
	if s.Total == 0 {
		return
	}
	left, _, right, _ := pdf.GetMargins()
	pageWidth, _ := pdf.GetPageSize()
	width := pageWidth - left - right
	x, y := left, pdf.GetY()

	for _, lc := range s.Labels {
		if lc.Count == 0 {
			continue
		}
		segment := width * float64(lc.Count) / float64(s.Total)
		c := labelColors[lc.Label]
		pdf.SetFillColor(c[0], c[1], c[2])
		pdf.Rect(x, y, segment, 6, "F")
		x += segment
	}
	pdf.SetY(y + 10)
}

func writeTableHeader(pdf *fpdf.Fpdf) {
	pdf.LTR()
	pdf.SetFont(coreFont, "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetTextColor(0, 0, 0)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, pdfRowHeight+1, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func writeTable(text *pdfText, posts []models.LabeledPost) {
	pdf := text.pdf
	text.line("B", 12, 7, "Posts")
	if len(posts) == 0 {
		text.line("", 10, 5, "No posts match the current filters.")
		return
	}

	_, pageHeight := pdf.GetPageSize()
	writeTableHeader(pdf)
	for _, p := range posts {
		idCol := pdfColumns[0]
		enc := text.font("", pdfTableFontSize, p.ID)
		lines, idSize := idLines(pdf, enc, p.ID, idCol.width-2*pdf.GetCellMargin())
		rowHeight := max(pdfRowHeight, float64(len(lines))*pdfIDLineHeight)

		if pdf.GetY()+rowHeight > pageHeight-pdfMargin {
			pdf.AddPage()
			writeTableHeader(pdf)
		}

		x, y := pdf.GetXY()
		lineHeight := rowHeight / float64(len(lines))
		text.font("", idSize, p.ID)
		for i, line := range lines {
			pdf.SetXY(x, y+float64(i)*lineHeight)
			pdf.CellFormat(idCol.width, lineHeight, line, "", 0, idCol.align, false, 0, "")
		}
		pdf.Rect(x, y, idCol.width, rowHeight, "D")
		pdf.SetXY(x+idCol.width, y)

		values := []string{
			p.CreatedAt.UTC().Format("2006-01-02"),
			fmt.Sprint(p.Score),
			string(p.Sentiment.Label),
			fmt.Sprintf("%.3f", p.Sentiment.Score),
			p.Title,
		}
		for i, col := range pdfColumns[1:] {
			enc := text.font("", pdfTableFontSize, values[i])
			cell := fitText(pdf, enc, values[i], col.width-2*pdf.GetCellMargin())
			if col.title == "Label" {
				c := labelColors[p.Sentiment.Label]
				pdf.SetTextColor(c[0], c[1], c[2])
			}
			pdf.CellFormat(col.width, rowHeight, cell, "1", 0, col.align, false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func writeRecommendations(text *pdfText, recs []string) {
	if len(recs) == 0 {
		return
	}
	text.pdf.SetTextColor(0, 0, 0)
	text.line("B", 12, 7, "Recommendations")
	for _, r := range recs {
		enc := text.font("", 10, r)
		text.pdf.MultiCell(0, 5, enc("- "+r), "", "L", false)
	}
}

// idLines fits an id into width without dropping any of it: the font shrinks
// down to pdfMinIDFontSize and whatever still does not fit wraps onto more
// lines. The font is left at the returned size.
func idLines(pdf *fpdf.Fpdf, enc func(string) string, id string, width float64) ([]string, float64) {
	size := pdfTableFontSize
	for size > pdfMinIDFontSize && pdf.GetStringWidth(enc(id)) > width {
		size -= 0.5
		pdf.SetFontSize(size)
	}
	if pdf.GetStringWidth(enc(id)) <= width {
		return []string{enc(id)}, size
	}

	var lines []string
	var current []rune
	for _, r := range id {
		if len(current) > 0 && pdf.GetStringWidth(enc(string(append(current, r)))) > width {
			lines = append(lines, enc(string(current)))
			current = current[:0]
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		lines = append(lines, enc(string(current)))
	}
	return lines, size
}

// fitText encodes s for the current font and shortens it with an ellipsis
// until it fits width.
func fitText(pdf *fpdf.Fpdf, enc func(string) string, s string, width float64) string {
	if pdf.GetStringWidth(enc(s)) <= width {
		return enc(s)
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(enc(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return enc(string(runes) + "...")
}
