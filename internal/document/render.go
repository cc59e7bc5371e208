package document

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// fontFamily is one of the PDF core fonts, so no font files are embedded.
const fontFamily = "Helvetica"

func (s Style) fontStyle() string {
	if s.Bold {
		return "B"
	}
	return ""
}

func (a Align) cellAlign() string {
	if a == AlignRight {
		return "RM"
	}
	return "LM"
}

// FontMetrics measures strings with the core font metrics of fpdf. It is
// not safe for concurrent use; create one per generation call.
type FontMetrics struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
}

// NewFontMetrics returns a measurer for the Helvetica core font
func NewFontMetrics() *FontMetrics {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &FontMetrics{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// StringWidth implements Measurer
func (m *FontMetrics) StringWidth(s string, st Style) float64 {
	m.pdf.SetFont(fontFamily, st.fontStyle(), st.Size)
	return m.pdf.GetStringWidth(m.translate(s))
}

// Render encodes a laid out document as PDF bytes. Pages are replayed in
// order, so fpdf only ever writes to its current page.
func Render(doc *Document) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: doc.Size.Width, Ht: doc.Size.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("UGC Dashboard", true)
	pdf.SetDrawColor(200, 200, 200)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, page := range doc.Pages {
		pdf.AddPage()
		for j, op := range page.Ops {
			switch op.Kind {
			case OpText:
				pdf.SetFont(fontFamily, op.Style.fontStyle(), op.Style.Size)
				pdf.SetXY(op.X, op.Y)
				pdf.CellFormat(op.W, op.H, tr(op.Text), "", 0, op.Align.cellAlign(), false, 0, "")
			case OpRule:
				pdf.Line(op.X, op.Y, op.X+op.W, op.Y)
			case OpImage:
				name := fmt.Sprintf("page%d-img%d", i, j)
				opts := fpdf.ImageOptions{ImageType: "PNG"}
				pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(op.Image))
				pdf.ImageOptions(name, op.X, op.Y, op.W, op.H, false, opts, 0, "")
			}
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("encoding pdf: %w", err)
	}
	return buf.Bytes(), nil
}
