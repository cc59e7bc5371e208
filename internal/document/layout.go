package document

import (
	"fmt"
	"math"
	"strings"
)

// PageSize is a page format in millimetres
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

var (
	PageA4     = PageSize{Name: "A4", Width: 210, Height: 297}
	PageLetter = PageSize{Name: "Letter", Width: 215.9, Height: 279.4}
)

// ParsePageSize resolves a page size by name, case-insensitively
func ParsePageSize(name string) (PageSize, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "a4":
		return PageA4, nil
	case "letter":
		return PageLetter, nil
	default:
		return PageSize{}, fmt.Errorf("%w: %q", ErrUnknownPageSize, name)
	}
}

// Margin is applied on all four sides of a page, in millimetres.
const Margin = 20.0

// lineHeightFactor converts a font size in points to a line advance in mm.
const lineHeightFactor = 0.5

// Style selects font size and weight for one write call
type Style struct {
	Size float64
	Bold bool
}

// Font roles
var (
	StyleTitle    = Style{Size: 24, Bold: true}
	StyleHeader   = Style{Size: 16, Bold: true}
	StyleBody     = Style{Size: 12}
	StyleBodyBold = Style{Size: 12, Bold: true}
	StyleCell     = Style{Size: 12}
	StyleFootnote = Style{Size: 10}
)

// LineHeight returns the vertical advance of one line in this style
func (s Style) LineHeight() float64 {
	return s.Size * lineHeightFactor
}

// Align is the horizontal alignment of a text op
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// OpKind identifies a drawing op
type OpKind int

const (
	OpText OpKind = iota
	OpRule
	OpImage
)

// Op is a single positioned drawing instruction. X and Y are the top-left
// corner of its box in millimetres.
type Op struct {
	Kind  OpKind
	X, Y  float64
	W, H  float64
	Text  string
	Style Style
	Align Align
	Image []byte // PNG, for OpImage
}

// Page holds the ops laid out on one page
type Page struct {
	Ops []Op
}

// Document is the laid out, not yet encoded, report
type Document struct {
	Title    string
	Size     PageSize
	Pages    []Page
	Sections []string // section headings in emission order
}

// Text returns the text of every op on every page, one per line.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, p := range d.Pages {
		for _, op := range p.Ops {
			if op.Kind == OpText {
				sb.WriteString(op.Text)
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}

// Cursor is the current write position: page index (0-based) and the top
// of the next line in millimetres.
type Cursor struct {
	Page int
	Y    float64
}

// Measurer reports the rendered width of a string in millimetres
type Measurer interface {
	StringWidth(s string, st Style) float64
}

// Writer lays text out top to bottom, starting new pages as needed. A
// Writer belongs to a single generation call.
type Writer struct {
	size     PageSize
	measure  Measurer
	pages    []Page
	sections []string
	cursor   Cursor
}

// NewWriter returns a writer positioned at the top of an empty first page
func NewWriter(size PageSize, m Measurer) *Writer {
	return &Writer{
		size:    size,
		measure: m,
		pages:   []Page{{}},
		cursor:  Cursor{Page: 0, Y: Margin},
	}
}

// Cursor returns the current write position
func (w *Writer) Cursor() Cursor {
	return w.cursor
}

// PageCount returns the number of pages started so far
func (w *Writer) PageCount() int {
	return len(w.pages)
}

// Left is the x coordinate of the left margin
func (w *Writer) Left() float64 {
	return Margin
}

// ContentWidth is the usable width between the margins
func (w *Writer) ContentWidth() float64 {
	return w.size.Width - 2*Margin
}

// Limit is the lowest y any content may reach on a page
func (w *Writer) Limit() float64 {
	return w.size.Height - Margin
}

// NewPage starts a new page and moves the cursor to its top margin
func (w *Writer) NewPage() {
	w.pages = append(w.pages, Page{})
	w.cursor = Cursor{Page: len(w.pages) - 1, Y: Margin}
}

// CheckBreak starts a new page when a block of the given height would not
// fit above the bottom margin. It reports whether a break happened. A block
// taller than a whole page is placed at the top of a fresh page anyway.
func (w *Writer) CheckBreak(height float64) bool {
	if w.cursor.Y+height <= w.Limit() {
		return false
	}
	if w.cursor.Y == Margin && len(w.pages[w.cursor.Page].Ops) == 0 {
		return false
	}
	w.NewPage()
	return true
}

// Space advances the cursor, never past the bottom margin. The next write
// breaks the page if the remaining room is too small.
func (w *Writer) Space(height float64) {
	w.cursor.Y = math.Min(w.cursor.Y+height, w.Limit())
}

// WriteLine writes a single line of text indented from the left margin.
func (w *Writer) WriteLine(text string, st Style, indent float64) {
	lh := st.LineHeight()
	w.CheckBreak(lh)
	w.push(Op{
		Kind:  OpText,
		X:     w.Left() + indent,
		Y:     w.cursor.Y,
		W:     w.ContentWidth() - indent,
		H:     lh,
		Text:  text,
		Style: st,
	})
	w.cursor.Y += lh
}

// WriteWrapped word-wraps text to the content width and writes it line by
// line. Each line is checked for a page break on its own, so a long
// paragraph may continue on the next page.
func (w *Writer) WriteWrapped(text string, st Style, indent float64) {
	for _, line := range w.Wrap(text, st, w.ContentWidth()-indent) {
		w.WriteLine(line, st, indent)
	}
}

// WriteRow writes one table row. Cells are placed left to right using the
// given column widths; a row is never split across pages.
func (w *Writer) WriteRow(cells []string, widths []float64, st Style) {
	lh := st.LineHeight()
	w.CheckBreak(lh)
	x := w.Left()
	for i, cell := range cells {
		cw := w.ContentWidth() - (x - w.Left())
		if i < len(widths) {
			cw = widths[i]
		}
		w.push(Op{
			Kind:  OpText,
			X:     x,
			Y:     w.cursor.Y,
			W:     cw,
			H:     lh,
			Text:  w.truncate(cell, st, cw),
			Style: st,
		})
		x += cw
	}
	w.cursor.Y += lh
}

// Rule draws a horizontal line across the content width at the cursor.
func (w *Writer) Rule() {
	w.push(Op{Kind: OpRule, X: w.Left(), Y: w.cursor.Y, W: w.ContentWidth()})
	w.Space(1)
}

// Heading writes a section header and records it in the section list.
// The header moves to the next page unless its first body line fits below it.
func (w *Writer) Heading(text string) {
	w.sections = append(w.sections, text)
	w.CheckBreak(StyleHeader.LineHeight() + headingGap + StyleBody.LineHeight())
	w.WriteWrapped(text, StyleHeader, 0)
	w.Space(headingGap)
}

const headingGap = 2

// Image places a PNG of the given size at the left margin.
func (w *Writer) Image(png []byte, width, height float64) {
	w.CheckBreak(height)
	w.push(Op{Kind: OpImage, X: w.Left(), Y: w.cursor.Y, W: width, H: height, Image: png})
	w.cursor.Y = math.Min(w.cursor.Y+height, w.Limit())
}

// StampFooters writes the attribution (bottom-left) and "Page i of N"
// (bottom-right) on every page. It runs once all content is laid out, so
// N is final.
func (w *Writer) StampFooters(attribution string) {
	total := len(w.pages)
	lh := StyleFootnote.LineHeight()
	y := w.size.Height - Margin + (Margin-lh)/2
	for i := range w.pages {
		if attribution != "" {
			w.pages[i].Ops = append(w.pages[i].Ops, Op{
				Kind: OpText, X: w.Left(), Y: y, W: w.ContentWidth() / 2, H: lh,
				Text: attribution, Style: StyleFootnote, Align: AlignLeft,
			})
		}
		w.pages[i].Ops = append(w.pages[i].Ops, Op{
			Kind: OpText, X: w.Left() + w.ContentWidth()/2, Y: y, W: w.ContentWidth() / 2, H: lh,
			Text: fmt.Sprintf("Page %d of %d", i+1, total), Style: StyleFootnote, Align: AlignRight,
		})
	}
}

// Document returns the laid out pages
func (w *Writer) Document(title string) *Document {
	return &Document{
		Title:    title,
		Size:     w.size,
		Pages:    w.pages,
		Sections: w.sections,
	}
}

func (w *Writer) push(op Op) {
	p := &w.pages[w.cursor.Page]
	p.Ops = append(p.Ops, op)
}

// Wrap breaks text into lines no wider than width. Explicit newlines are
// kept; words longer than a full line are split by character.
func (w *Writer) Wrap(text string, st Style, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if w.measure.StringWidth(candidate, st) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			line = ""
			for _, part := range w.splitWord(word, st, width) {
				if line != "" {
					lines = append(lines, line)
				}
				line = part
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func (w *Writer) splitWord(word string, st Style, width float64) []string {
	if w.measure.StringWidth(word, st) <= width {
		return []string{word}
	}
	var parts []string
	var cur []rune
	for _, r := range word {
		next := append(cur, r)
		if len(cur) > 0 && w.measure.StringWidth(string(next), st) > width {
			parts = append(parts, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	if len(cur) > 0 {
		parts = append(parts, string(cur))
	}
	return parts
}

// truncate shortens a table cell to fit its column, marking the cut with "...".
func (w *Writer) truncate(text string, st Style, width float64) string {
	if w.measure.StringWidth(text, st) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		s := string(runes) + "..."
		if w.measure.StringWidth(s, st) <= width {
			return s
		}
	}
	return ""
}
