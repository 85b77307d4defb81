package out

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"rsc.io/pdf"

	viewerout "granth/internal/modules/viewer/port/out"
	apperrors "granth/internal/platform/errors"
)

// PDFDocument is a parsed PDF held in memory.
type PDFDocument struct {
	reader *pdf.Reader
	pages  int
}

// ParsePDF parses data. rsc.io/pdf panics on some malformed input; that is
// reported as a malformed-document load error.
func ParsePDF(data []byte) (doc viewerout.Document, err error) {
	defer func() {
		if v := recover(); v != nil {
			doc, err = nil, apperrors.NewLoadError(apperrors.LoadMalformed, fmt.Errorf("%v", v), "document is not a readable pdf")
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperrors.NewLoadError(apperrors.LoadMalformed, err, "document is not a readable pdf")
	}
	return &PDFDocument{reader: r, pages: r.NumPage()}, nil
}

func (d *PDFDocument) PageCount() int { return d.pages }

// PageText joins the page's text runs, starting a new line whenever the
// baseline moves.
func (d *PDFDocument) PageText(page int) (text string, err error) {
	if page < 1 || page > d.pages {
		return "", fmt.Errorf("%w: page %d of %d", apperrors.ErrInvalidInput, page, d.pages)
	}
	defer func() {
		if v := recover(); v != nil {
			text, err = "", fmt.Errorf("read pdf page %d: %v", page, v)
		}
	}()
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("pdf page %d is null", page)
	}

	var (
		b     strings.Builder
		lastY = math.NaN()
	)
	for _, t := range p.Content().Text {
		if !math.IsNaN(lastY) && math.Abs(t.Y-lastY) > math.Max(t.FontSize/2, 1) {
			b.WriteByte('\n')
		}
		lastY = t.Y
		b.WriteString(t.S)
	}
	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}
