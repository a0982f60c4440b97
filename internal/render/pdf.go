package render

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/arloliu/seatplan/internal/layout"
	"github.com/arloliu/seatplan/types"
)

// A4 landscape, millimeters.
const (
	pageW   = 297.0
	pageH   = 210.0
	margin  = 10.0
	qrSize  = 28.0
	qrImage = "plan_qr"
)

// PDFOptions controls the printable plan.
type PDFOptions struct {
	// Mirrored draws the teacher's view.
	Mirrored bool

	// QRText, when set, is encoded as a QR code in the bottom right corner,
	// typically a link to the saved plan.
	QRText string
}

// PDF renders the plan on one A4 landscape page.
//
// Parameters:
//   - p: Plan to draw
//   - geo: Layout metrics the rectangles were computed with
//   - opts: View and QR code options
//
// Returns:
//   - []byte: PDF document
//   - error: QR code or PDF generation error
func PDF(p Plan, geo layout.Geometry, opts PDFOptions) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(p.Title, true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	top := margin
	if p.Title != "" {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetXY(margin, margin)
		pdf.CellFormat(pageW-2*margin, 8, tr(p.Title), "", 0, "C", false, 0, "")
		top += 12
	}

	bottom := pageH - margin
	if opts.QRText != "" {
		bottom -= qrSize + 2
	}

	w, h := geo.Bounds(p.Schema, p.Rects)
	scale := min((pageW-2*margin)/w, (bottom-top)/h)
	offX := (pageW - w*scale) / 2

	place := func(r types.Rect) types.Rect {
		if opts.Mirrored {
			r = types.Rect{X: w - r.X - r.W, Y: h - r.Y - r.H, W: r.W, H: r.H}
		}

		return types.Rect{X: offX + r.X*scale, Y: top + r.Y*scale, W: r.W * scale, H: r.H * scale}
	}

	board := place(geo.Board(p.Schema))
	pdf.SetFillColor(47, 79, 79)
	pdf.Rect(board.X, board.Y, board.W, board.H, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(board.X, board.Y)
	pdf.CellFormat(board.W, board.H, boardLabel, "", 0, "C", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetDrawColor(85, 85, 85)
	pdf.SetLineWidth(0.2)

	for _, key := range slices.SortedFunc(maps.Keys(p.Rects), types.TableKey.Compare) {
		table := p.Rects[key]
		for s := range p.Schema.Capacity(key.X, key.Y) {
			seat := key.Seat(s)
			r := place(geo.SeatRect(table, s))

			_, banned := p.Forbidden[seat]
			if banned {
				pdf.SetFillColor(217, 217, 217)
			} else {
				pdf.SetFillColor(245, 245, 245)
			}
			pdf.Rect(r.X, r.Y, r.W, r.H, "FD")

			id, placed := p.Placements[seat]
			switch {
			case placed:
				pdf.SetXY(r.X, r.Y)
				pdf.CellFormat(r.W, r.H, fit(pdf, tr(p.Names[id]), r.W-1), "", 0, "C", false, 0, "")
			case banned:
				pdf.Line(r.X, r.Y, r.X+r.W, r.Y+r.H)
				pdf.Line(r.X+r.W, r.Y, r.X, r.Y+r.H)
			}
		}
	}

	if opts.QRText != "" {
		code, err := qrcode.New(opts.QRText, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR code: %w", err)
		}
		png, err := code.PNG(256)
		if err != nil {
			return nil, fmt.Errorf("failed to encode QR to PNG: %w", err)
		}

		imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(qrImage, imgOpts, bytes.NewReader(png))
		pdf.ImageOptions(qrImage, pageW-margin-qrSize, pageH-margin-qrSize, qrSize, qrSize, false, imgOpts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// fit shortens s with an ellipsis until it is at most width wide.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}

	runes := []rune(s)
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		if cand := string(runes) + "..."; pdf.GetStringWidth(cand) <= width {
			return cand
		}
	}

	return string(runes)
}
