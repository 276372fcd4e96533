// File path: internal/document/render.go
package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/forgewise/intake/internal/common"
	"github.com/forgewise/intake/internal/common/telemetry"
	"github.com/forgewise/intake/internal/conversation"
)

// Layout constants, in millimetres on an A4 portrait page.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight

	headerBandHeight = 34.0
	lineHeight       = 5.0

	// Minimum space required before starting the conversation history
	// section on the current page, and before each individual turn.
	historyHeaderMinSpace = 40.0
	turnMinSpace          = 25.0
	footerBlockHeight     = 22.0
)

const noSummaryPlaceholder = "No summary provided"

// RenderRequirements produces the PDF attachment for a finalized requirements
// submission. The output is a pure function of the inputs and the current
// wall-clock time, which appears only in the generation timestamp.
func RenderRequirements(summary string, history conversation.History, userEmail, selectedStage string) ([]byte, error) {
	start := time.Now()
	pdf := build(summary, history, userEmail, selectedStage, start)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render requirements document: %w", err)
	}
	telemetry.RecordRender(time.Since(start))
	common.Logger().Info(
		"document: requirements rendered",
		"pages", pdf.PageCount(),
		"turns", len(history),
		"bytes", buf.Len(),
	)
	return buf.Bytes(), nil
}

// build assembles the document without serializing it, so callers (and tests)
// can inspect page counts before output.
func build(summary string, history conversation.History, userEmail, selectedStage string, now time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Project Requirements", false)
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	writeHeaderBand(pdf, tr, now)

	if strings.TrimSpace(selectedStage) == "" {
		selectedStage = "Custom Project"
	}
	writeSectionTitle(pdf, "Project Stage")
	writeParagraph(pdf, tr, selectedStage)

	writeSectionTitle(pdf, "User Contact")
	contact := strings.TrimSpace(userEmail)
	if contact == "" {
		contact = "Not provided"
	}
	writeParagraph(pdf, tr, contact)

	writeSectionTitle(pdf, "Requirements Summary")
	text := strings.TrimSpace(summary)
	if text == "" {
		text = noSummaryPlaceholder
	}
	writeParagraph(pdf, tr, text)

	if len(history) > 0 {
		if remainingSpace(pdf) < historyHeaderMinSpace {
			pdf.AddPage()
		}
		writeSectionTitle(pdf, "Conversation History")
		for _, turn := range history {
			if remainingSpace(pdf) < turnMinSpace {
				pdf.AddPage()
			}
			writeTurn(pdf, tr, turn)
		}
	}

	writeFooter(pdf, tr)
	return pdf
}

func writeHeaderBand(pdf *fpdf.Fpdf, tr func(string) string, now time.Time) {
	pdf.SetFillColor(30, 41, 66)
	pdf.Rect(0, 0, pageWidth, headerBandHeight, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(marginLeft, 9)
	pdf.CellFormat(contentWidth, 8, "Project Requirements", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(marginLeft)
	pdf.CellFormat(contentWidth, 5, "Prepared by the Forgewise requirements assistant", "", 1, "L", false, 0, "")
	pdf.SetX(marginLeft)
	pdf.CellFormat(contentWidth, 5, tr("Generated "+now.Format("January 2, 2006 at 15:04 MST")), "", 1, "L", false, 0, "")
	pdf.SetTextColor(33, 37, 41)
	pdf.SetY(headerBandHeight + 8)
}

func writeSectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(30, 41, 66)
	pdf.CellFormat(contentWidth, 7, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(30, 41, 66)
	pdf.Line(marginLeft, pdf.GetY(), marginLeft+contentWidth, pdf.GetY())
	pdf.Ln(2)
	pdf.SetTextColor(33, 37, 41)
}

func writeParagraph(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(contentWidth, lineHeight, tr(text), "", "L", false)
	pdf.Ln(4)
}

func writeTurn(pdf *fpdf.Fpdf, tr func(string) string, turn conversation.Turn) {
	label := "Client"
	if turn.Role == conversation.RoleAssistant {
		label = "Assistant"
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(90, 98, 112)
	pdf.CellFormat(contentWidth, 5, label, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(33, 37, 41)
	pdf.MultiCell(contentWidth, lineHeight-0.5, tr(turn.Content), "", "L", false)
	pdf.Ln(3)
}

func writeFooter(pdf *fpdf.Fpdf, tr func(string) string) {
	if remainingSpace(pdf) < footerBlockHeight {
		pdf.AddPage()
	}
	pdf.SetY(pageHeight - marginBottom - footerBlockHeight + 6)
	pdf.SetDrawColor(200, 204, 210)
	pdf.Line(marginLeft, pdf.GetY(), marginLeft+contentWidth, pdf.GetY())
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 126, 136)
	pdf.MultiCell(contentWidth, 4.5, tr("This document was generated automatically from a requirements-intake conversation. A Forgewise engineer will follow up to refine the scope with you."), "", "C", false)
}

func remainingSpace(pdf *fpdf.Fpdf) float64 {
	return pageHeight - marginBottom - pdf.GetY()
}
