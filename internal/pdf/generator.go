package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/dlemos/procurement-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders the homologation term for an awarded demand.
func (g *Generator) Generate(d *model.Demand) ([]byte, error) {
	if d.Award == nil {
		return nil, fmt.Errorf("demand %s has no award", d.Protocol)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "HOMOLOGATION TERM", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Demand %s - %s", d.Protocol, d.Title), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Requesting department: %s", safeValue(d.Department)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Decision", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Award mode: %s", modeLabel(d.Award.Mode)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Decision date: %s", formatDate(d.DecisionDate)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Justification", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, d.Award.Justification, "", "L", false)
	pdf.Ln(2)

	if d.Award.Mode == model.AwardModeItem {
		g.writeItemTable(pdf, d)
	} else {
		g.writeGlobalBlock(pdf, d)
	}

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Signatures", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 10, "Purchasing officer: ______________________", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 10, "Department head: ______________________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeGlobalBlock(pdf *gofpdf.Fpdf, d *model.Demand) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Winning supplier", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, safeValue(d.Award.SupplierName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Total value: %.2f", d.Award.TotalValue), "", 1, "L", false, 0, "")
}

func (g *Generator) writeItemTable(pdf *gofpdf.Fpdf, d *model.Demand) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Awarded items", "", 1, "L", false, 0, "")

	headers := []string{"Item", "Supplier", "Unit price", "Qty", "Total"}
	widths := []float64{70, 50, 22, 14, 24}
	drawTableRow(pdf, g.fontName, headers, widths, true)

	for _, ai := range d.Award.Items {
		description := ai.ItemID.String()
		if item := d.ItemByID(ai.ItemID); item != nil {
			description = item.Description
		}
		drawTableRow(pdf, g.fontName, []string{
			description,
			ai.SupplierName,
			fmt.Sprintf("%.2f", ai.UnitPrice),
			fmt.Sprintf("%d", ai.Quantity),
			fmt.Sprintf("%.2f", ai.TotalValue),
		}, widths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Aggregate total: %.2f", d.Award.TotalValue), "", 1, "R", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func modeLabel(mode model.AwardMode) string {
	if mode == model.AwardModeItem {
		return "Per item"
	}
	return "Global"
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}
