package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dlemos/procurement-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the comparative bid map: a summary sheet with the
// ranking and a per-item sheet with every usable quote. Supplier names
// never appear; the workbook is a blind-phase document.
func (g *Generator) Generate(d *model.Demand, analysis *model.BidAnalysis) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, d, analysis); err != nil {
		return nil, err
	}

	itemsSheet := "Items"
	file.NewSheet(itemsSheet)
	if err := g.writeItems(file, itemsSheet, analysis); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, d *model.Demand, analysis *model.BidAnalysis) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Demand")
	set("B1", d.Protocol)
	set("A2", "Title")
	set("B2", d.Title)
	set("A3", "Status")
	set("B3", string(d.Status))
	set("A4", "Proposals analyzed")
	set("B4", len(analysis.AliasedProposals))
	set("A5", "Potential mixed total")
	set("B5", analysis.PotentialMixedTotal)
	if analysis.Economicity != nil {
		set("A6", "Economicity %")
		set("B6", analysis.Economicity.Percent)
	}

	tableRow := 8
	set(fmt.Sprintf("A%d", tableRow), "Position")
	set(fmt.Sprintf("B%d", tableRow), "Bidder")
	set(fmt.Sprintf("C%d", tableRow), "Calculated total")
	set(fmt.Sprintf("D%d", tableRow), "Historical benchmark")

	benchmarkByAlias := make(map[string]float64, len(analysis.AliasedProposals))
	for _, ap := range analysis.AliasedProposals {
		benchmarkByAlias[ap.Alias] = ap.HistoricalTotal
	}

	for i, rp := range analysis.RankedProposals {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), rp.Position)
		set(fmt.Sprintf("B%d", row), rp.Alias)
		set(fmt.Sprintf("C%d", row), rp.Total)
		set(fmt.Sprintf("D%d", row), benchmarkByAlias[rp.Alias])
	}

	_ = file.SetColWidth(sheet, "A", "A", 22)
	_ = file.SetColWidth(sheet, "B", "B", 26)
	_ = file.SetColWidth(sheet, "C", "D", 20)
	return nil
}

func (g *Generator) writeItems(file *excelize.File, sheet string, analysis *model.BidAnalysis) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Item", "Qty", "Bidder", "Unit price", "Line total", "Best for item"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	row := 2
	for _, ia := range analysis.Items {
		if len(ia.Quotes) == 0 {
			set(fmt.Sprintf("A%d", row), ia.Description)
			set(fmt.Sprintf("B%d", row), ia.Quantity)
			set(fmt.Sprintf("C%d", row), "no usable quote")
			row++
			continue
		}
		for _, quote := range ia.Quotes {
			set(fmt.Sprintf("A%d", row), ia.Description)
			set(fmt.Sprintf("B%d", row), ia.Quantity)
			set(fmt.Sprintf("C%d", row), quote.Alias)
			set(fmt.Sprintf("D%d", row), quote.UnitPrice)
			set(fmt.Sprintf("E%d", row), quote.UnitPrice*float64(ia.Quantity))
			if quote.Alias == ia.BestAlias {
				set(fmt.Sprintf("F%d", row), "x")
			}
			row++
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 40)
	_ = file.SetColWidth(sheet, "B", "F", 16)
	return nil
}
