package generate_excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/calendar"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/ledger"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/settlement"
)

const (
	summarySheet = "Resumen"
	detailSheet  = "Detalle"
)

type WeekSource interface {
	SummarizeWeek(ctx context.Context, q settlement.WeekQuery) (settlement.WeekReport, error)
	WeekEntries(ctx context.Context, q settlement.WeekQuery) (calendar.Week, []ledger.Entry, error)
	Calendar() *calendar.Resolver
}

type GenerateExcelService struct {
	source WeekSource
}

func NewGenerateService(source WeekSource) *GenerateExcelService {
	return &GenerateExcelService{source: source}
}

// WeeklyPayroll renders the week as an .xlsx file with one summary row per
// operator and one detail row per record. It also returns the week code.
func (g *GenerateExcelService) WeeklyPayroll(ctx context.Context, q settlement.WeekQuery) ([]byte, string, error) {
	const op = "service.generate_excel.WeeklyPayroll"

	report, err := g.source.SummarizeWeek(ctx, q)
	if err != nil {
		return nil, "", err
	}
	_, entries, err := g.source.WeekEntries(ctx, q)
	if err != nil {
		return nil, "", err
	}
	cal := g.source.Calendar()

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(detailSheet); err != nil {
		return nil, "", fmt.Errorf("%s: add sheet: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, "", fmt.Errorf("%s: header style: %w", op, err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, "", fmt.Errorf("%s: money style: %w", op, err)
	}

	// Summary: title row, header row, then one row per operator and a total.
	f.SetCellValue(summarySheet, "A1", cal.Label(report.Week))
	summaryHeaders := []string{"ID", "Operaria", "Piezas", "Registros", "Total a pagar"}
	writeHeader(f, summarySheet, 2, summaryHeaders, headerStyle)

	row := 3
	var pieces, records int
	for _, o := range report.Operators {
		f.SetCellValue(summarySheet, cellName(1, row), o.OperatorID)
		f.SetCellValue(summarySheet, cellName(2, row), o.Name)
		f.SetCellValue(summarySheet, cellName(3, row), o.Pieces)
		f.SetCellValue(summarySheet, cellName(4, row), o.Records)
		f.SetCellValue(summarySheet, cellName(5, row), o.Earned)
		pieces += o.Pieces
		records += o.Records
		row++
	}
	f.SetCellValue(summarySheet, cellName(2, row), "Total")
	f.SetCellValue(summarySheet, cellName(3, row), pieces)
	f.SetCellValue(summarySheet, cellName(4, row), records)
	if row > 3 {
		f.SetCellFormula(summarySheet, cellName(5, row), fmt.Sprintf("SUM(E3:E%d)", row-1))
	} else {
		f.SetCellValue(summarySheet, cellName(5, row), 0)
	}
	f.SetCellStyle(summarySheet, "E3", cellName(5, row), moneyStyle)
	freezeBelow(f, summarySheet, 2)
	f.SetColWidth(summarySheet, "B", "B", 28)
	f.SetColWidth(summarySheet, "C", "E", 14)

	detailHeaders := []string{"Fecha", "Día", "Operaria", "Escuela", "Folio", "Prenda", "Descripción", "Máquina", "Talla", "Cantidad", "Pago por pieza", "Total"}
	writeHeader(f, detailSheet, 1, detailHeaders, headerStyle)
	for i, e := range entries {
		r := i + 2
		day := cal.LocalDay(e.CreatedAt)
		f.SetCellValue(detailSheet, cellName(1, r), day)
		f.SetCellValue(detailSheet, cellName(2, r), cal.WeekdayName(day))
		f.SetCellValue(detailSheet, cellName(3, r), e.OperatorName)
		f.SetCellValue(detailSheet, cellName(4, r), e.School)
		f.SetCellValue(detailSheet, cellName(5, r), e.Folio)
		f.SetCellValue(detailSheet, cellName(6, r), e.Garment)
		f.SetCellValue(detailSheet, cellName(7, r), e.Description)
		f.SetCellValue(detailSheet, cellName(8, r), e.Machine)
		f.SetCellValue(detailSheet, cellName(9, r), e.SizeLabel())
		f.SetCellValue(detailSheet, cellName(10, r), e.Quantity)
		f.SetCellValue(detailSheet, cellName(11, r), e.UnitPrice)
		f.SetCellValue(detailSheet, cellName(12, r), e.Total)
	}
	if len(entries) > 0 {
		f.SetCellStyle(detailSheet, "K2", cellName(12, len(entries)+1), moneyStyle)
	}
	freezeBelow(f, detailSheet, 1)
	f.SetColWidth(detailSheet, "A", "H", 15)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("%s: write: %w", op, err)
	}
	return buf.Bytes(), report.Week.Code, nil
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string, style int) {
	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, row), name)
	}
	f.SetCellStyle(sheet, cellName(1, row), cellName(len(headers), row), style)
}

func freezeBelow(f *excelize.File, sheet string, rows int) {
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      rows,
		TopLeftCell: cellName(1, rows+1),
		ActivePane:  "bottomLeft",
	})
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
