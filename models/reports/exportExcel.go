package reports

import (
	"context"
	"fmt"
	"io"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type systemSummaryRow struct {
	SystemCode     string
	TotalDIN       decimal.Decimal
	CompletedDIN   decimal.Decimal
	TotalPackages  int
	TestedPackages int
}

func getSystemSummaries(ctx context.Context, db *gorm.DB) ([]systemSummaryRow, error) {
	sql := `
SELECT
    system_code,
    total_din,
    completed_din,
    total_packages,
    tested_packages
FROM system_welding_summaries
ORDER BY system_code`

	var records []systemSummaryRow
	if err := db.WithContext(ctx).Raw(sql).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ExportSystemSummaries writes the per system welding progress as a
// spreadsheet.
func ExportSystemSummaries(ctx context.Context, db *gorm.DB, w io.Writer) error {
	data, err := getSystemSummaries(ctx, db)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return err
	}

	// Add headers
	f.SetCellValue("Sheet1", "A1", "SystemCode")
	f.SetCellValue("Sheet1", "B1", "TotalDIN")
	f.SetCellValue("Sheet1", "C1", "CompletedDIN")
	f.SetCellValue("Sheet1", "D1", "WeldingProgress")
	f.SetCellValue("Sheet1", "E1", "TotalPackages")
	f.SetCellValue("Sheet1", "F1", "TestedPackages")

	// Add data
	for i, d := range data {
		progress := decimal.Zero
		if d.TotalDIN.IsPositive() {
			progress = d.CompletedDIN.Div(d.TotalDIN).Mul(decimal.NewFromInt(100)).Round(2)
		}
		f.SetCellValue("Sheet1", "A"+fmt.Sprint(i+2), d.SystemCode)
		f.SetCellValue("Sheet1", "B"+fmt.Sprint(i+2), d.TotalDIN.InexactFloat64())
		f.SetCellValue("Sheet1", "C"+fmt.Sprint(i+2), d.CompletedDIN.InexactFloat64())
		f.SetCellValue("Sheet1", "D"+fmt.Sprint(i+2), progress.InexactFloat64())
		f.SetCellValue("Sheet1", "E"+fmt.Sprint(i+2), d.TotalPackages)
		f.SetCellValue("Sheet1", "F"+fmt.Sprint(i+2), d.TestedPackages)
	}

	return f.Write(w)
}

type ndeStatusRow struct {
	TestPackageID string
	SystemCode    string
	VTTotal       *int `gorm:"column:vt_total"`
	VTCompleted   int  `gorm:"column:vt_completed"`
	VTRemaining   *int `gorm:"column:vt_remaining"`
	RTTotal       *int `gorm:"column:rt_total"`
	RTCompleted   int  `gorm:"column:rt_completed"`
	RTRemaining   *int `gorm:"column:rt_remaining"`
	PTTotal       *int `gorm:"column:pt_total"`
	PTCompleted   int  `gorm:"column:pt_completed"`
	PTRemaining   *int `gorm:"column:pt_remaining"`
	UTTotal       *int `gorm:"column:ut_total"`
	UTCompleted   int  `gorm:"column:ut_completed"`
	UTRemaining   *int `gorm:"column:ut_remaining"`
	PWHTTotal     *int `gorm:"column:pwht_total"`
	PWHTCompleted int  `gorm:"column:pwht_completed"`
	PWHTRemaining *int `gorm:"column:pwht_remaining"`
}

func getNDEStatuses(ctx context.Context, db *gorm.DB) ([]ndeStatusRow, error) {
	sql := `
SELECT
    n.test_package_id,
    COALESCE(tp.system_code, '') AS system_code,
    n.vt_total, n.vt_completed, n.vt_remaining,
    n.rt_total, n.rt_completed, n.rt_remaining,
    n.pt_total, n.pt_completed, n.pt_remaining,
    n.ut_total, n.ut_completed, n.ut_remaining,
    n.pwht_total, n.pwht_completed, n.pwht_remaining
FROM nde_pwht_statuses n
LEFT JOIN test_packages tp ON tp.test_package_id = n.test_package_id
ORDER BY n.test_package_id`

	var records []ndeStatusRow
	if err := db.WithContext(ctx).Raw(sql).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// naCell renders a gated column: NULL totals surface as "N/A", never as 0.
func naCell(p *int) interface{} {
	if p == nil {
		return "N/A"
	}
	return *p
}

// ExportNDEPWHTStatus writes the examination status of every test package
// as a spreadsheet.
func ExportNDEPWHTStatus(ctx context.Context, db *gorm.DB, w io.Writer) error {
	data, err := getNDEStatuses(ctx, db)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return err
	}

	headings := []string{
		"TestPackageID", "SystemCode",
		"VT Total", "VT Completed", "VT Remaining",
		"RT Total", "RT Completed", "RT Remaining",
		"PT Total", "PT Completed", "PT Remaining",
		"UT Total", "UT Completed", "UT Remaining",
		"PWHT Total", "PWHT Completed", "PWHT Remaining",
	}
	for i, h := range headings {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		f.SetCellValue("Sheet1", col+"1", h)
	}

	for i, d := range data {
		values := []interface{}{
			d.TestPackageID, d.SystemCode,
			naCell(d.VTTotal), d.VTCompleted, naCell(d.VTRemaining),
			naCell(d.RTTotal), d.RTCompleted, naCell(d.RTRemaining),
			naCell(d.PTTotal), d.PTCompleted, naCell(d.PTRemaining),
			naCell(d.UTTotal), d.UTCompleted, naCell(d.UTRemaining),
			naCell(d.PWHTTotal), d.PWHTCompleted, naCell(d.PWHTRemaining),
		}
		for j, v := range values {
			col, err := excelize.ColumnNumberToName(j + 1)
			if err != nil {
				return err
			}
			f.SetCellValue("Sheet1", col+fmt.Sprint(i+2), v)
		}
	}

	return f.Write(w)
}
