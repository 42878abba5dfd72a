package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bitbucket.org/tkmfield/precom_backend/config"
	"bitbucket.org/tkmfield/precom_backend/models"
	"bitbucket.org/tkmfield/precom_backend/utils"
	"bitbucket.org/tkmfield/precom_backend/workflow"
)

var validate = validator.New()

// ImportResult reports what an importer did with one workbook.
type ImportResult struct {
	TotalRows int      `json:"total_rows"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	RowErrors []string `json:"row_errors,omitempty"`
}

// weldingRow is the validated shape of one spreadsheet row before it turns
// into a WeldingRecord.
type weldingRow struct {
	WeldID         string `validate:"required,max=100"`
	TestPackageID  string `validate:"max=100"`
	SystemCode     string `validate:"max=50"`
	SubSystemCode  string `validate:"max=50"`
	PipelineNumber string `validate:"max=100"`
	DrawingNumber  string `validate:"max=200"`
	RevNo          string `validate:"max=20"`
	Status         string `validate:"max=50"`
	WelderRoot     string `validate:"max=100"`
	WelderFill     string `validate:"max=100"`
}

// ImportWeldingList loads a welding list workbook into welding_records.
// Rows are keyed by (test package, weld id) and upserted, so re-importing a
// corrected sheet overwrites earlier rows instead of duplicating them.
// After the rows land it refreshes the package registry from the imported
// data. Aggregate tables are NOT rebuilt here; callers decide when.
func ImportWeldingList(ctx context.Context, db *gorm.DB, r io.Reader, source string) (*ImportResult, error) {
	logger := config.GetLogger()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := sheetRows(f, "WeldingList")
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data rows")
	}

	idx := buildHeaderIndex(rows[0])
	result := &ImportResult{}
	records := make([]models.WeldingRecord, 0, len(rows)-1)

	for i, row := range rows[1:] {
		result.TotalRows++
		rowNo := i + 2

		parsed := weldingRow{
			WeldID:         idx.cell(row, "Weld ID", "WeldID"),
			TestPackageID:  idx.cell(row, "Test Package ID", "TestPackageID", "Package No"),
			SystemCode:     idx.cell(row, "System Code", "SystemCode", "System"),
			SubSystemCode:  idx.cell(row, "Sub System Code", "SubSystemCode", "Subsystem"),
			PipelineNumber: idx.cell(row, "Pipeline Number", "PipelineNumber", "Line No"),
			DrawingNumber:  idx.cell(row, "Drawing Number", "DrawingNumber", "ISO Drawing"),
			RevNo:          idx.cell(row, "Rev No", "RevNo", "Rev"),
			Status:         idx.cell(row, "Status"),
			WelderRoot:     idx.cell(row, "Welder Root", "WelderRoot", "Root Welder"),
			WelderFill:     idx.cell(row, "Welder Fill", "WelderFill", "Fill Welder"),
		}
		if parsed.WeldID == "" {
			// Compose a stable key the way the legacy sheets do.
			joint := idx.cell(row, "Weld Joint", "WeldJoint", "Joint No")
			if parsed.DrawingNumber != "" || parsed.PipelineNumber != "" || joint != "" {
				parsed.WeldID = parsed.DrawingNumber + "-" + parsed.PipelineNumber + "-" + joint
			} else {
				parsed.WeldID = fmt.Sprintf("AUTO-%d", rowNo)
			}
		}
		if err := validate.Struct(parsed); err != nil {
			result.Skipped++
			result.RowErrors = append(result.RowErrors,
				fmt.Sprintf("row %d: %v", rowNo, utils.ProcessValidationErrors(err)))
			continue
		}

		size, err := parseDecimal(idx.cell(row, "Size", "DIN", "Size (DIN)"))
		if err != nil {
			result.Skipped++
			result.RowErrors = append(result.RowErrors, fmt.Sprintf("row %d: size: %v", rowNo, err))
			continue
		}
		weldDate, err := parseDate(idx.cell(row, "Weld Date", "WeldDate"))
		if err != nil {
			result.Skipped++
			result.RowErrors = append(result.RowErrors, fmt.Sprintf("row %d: weld date: %v", rowNo, err))
			continue
		}

		records = append(records, models.WeldingRecord{
			WeldID:         parsed.WeldID,
			TestPackageID:  parsed.TestPackageID,
			SystemCode:     parsed.SystemCode,
			SubSystemCode:  parsed.SubSystemCode,
			PipelineNumber: parsed.PipelineNumber,
			DrawingNumber:  parsed.DrawingNumber,
			RevNo:          parsed.RevNo,
			Block:          workflow.ExtractBlockFromDrawing(parsed.DrawingNumber),
			Size:           size,
			WeldDate:       weldDate,
			Status:         parsed.Status,
			VTResult:       idx.cell(row, "VT Result", "VTResult", "VT"),
			RTResult:       idx.cell(row, "RT Result", "RTResult", "RT"),
			PTResult:       idx.cell(row, "PT Result", "PTResult", "PT"),
			UTResult:       idx.cell(row, "UT Result", "UTResult", "UT"),
			MTResult:       idx.cell(row, "MT Result", "MTResult", "MT"),
			PMIResult:      idx.cell(row, "PMI Result", "PMIResult", "PMI"),
			FTResult:       idx.cell(row, "FT Result", "FTResult", "FT"),
			HTResult:       idx.cell(row, "HT Result", "HTResult", "HT"),
			PWHTResult:     idx.cell(row, "PWHT Result", "PWHTResult", "PWHT"),
			WelderRoot:     parsed.WelderRoot,
			WelderFill:     parsed.WelderFill,
		})
	}

	if len(records) > 0 {
		err = db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "test_package_id"}, {Name: "weld_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"system_code", "sub_system_code", "pipeline_number", "drawing_number",
				"rev_no", "block", "size", "weld_date", "status",
				"vt_result", "rt_result", "pt_result", "ut_result", "mt_result",
				"pmi_result", "ft_result", "ht_result", "pwht_result",
				"welder_root", "welder_fill", "is_deleted", "updated_at",
			}),
		}).CreateInBatches(records, 500).Error
		if err != nil {
			config.LogError(logger, "importer", "ImportWeldingList", "batch upsert failed", len(records), err)
			return nil, err
		}
		result.Imported = len(records)
	}

	// Keep the package registry aligned with what was just imported.
	if _, err := models.SyncFromWelding(ctx, db, source); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"module":   "importer",
		"func":     "ImportWeldingList",
		"total":    result.TotalRows,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("welding list imported")
	return result, nil
}
