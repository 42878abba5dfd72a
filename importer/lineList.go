package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bitbucket.org/tkmfield/precom_backend/config"
	"bitbucket.org/tkmfield/precom_backend/models"
	"bitbucket.org/tkmfield/precom_backend/utils"
)

type lineListRow struct {
	LineID   string `validate:"required,max=100"`
	NDEGrade string `validate:"max=200"`
}

// ImportLineList loads the engineering line list, which carries the NDE
// grade requirement per pipeline. Rows are keyed by line id and upserted.
func ImportLineList(ctx context.Context, db *gorm.DB, r io.Reader) (*ImportResult, error) {
	logger := config.GetLogger()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := sheetRows(f, "LineList")
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data rows")
	}

	idx := buildHeaderIndex(rows[0])
	result := &ImportResult{}
	lines := make([]models.LineList, 0, len(rows)-1)

	for i, row := range rows[1:] {
		result.TotalRows++
		rowNo := i + 2

		parsed := lineListRow{
			LineID:   idx.cell(row, "Line ID", "LineID", "Pipeline Number", "Line No"),
			NDEGrade: idx.cell(row, "NDE Grade", "NDEGrade", "NDE Class"),
		}
		if err := validate.Struct(parsed); err != nil {
			result.Skipped++
			result.RowErrors = append(result.RowErrors,
				fmt.Sprintf("row %d: %v", rowNo, utils.ProcessValidationErrors(err)))
			continue
		}

		lines = append(lines, models.LineList{
			LineID:        parsed.LineID,
			NDEGrade:      parsed.NDEGrade,
			Service:       idx.cell(row, "Service"),
			Material:      idx.cell(row, "Material"),
			DesignTemp:    idx.cell(row, "Design Temp", "DesignTemp"),
			DesignPress:   idx.cell(row, "Design Press", "DesignPress", "Design Pressure"),
			InsulationTyp: idx.cell(row, "Insulation Type", "InsulationTyp"),
		})
	}

	if len(lines) > 0 {
		err = db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "line_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"nde_grade", "service", "material", "design_temp",
				"design_press", "insulation_typ", "is_deleted", "updated_at",
			}),
		}).CreateInBatches(lines, 500).Error
		if err != nil {
			config.LogError(logger, "importer", "ImportLineList", "batch upsert failed", len(lines), err)
			return nil, err
		}
		result.Imported = len(lines)
	}

	logger.WithFields(logrus.Fields{
		"module":   "importer",
		"func":     "ImportLineList",
		"total":    result.TotalRows,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("line list imported")
	return result, nil
}
