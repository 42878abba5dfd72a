package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"bitbucket.org/tkmfield/precom_backend/config"
	"bitbucket.org/tkmfield/precom_backend/models"
	"bitbucket.org/tkmfield/precom_backend/utils"
)

type faclistRow struct {
	Block string `validate:"required,max=100"`
}

// ImportFaclist replaces the facility block register with the workbook's
// contents. The register is reference data with no derived state hanging off
// individual rows, so a full swap inside one transaction is simplest.
func ImportFaclist(ctx context.Context, db *gorm.DB, r io.Reader) (*ImportResult, error) {
	logger := config.GetLogger()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := sheetRows(f, "Faclist")
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data rows")
	}

	idx := buildHeaderIndex(rows[0])
	if !idx.has("Block") && !idx.has("BLK") {
		return nil, fmt.Errorf("workbook has no Block column")
	}
	result := &ImportResult{}
	entries := make([]models.Faclist, 0, len(rows)-1)

	for i, row := range rows[1:] {
		result.TotalRows++
		rowNo := i + 2

		parsed := faclistRow{
			Block: idx.cell(row, "Block", "BLK"),
		}
		if err := validate.Struct(parsed); err != nil {
			result.Skipped++
			result.RowErrors = append(result.RowErrors,
				fmt.Sprintf("row %d: %v", rowNo, utils.ProcessValidationErrors(err)))
			continue
		}

		entries = append(entries, models.Faclist{
			Block:          parsed.Block,
			MainBlock:      idx.cell(row, "Main Block", "MainBlock"),
			SimpleBLK:      idx.cell(row, "Simple BLK", "SimpleBLK"),
			SubProjectCode: idx.cell(row, "Sub Project Code", "SubProjectCode", "Subproject"),
			Train:          idx.cell(row, "Train"),
			Unit:           idx.cell(row, "Unit"),
			BCCQuarter:     idx.cell(row, "BCC Quarter", "BCCQuarter"),
			DrawingNumber:  idx.cell(row, "Drawing Number", "DrawingNumber"),
			Descriptions:   idx.cell(row, "Descriptions", "Description"),
		})
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM faclists`).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.CreateInBatches(entries, 500).Error
	})
	if err != nil {
		config.LogError(logger, "importer", "ImportFaclist", "register swap failed", len(entries), err)
		return nil, err
	}
	result.Imported = len(entries)

	logger.WithFields(logrus.Fields{
		"module":   "importer",
		"func":     "ImportFaclist",
		"total":    result.TotalRows,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("facility block register imported")
	return result, nil
}
