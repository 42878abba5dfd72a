package workflow

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/tkmfield/precom_backend/config"
)

// BackfillWeldingBlocks recomputes the derived block label of every welding
// record from its drawing number. Existing values are overwritten, which
// repairs rows written before the canonical A-B-C ordering was in place.
// Returns the number of updated rows.
func BackfillWeldingBlocks(ctx context.Context, db *gorm.DB, logger *logrus.Logger) (int64, error) {
	if logger == nil {
		logger = config.GetLogger()
	}

	var drawings []string
	err := db.WithContext(ctx).Raw(`
		SELECT DISTINCT drawing_number
		FROM welding_records
		WHERE drawing_number IS NOT NULL AND drawing_number <> ''`).Scan(&drawings).Error
	if err != nil {
		return 0, err
	}

	var updated int64
	for _, drawing := range drawings {
		block := ExtractBlockFromDrawing(drawing)
		if block == "" {
			continue
		}
		result := db.WithContext(ctx).Exec(`
			UPDATE welding_records
			SET block = ?
			WHERE drawing_number = ? AND block <> ?`, block, drawing, block)
		if result.Error != nil {
			config.LogError(logger, "workflow", "BackfillWeldingBlocks", "block update failed", drawing, result.Error)
			return updated, result.Error
		}
		updated += result.RowsAffected
	}

	logger.WithFields(logrus.Fields{
		"module":   "workflow",
		"func":     "BackfillWeldingBlocks",
		"drawings": len(drawings),
		"updated":  updated,
	}).Info("welding block backfill finished")
	return updated, nil
}
