package workflow

import (
	"context"

	"gorm.io/gorm"

	"bitbucket.org/tkmfield/precom_backend/models"
)

// basePipelineStats groups the live welding records into per pipeline DIN
// totals. Soft deleted records stay out of the alert maths.
const basePipelineStats = `
	SELECT
		system_code,
		pipeline_number,
		COALESCE(SUM(size), 0) AS total_din,
		COALESCE(SUM(CASE WHEN ` + models.CompletedWeldCond + ` THEN size ELSE 0 END), 0) AS completed_din
	FROM welding_records
	WHERE system_code IS NOT NULL AND TRIM(system_code) <> ''
	  AND pipeline_number IS NOT NULL AND TRIM(pipeline_number) <> ''
	  AND is_deleted = FALSE
	GROUP BY system_code, pipeline_number`

// RefreshPreparationAlerts rebuilds the preparation alert table.
//
// A pipeline is fully welded when its completed DIN has reached its total
// DIN and that total is positive. A system's share is the DIN of its fully
// welded pipelines over the system's total DIN. Alert rows are written for
// every fully welded pipeline of a system whose share has reached the
// threshold. The rebuild discards earlier acknowledgement state.
func RefreshPreparationAlerts(ctx context.Context, tx *gorm.DB, threshold float64) (int64, error) {
	if err := tx.WithContext(ctx).Exec(`DELETE FROM test_package_preparation_alerts`).Error; err != nil {
		return 0, err
	}
	result := tx.WithContext(ctx).Exec(`
		INSERT INTO test_package_preparation_alerts (
			system_code,
			pipeline_number,
			total_din,
			completed_din,
			completion_rate,
			system_din_share,
			threshold_met,
			status,
			created_at,
			updated_at
		)
		SELECT
			cp.system_code,
			cp.pipeline_number,
			cp.total_din,
			cp.completed_din,
			CASE WHEN cp.total_din > 0 THEN cp.completed_din / cp.total_din ELSE 0 END,
			CASE WHEN ss.system_total_din > 0 THEN ss.system_completed_din / ss.system_total_din ELSE 0 END,
			CASE WHEN ss.system_total_din > 0 AND ss.system_completed_din / ss.system_total_din >= ? THEN 1 ELSE 0 END,
			'PENDING',
			NOW(), NOW()
		FROM (
			SELECT
				bs.system_code,
				bs.pipeline_number,
				bs.total_din,
				bs.completed_din,
				CASE WHEN bs.total_din > 0 AND bs.completed_din >= bs.total_din THEN 1 ELSE 0 END AS is_completed
			FROM (`+basePipelineStats+`) bs
		) cp
		JOIN (
			SELECT
				bs2.system_code,
				SUM(bs2.total_din) AS system_total_din,
				SUM(CASE WHEN bs2.total_din > 0 AND bs2.completed_din >= bs2.total_din THEN bs2.total_din ELSE 0 END) AS system_completed_din
			FROM (`+basePipelineStats+`) bs2
			GROUP BY bs2.system_code
		) ss ON ss.system_code = cp.system_code
		WHERE cp.is_completed = 1
		  AND ss.system_total_din > 0
		  AND ss.system_completed_din / ss.system_total_din >= ?`, threshold, threshold)
	return result.RowsAffected, result.Error
}
