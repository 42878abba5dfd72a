package workflow

import (
	"context"

	"gorm.io/gorm"

	"bitbucket.org/tkmfield/precom_backend/models"
)

// RefreshJointSummary recomputes the joint counts and DIN totals of a single
// test package from its welding records and upserts the summary row.
func RefreshJointSummary(ctx context.Context, db *gorm.DB, testPackageID string) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO joint_summaries (
			test_package_id, total_joints, completed_joints, remaining_joints,
			total_din, completed_din, remaining_din, created_at, updated_at
		)
		SELECT
			?,
			COUNT(*),
			SUM(CASE WHEN `+models.CompletedWeldCond+` THEN 1 ELSE 0 END),
			COUNT(*) - SUM(CASE WHEN `+models.CompletedWeldCond+` THEN 1 ELSE 0 END),
			COALESCE(SUM(size), 0),
			COALESCE(SUM(CASE WHEN `+models.CompletedWeldCond+` THEN size ELSE 0 END), 0),
			COALESCE(SUM(size), 0) - COALESCE(SUM(CASE WHEN `+models.CompletedWeldCond+` THEN size ELSE 0 END), 0),
			NOW(), NOW()
		FROM welding_records
		WHERE test_package_id = ? AND is_deleted = FALSE
		ON DUPLICATE KEY UPDATE
			total_joints = VALUES(total_joints),
			completed_joints = VALUES(completed_joints),
			remaining_joints = VALUES(remaining_joints),
			total_din = VALUES(total_din),
			completed_din = VALUES(completed_din),
			remaining_din = VALUES(remaining_din),
			updated_at = NOW()`,
		testPackageID, testPackageID).Error
}

// RefreshJointSummaryBulk rebuilds the whole joint summary table in one
// truncate and reinsert. Runs inside the caller's transaction.
func RefreshJointSummaryBulk(ctx context.Context, tx *gorm.DB) (int64, error) {
	if err := tx.WithContext(ctx).Exec(`DELETE FROM joint_summaries`).Error; err != nil {
		return 0, err
	}
	result := tx.WithContext(ctx).Exec(`
		INSERT INTO joint_summaries (
			test_package_id, total_joints, completed_joints, remaining_joints,
			total_din, completed_din, remaining_din, created_at, updated_at
		)
		SELECT
			test_package_id,
			COUNT(*),
			SUM(CASE WHEN ` + models.CompletedWeldCond + ` THEN 1 ELSE 0 END),
			COUNT(*) - SUM(CASE WHEN ` + models.CompletedWeldCond + ` THEN 1 ELSE 0 END),
			COALESCE(SUM(size), 0),
			COALESCE(SUM(CASE WHEN ` + models.CompletedWeldCond + ` THEN size ELSE 0 END), 0),
			COALESCE(SUM(size), 0) - COALESCE(SUM(CASE WHEN ` + models.CompletedWeldCond + ` THEN size ELSE 0 END), 0),
			NOW(), NOW()
		FROM welding_records
		WHERE test_package_id IS NOT NULL AND test_package_id <> ''
		  AND is_deleted = FALSE
		GROUP BY test_package_id`)
	return result.RowsAffected, result.Error
}

// RefreshISODrawingList re-extracts the distinct ISO drawing numbers of a
// test package from its welding records.
func RefreshISODrawingList(ctx context.Context, db *gorm.DB, testPackageID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`DELETE FROM iso_drawing_lists WHERE test_package_id = ?`, testPackageID).Error
		if err != nil {
			return err
		}
		return tx.Exec(`
			INSERT INTO iso_drawing_lists (test_package_id, iso_drawing_no, rev_no, created_at, updated_at)
			SELECT DISTINCT test_package_id, drawing_number, rev_no, NOW(), NOW()
			FROM welding_records
			WHERE test_package_id = ? AND is_deleted = FALSE
			  AND drawing_number IS NOT NULL AND drawing_number <> ''
			  AND UPPER(drawing_number) LIKE '%ISO%'`, testPackageID).Error
	})
}

func RefreshISODrawingListBulk(ctx context.Context, tx *gorm.DB) (int64, error) {
	if err := tx.WithContext(ctx).Exec(`DELETE FROM iso_drawing_lists`).Error; err != nil {
		return 0, err
	}
	result := tx.WithContext(ctx).Exec(`
		INSERT INTO iso_drawing_lists (test_package_id, iso_drawing_no, rev_no, created_at, updated_at)
		SELECT DISTINCT test_package_id, drawing_number, rev_no, NOW(), NOW()
		FROM welding_records
		WHERE test_package_id IS NOT NULL AND test_package_id <> ''
		  AND is_deleted = FALSE
		  AND drawing_number IS NOT NULL AND drawing_number <> ''
		  AND UPPER(drawing_number) LIKE '%ISO%'`)
	return result.RowsAffected, result.Error
}

// RefreshSystemAndSubsystemSummaries rebuilds the system and subsystem DIN
// progress tables. The select is driven from the system lists so systems
// without a single weld still get a zero row.
func RefreshSystemAndSubsystemSummaries(ctx context.Context, tx *gorm.DB) (int64, int64, error) {
	if err := tx.WithContext(ctx).Exec(`DELETE FROM system_welding_summaries`).Error; err != nil {
		return 0, 0, err
	}
	sysResult := tx.WithContext(ctx).Exec(`
		INSERT INTO system_welding_summaries (
			system_code, total_din, completed_din, total_packages, tested_packages, created_at, updated_at
		)
		SELECT
			s.system_code,
			COALESCE(w.total_din, 0),
			COALESCE(w.completed_din, 0),
			COALESCE(p.total_packages, 0),
			COALESCE(p.tested_packages, 0),
			NOW(), NOW()
		FROM system_lists s
		LEFT JOIN (
			SELECT
				system_code,
				COALESCE(SUM(size), 0) AS total_din,
				COALESCE(SUM(CASE WHEN weld_date IS NOT NULL THEN size ELSE 0 END), 0) AS completed_din
			FROM welding_records
			WHERE system_code IS NOT NULL AND TRIM(system_code) <> ''
			  AND is_deleted = FALSE
			GROUP BY system_code
		) w ON w.system_code = s.system_code
		LEFT JOIN (
			SELECT
				system_code,
				COUNT(DISTINCT test_package_id) AS total_packages,
				COUNT(DISTINCT CASE WHEN actual_date IS NOT NULL THEN test_package_id END) AS tested_packages
			FROM test_packages
			WHERE system_code IS NOT NULL AND TRIM(system_code) <> ''
			GROUP BY system_code
		) p ON p.system_code = s.system_code`)
	if sysResult.Error != nil {
		return 0, 0, sysResult.Error
	}

	if err := tx.WithContext(ctx).Exec(`DELETE FROM subsystem_welding_summaries`).Error; err != nil {
		return sysResult.RowsAffected, 0, err
	}
	subResult := tx.WithContext(ctx).Exec(`
		INSERT INTO subsystem_welding_summaries (
			system_code, sub_system_code, total_din, completed_din, total_packages, tested_packages, created_at, updated_at
		)
		SELECT
			sub.system_code,
			sub.sub_system_code,
			COALESCE(w.total_din, 0),
			COALESCE(w.completed_din, 0),
			COALESCE(p.total_packages, 0),
			COALESCE(p.tested_packages, 0),
			NOW(), NOW()
		FROM subsystem_lists sub
		LEFT JOIN (
			SELECT
				sub_system_code,
				COALESCE(SUM(size), 0) AS total_din,
				COALESCE(SUM(CASE WHEN weld_date IS NOT NULL THEN size ELSE 0 END), 0) AS completed_din
			FROM welding_records
			WHERE sub_system_code IS NOT NULL AND TRIM(sub_system_code) <> ''
			  AND is_deleted = FALSE
			GROUP BY sub_system_code
		) w ON w.sub_system_code = sub.sub_system_code
		LEFT JOIN (
			SELECT
				sub_system_code,
				COUNT(DISTINCT test_package_id) AS total_packages,
				COUNT(DISTINCT CASE WHEN actual_date IS NOT NULL THEN test_package_id END) AS tested_packages
			FROM test_packages
			WHERE sub_system_code IS NOT NULL AND TRIM(sub_system_code) <> ''
			GROUP BY sub_system_code
		) p ON p.sub_system_code = sub.sub_system_code`)
	return sysResult.RowsAffected, subResult.RowsAffected, subResult.Error
}

// blockNormaliseExpr rewrites legacy B-C-A block labels into the canonical
// A-B-C order at aggregation time, so both spellings land on one summary row.
const blockNormaliseExpr = `
	CASE
		WHEN (LENGTH(wr.block) - LENGTH(REPLACE(wr.block, '-', ''))) = 2 THEN
			CONCAT(
				SUBSTRING_INDEX(wr.block, '-', -1),
				'-',
				SUBSTRING_INDEX(wr.block, '-', 1),
				'-',
				SUBSTRING_INDEX(SUBSTRING_INDEX(wr.block, '-', 2), '-', -1)
			)
		ELSE wr.block
	END`

// RefreshBlockSummaries rebuilds the per block system and subsystem rollups
// used by the facility list filters.
func RefreshBlockSummaries(ctx context.Context, tx *gorm.DB) (int64, int64, error) {
	if err := tx.WithContext(ctx).Exec(`DELETE FROM block_system_summaries`).Error; err != nil {
		return 0, 0, err
	}
	sysResult := tx.WithContext(ctx).Exec(`
		INSERT INTO block_system_summaries (
			block, system_code, total_din, completed_din, total_packages, tested_packages, created_at, updated_at
		)
		SELECT
			` + blockNormaliseExpr + ` AS block,
			wr.system_code,
			COALESCE(SUM(wr.size), 0),
			COALESCE(SUM(CASE WHEN wr.weld_date IS NOT NULL THEN wr.size ELSE 0 END), 0),
			COUNT(DISTINCT wr.test_package_id),
			COUNT(DISTINCT CASE WHEN tp.actual_date IS NOT NULL THEN wr.test_package_id END),
			NOW(), NOW()
		FROM welding_records wr
		LEFT JOIN test_packages tp ON wr.test_package_id = tp.test_package_id
		WHERE wr.is_deleted = FALSE
		  AND wr.block IS NOT NULL AND TRIM(wr.block) <> ''
		  AND wr.system_code IS NOT NULL AND TRIM(wr.system_code) <> ''
		GROUP BY block, wr.system_code`)
	if sysResult.Error != nil {
		return 0, 0, sysResult.Error
	}

	if err := tx.WithContext(ctx).Exec(`DELETE FROM block_subsystem_summaries`).Error; err != nil {
		return sysResult.RowsAffected, 0, err
	}
	subResult := tx.WithContext(ctx).Exec(`
		INSERT INTO block_subsystem_summaries (
			block, system_code, sub_system_code, total_din, completed_din, total_packages, tested_packages, created_at, updated_at
		)
		SELECT
			` + blockNormaliseExpr + ` AS block,
			wr.system_code,
			wr.sub_system_code,
			COALESCE(SUM(wr.size), 0),
			COALESCE(SUM(CASE WHEN wr.weld_date IS NOT NULL THEN wr.size ELSE 0 END), 0),
			COUNT(DISTINCT wr.test_package_id),
			COUNT(DISTINCT CASE WHEN tp.actual_date IS NOT NULL THEN wr.test_package_id END),
			NOW(), NOW()
		FROM welding_records wr
		LEFT JOIN test_packages tp ON wr.test_package_id = tp.test_package_id
		WHERE wr.is_deleted = FALSE
		  AND wr.block IS NOT NULL AND TRIM(wr.block) <> ''
		  AND wr.sub_system_code IS NOT NULL AND TRIM(wr.sub_system_code) <> ''
		GROUP BY block, wr.system_code, wr.sub_system_code`)
	return sysResult.RowsAffected, subResult.RowsAffected, subResult.Error
}
