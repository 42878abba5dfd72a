package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/tkmfield/precom_backend/config"
	"github.com/google/uuid"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// SyncResult summarizes one welding sync run.
type SyncResult struct {
	SyncID             string `json:"sync_id"`
	PackagesCreated    int    `json:"packages_created"`
	PackagesUpdated    int    `json:"packages_updated"`
	SystemsCreated     int    `json:"systems_created"`
	SubsystemsCreated  int    `json:"subsystems_created"`
	ParentsSoftDeleted int    `json:"parents_soft_deleted"`
}

// weldingParentSelect extracts the distinct package parents referenced by
// live weld rows. Shared by the insert and update legs below.
const weldingParentSelect = `
	SELECT
		TRIM(wl.test_package_id) AS test_package_id,
		MAX(TRIM(wl.system_code)) AS system_code,
		MAX(TRIM(wl.sub_system_code)) AS sub_system_code
	FROM welding_records wl
	WHERE wl.test_package_id IS NOT NULL
	  AND TRIM(wl.test_package_id) <> ''
	  AND wl.is_deleted = FALSE
	GROUP BY TRIM(wl.test_package_id)`

// SyncFromWelding heals referential gaps after a welding import: weld rows
// referencing a package, system, or subsystem that has no parent row get a
// placeholder parent (DataSource=WELDING_LIST); parents no longer referenced
// by any live weld are soft-deleted unless manually sourced. The run is
// recorded in sync_logs.
func SyncFromWelding(ctx context.Context, db *gorm.DB, source string) (*SyncResult, error) {
	result := &SyncResult{SyncID: uuid.NewString()}
	now := time.Now().UTC()

	logRow := SyncLog{
		ID:        result.SyncID,
		Source:    source,
		Status:    SyncStatusFailed,
		StartedAt: now,
	}

	syncTx := func(tx *gorm.DB) error {
		// 1. Missing test packages.
		res := tx.Exec(`
			INSERT INTO test_packages
				(test_package_id, system_code, sub_system_code, description, data_source, last_sync_time, is_deleted, created_at, updated_at)
			SELECT
				src.test_package_id,
				src.system_code,
				src.sub_system_code,
				src.test_package_id,
				'WELDING_LIST',
				?, FALSE, ?, ?
			FROM (`+weldingParentSelect+`) src
			WHERE NOT EXISTS (
				SELECT 1 FROM test_packages tp WHERE tp.test_package_id = src.test_package_id
			)`, now, now, now)
		if res.Error != nil {
			return res.Error
		}
		result.PackagesCreated = int(res.RowsAffected)

		// 2. Refresh codes on packages the sync owns. Manually created or
		// imported packages are left untouched.
		res = tx.Exec(`
			UPDATE test_packages tp
			JOIN (`+weldingParentSelect+`) src ON src.test_package_id = tp.test_package_id
			SET tp.system_code = src.system_code,
			    tp.sub_system_code = src.sub_system_code,
			    tp.last_sync_time = ?,
			    tp.is_deleted = FALSE
			WHERE tp.data_source = 'WELDING_LIST'`, now)
		if res.Error != nil {
			return res.Error
		}
		result.PackagesUpdated = int(res.RowsAffected)

		// 3. Soft-delete sync-owned packages no longer referenced by any live weld.
		res = tx.Exec(`
			UPDATE test_packages tp
			LEFT JOIN (
				SELECT DISTINCT test_package_id
				FROM welding_records
				WHERE test_package_id IS NOT NULL
				  AND test_package_id <> ''
				  AND is_deleted = FALSE
			) wl ON wl.test_package_id = tp.test_package_id
			SET tp.is_deleted = TRUE,
			    tp.last_sync_time = ?
			WHERE wl.test_package_id IS NULL
			  AND tp.is_deleted = FALSE
			  AND tp.data_source = 'WELDING_LIST'`, now)
		if res.Error != nil {
			return res.Error
		}
		result.ParentsSoftDeleted = int(res.RowsAffected)

		// 4. Missing systems.
		res = tx.Exec(`
			INSERT INTO system_lists
				(system_code, system_description, data_source, is_deleted, created_at, updated_at)
			SELECT DISTINCT
				TRIM(wl.system_code), TRIM(wl.system_code), 'WELDING_LIST', FALSE, ?, ?
			FROM welding_records wl
			WHERE wl.system_code IS NOT NULL
			  AND TRIM(wl.system_code) <> ''
			  AND wl.is_deleted = FALSE
			  AND NOT EXISTS (
				SELECT 1 FROM system_lists s WHERE s.system_code = TRIM(wl.system_code)
			  )`, now, now)
		if res.Error != nil {
			return res.Error
		}
		result.SystemsCreated = int(res.RowsAffected)

		// 5. Missing subsystems.
		res = tx.Exec(`
			INSERT INTO subsystem_lists
				(sub_system_code, system_code, sub_system_description, data_source, is_deleted, created_at, updated_at)
			SELECT
				TRIM(wl.sub_system_code),
				MAX(TRIM(wl.system_code)),
				TRIM(wl.sub_system_code),
				'WELDING_LIST', FALSE, ?, ?
			FROM welding_records wl
			WHERE wl.sub_system_code IS NOT NULL
			  AND TRIM(wl.sub_system_code) <> ''
			  AND wl.is_deleted = FALSE
			  AND NOT EXISTS (
				SELECT 1 FROM subsystem_lists s WHERE s.sub_system_code = TRIM(wl.sub_system_code)
			  )
			GROUP BY TRIM(wl.sub_system_code)`, now, now)
		if res.Error != nil {
			return res.Error
		}
		result.SubsystemsCreated = int(res.RowsAffected)

		return nil
	}

	err := db.WithContext(ctx).Transaction(syncTx)
	if isDuplicateKeyErr(err) {
		// A concurrent sync inserted the same parent between our existence
		// check and the insert. The rows exist now, so a rerun skips them.
		*result = SyncResult{SyncID: result.SyncID}
		err = db.WithContext(ctx).Transaction(syncTx)
	}

	finished := time.Now().UTC()
	logRow.FinishedAt = &finished
	logRow.PackagesCreated = result.PackagesCreated
	logRow.PackagesUpdated = result.PackagesUpdated
	logRow.SystemsCreated = result.SystemsCreated
	logRow.SubsystemsCreated = result.SubsystemsCreated
	logRow.ParentsSoftDeleted = result.ParentsSoftDeleted
	if err != nil {
		logRow.ErrorDetail = err.Error()
	} else {
		logRow.Status = SyncStatusSuccess
	}

	// Best-effort: a failed log write should not mask the sync outcome.
	if logErr := db.WithContext(ctx).Create(&logRow).Error; logErr != nil {
		config.LogError(config.GetLogger(), "weldingSync.go", "SyncFromWelding", "write sync log", logRow.ID, logErr)
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}
