package models

import (
	"context"

	"gorm.io/gorm"
)

// CleanupCounts reports rows removed per table.
type CleanupCounts struct {
	WeldingRecords int64 `json:"welding_records"`
	TestPackages   int64 `json:"test_packages"`
	LineLists      int64 `json:"line_lists"`
	SyncLogs       int64 `json:"sync_logs"`
}

// CleanupTestData hard-deletes rows whose identifiers carry the given prefix.
// Meant for wiping generated fixtures from shared environments; aggregates
// must be refreshed afterwards.
func CleanupTestData(ctx context.Context, db *gorm.DB, prefix string) (*CleanupCounts, error) {
	if prefix == "" {
		return nil, gorm.ErrInvalidValue
	}
	counts := &CleanupCounts{}
	like := prefix + "%"

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`DELETE FROM welding_records WHERE weld_id LIKE ? OR test_package_id LIKE ?`, like, like)
		if res.Error != nil {
			return res.Error
		}
		counts.WeldingRecords = res.RowsAffected

		res = tx.Exec(`DELETE FROM test_packages WHERE test_package_id LIKE ?`, like)
		if res.Error != nil {
			return res.Error
		}
		counts.TestPackages = res.RowsAffected

		res = tx.Exec(`DELETE FROM line_lists WHERE line_id LIKE ?`, like)
		if res.Error != nil {
			return res.Error
		}
		counts.LineLists = res.RowsAffected

		res = tx.Exec(`DELETE FROM sync_logs WHERE source LIKE ?`, like)
		if res.Error != nil {
			return res.Error
		}
		counts.SyncLogs = res.RowsAffected

		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
