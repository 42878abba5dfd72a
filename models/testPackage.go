package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/tkmfield/precom_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TestPackage is a hydro test package: the unit of pre-commissioning
// acceptance. Placeholder rows (DataSource=WELDING_LIST) are auto-created by
// the welding sync for packages referenced only by weld rows.
type TestPackage struct {
	ID            int               `gorm:"primaryKey;autoIncrement" json:"id"`
	TestPackageID string            `gorm:"size:100;uniqueIndex;not null" json:"test_package_id"`
	SystemCode    string            `gorm:"size:50;index:idx_tp_system" json:"system_code"`
	SubSystemCode string            `gorm:"size:50;index:idx_tp_subsystem" json:"sub_system_code"`
	Description   string            `gorm:"size:500" json:"description"`
	PlannedDate   *time.Time        `json:"planned_date"`
	ActualDate    *time.Time        `json:"actual_date"`
	TestPressure  decimal.Decimal   `gorm:"type:decimal(10,2);default:0" json:"test_pressure"`
	TestMedium    string            `gorm:"size:50" json:"test_medium"`
	Material      string            `gorm:"size:100" json:"material"`
	Status        TestPackageStatus `gorm:"size:20;default:'Pending'" json:"status"`
	DataSource    string            `gorm:"size:30;default:'IMPORT'" json:"data_source"`
	LastSyncTime  *time.Time        `json:"last_sync_time"`
	IsDeleted     bool              `gorm:"default:false" json:"is_deleted"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TestPackage) TableName() string { return "test_packages" }

func GetTestPackage(ctx context.Context, db *gorm.DB, testPackageID string) (*TestPackage, error) {
	var pkg TestPackage
	err := db.WithContext(ctx).
		Where("test_package_id = ? AND is_deleted = FALSE", testPackageID).
		Take(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

func ListTestPackageIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	if err := db.WithContext(ctx).
		Model(&TestPackage{}).
		Where("is_deleted = FALSE").
		Order("test_package_id").
		Pluck("test_package_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
