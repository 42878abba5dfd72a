package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ISODrawingList caches the distinct ISO drawings referenced by each
// package's welds, for the package detail view.
//
// NOTE: derived data; rebuilt from welding_records.
type ISODrawingList struct {
	ID            int       `gorm:"primaryKey;autoIncrement" json:"id"`
	TestPackageID string    `gorm:"size:100;index:idx_iso_package;not null" json:"test_package_id"`
	ISODrawingNo  string    `gorm:"column:iso_drawing_no;size:200;not null" json:"iso_drawing_no"`
	RevNo         string    `gorm:"size:20" json:"rev_no"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ISODrawingList) TableName() string { return "iso_drawing_lists" }

func ListISODrawings(ctx context.Context, db *gorm.DB, testPackageID string) ([]ISODrawingList, error) {
	var drawings []ISODrawingList
	if err := db.WithContext(ctx).
		Where("test_package_id = ?", testPackageID).
		Order("iso_drawing_no").
		Find(&drawings).Error; err != nil {
		return nil, err
	}
	return drawings, nil
}
