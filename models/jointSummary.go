package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/tkmfield/precom_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JointSummary is a per-package weld progress rollup used by dashboards.
//
// Grain: test_package_id.
// NOTE: This table is derived data and can be rebuilt from welding_records.
type JointSummary struct {
	ID              int             `gorm:"primaryKey;autoIncrement" json:"id"`
	TestPackageID   string          `gorm:"size:100;uniqueIndex;not null" json:"test_package_id"`
	TotalJoints     int             `gorm:"default:0" json:"total_joints"`
	CompletedJoints int             `gorm:"default:0" json:"completed_joints"`
	RemainingJoints int             `gorm:"default:0" json:"remaining_joints"`
	TotalDIN        decimal.Decimal `gorm:"column:total_din;type:decimal(18,4);default:0" json:"total_din"`
	CompletedDIN    decimal.Decimal `gorm:"column:completed_din;type:decimal(18,4);default:0" json:"completed_din"`
	RemainingDIN    decimal.Decimal `gorm:"column:remaining_din;type:decimal(18,4);default:0" json:"remaining_din"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (JointSummary) TableName() string { return "joint_summaries" }

func GetJointSummary(ctx context.Context, db *gorm.DB, testPackageID string) (*JointSummary, error) {
	var summary JointSummary
	err := db.WithContext(ctx).
		Where("test_package_id = ?", testPackageID).
		Take(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &summary, nil
}
