package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/tkmfield/precom_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TestPackagePreparationAlert flags a pipeline whose welding is individually
// complete inside a system that has crossed the completed-DIN share
// threshold: time to start preparing its test package paperwork.
//
// NOTE: derived data; the refresh truncates and reinserts, so ack state
// (Status) does not survive a refresh. Acks are advisory only.
type TestPackagePreparationAlert struct {
	AlertID        int             `gorm:"column:alert_id;primaryKey;autoIncrement" json:"alert_id"`
	SystemCode     string          `gorm:"size:50;index:idx_alert_system;not null" json:"system_code"`
	PipelineNumber string          `gorm:"size:100;not null" json:"pipeline_number"`
	TotalDIN       decimal.Decimal `gorm:"column:total_din;type:decimal(18,4);default:0" json:"total_din"`
	CompletedDIN   decimal.Decimal `gorm:"column:completed_din;type:decimal(18,4);default:0" json:"completed_din"`
	CompletionRate decimal.Decimal `gorm:"type:decimal(5,4);default:0" json:"completion_rate"`
	SystemDINShare decimal.Decimal `gorm:"column:system_din_share;type:decimal(5,4);default:0" json:"system_din_share"`
	ThresholdMet   bool            `gorm:"default:false" json:"threshold_met"`
	Status         AlertStatus     `gorm:"size:20;index:idx_alert_status;default:'PENDING'" json:"status"`
	Remarks        string          `gorm:"size:255" json:"remarks"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TestPackagePreparationAlert) TableName() string { return "test_package_preparation_alerts" }

func ListPreparationAlerts(ctx context.Context, db *gorm.DB, systemCode string, status AlertStatus) ([]TestPackagePreparationAlert, error) {
	q := db.WithContext(ctx).Model(&TestPackagePreparationAlert{})
	if systemCode != "" {
		q = q.Where("system_code = ?", systemCode)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var alerts []TestPackagePreparationAlert
	if err := q.Order("system_code, pipeline_number").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func UpdatePreparationAlertStatus(ctx context.Context, db *gorm.DB, alertID int, status AlertStatus, remarks string) (*TestPackagePreparationAlert, error) {
	if !status.IsValid() {
		return nil, errors.New("invalid alert status")
	}
	updates := map[string]interface{}{"status": status}
	if remarks != "" {
		updates["remarks"] = remarks
	}
	res := db.WithContext(ctx).
		Model(&TestPackagePreparationAlert{}).
		Where("alert_id = ?", alertID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	var alert TestPackagePreparationAlert
	if err := db.WithContext(ctx).Where("alert_id = ?", alertID).Take(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}
