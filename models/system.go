package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type System struct {
	ID                  int       `gorm:"primaryKey;autoIncrement" json:"id"`
	SystemCode          string    `gorm:"size:50;uniqueIndex;not null" json:"system_code"`
	SystemDescription   string    `gorm:"size:500" json:"system_description"`
	ProcessOrNonProcess string    `gorm:"size:20" json:"process_or_non_process"`
	DataSource          string    `gorm:"size:30;default:'IMPORT'" json:"data_source"`
	IsDeleted           bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (System) TableName() string { return "system_lists" }

type Subsystem struct {
	ID                   int       `gorm:"primaryKey;autoIncrement" json:"id"`
	SubSystemCode        string    `gorm:"size:50;uniqueIndex;not null" json:"sub_system_code"`
	SystemCode           string    `gorm:"size:50;index:idx_sub_system" json:"system_code"`
	SubSystemDescription string    `gorm:"size:500" json:"sub_system_description"`
	ProcessOrNonProcess  string    `gorm:"size:20" json:"process_or_non_process"`
	DataSource           string    `gorm:"size:30;default:'IMPORT'" json:"data_source"`
	IsDeleted            bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Subsystem) TableName() string { return "subsystem_lists" }

func ListSystems(ctx context.Context, db *gorm.DB) ([]System, error) {
	var systems []System
	if err := db.WithContext(ctx).
		Where("is_deleted = FALSE").
		Order("system_code").
		Find(&systems).Error; err != nil {
		return nil, err
	}
	return systems, nil
}

func ListSubsystems(ctx context.Context, db *gorm.DB, systemCode string) ([]Subsystem, error) {
	q := db.WithContext(ctx).Where("is_deleted = FALSE")
	if systemCode != "" {
		q = q.Where("system_code = ?", systemCode)
	}
	var subsystems []Subsystem
	if err := q.Order("system_code, sub_system_code").Find(&subsystems).Error; err != nil {
		return nil, err
	}
	return subsystems, nil
}
