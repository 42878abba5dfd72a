package models

import (
	"time"
)

// SyncLog records one welding sync run: how many placeholder parents were
// created and how many existing ones were refreshed.
type SyncLog struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"id"`
	Source             string     `gorm:"size:30" json:"source"`
	PackagesCreated    int        `gorm:"default:0" json:"packages_created"`
	PackagesUpdated    int        `gorm:"default:0" json:"packages_updated"`
	SystemsCreated     int        `gorm:"default:0" json:"systems_created"`
	SubsystemsCreated  int        `gorm:"default:0" json:"subsystems_created"`
	ParentsSoftDeleted int        `gorm:"default:0" json:"parents_soft_deleted"`
	Status             SyncStatus `gorm:"size:20" json:"status"`
	ErrorDetail        string     `gorm:"size:1000" json:"error_detail"`
	StartedAt          time.Time  `json:"started_at"`
	FinishedAt         *time.Time `json:"finished_at"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (SyncLog) TableName() string { return "sync_logs" }
