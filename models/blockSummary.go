package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BlockSystemSummary pre-aggregates welding DIN and hydro test progress per
// (block, system) so Faclist-filtered dashboards can equality-join instead of
// pattern-scanning drawing numbers.
//
// Block is canonical A-B-C; legacy B-C-A strings in welding_records are
// normalized during the rebuild.
//
// NOTE: derived data; rebuilt from welding_records + test_packages.
type BlockSystemSummary struct {
	ID             int             `gorm:"primaryKey;autoIncrement" json:"id"`
	Block          string          `gorm:"size:100;uniqueIndex:idx_bss_block_system,priority:1;not null" json:"block"`
	SystemCode     string          `gorm:"size:50;uniqueIndex:idx_bss_block_system,priority:2;index:idx_bss_system;not null" json:"system_code"`
	TotalDIN       decimal.Decimal `gorm:"column:total_din;type:decimal(18,4);default:0" json:"total_din"`
	CompletedDIN   decimal.Decimal `gorm:"column:completed_din;type:decimal(18,4);default:0" json:"completed_din"`
	TotalPackages  int             `gorm:"default:0" json:"total_packages"`
	TestedPackages int             `gorm:"default:0" json:"tested_packages"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BlockSystemSummary) TableName() string { return "block_system_summaries" }

type BlockSubsystemSummary struct {
	ID             int             `gorm:"primaryKey;autoIncrement" json:"id"`
	Block          string          `gorm:"size:100;uniqueIndex:idx_bsub_block_sub,priority:1;not null" json:"block"`
	SystemCode     string          `gorm:"size:50;index:idx_bsub_system" json:"system_code"`
	SubSystemCode  string          `gorm:"size:50;uniqueIndex:idx_bsub_block_sub,priority:2;not null" json:"sub_system_code"`
	TotalDIN       decimal.Decimal `gorm:"column:total_din;type:decimal(18,4);default:0" json:"total_din"`
	CompletedDIN   decimal.Decimal `gorm:"column:completed_din;type:decimal(18,4);default:0" json:"completed_din"`
	TotalPackages  int             `gorm:"default:0" json:"total_packages"`
	TestedPackages int             `gorm:"default:0" json:"tested_packages"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BlockSubsystemSummary) TableName() string { return "block_subsystem_summaries" }
