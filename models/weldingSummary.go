package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SystemWeldingSummary rolls welding DIN and package test progress up to a
// system. One row per system in system_lists, even when no welds exist yet.
//
// NOTE: derived data; rebuilt from welding_records + test_packages.
type SystemWeldingSummary struct {
	ID             int             `gorm:"primaryKey;autoIncrement" json:"id"`
	SystemCode     string          `gorm:"size:50;uniqueIndex;not null" json:"system_code"`
	TotalDIN       decimal.Decimal `gorm:"column:total_din;type:decimal(18,4);default:0" json:"total_din"`
	CompletedDIN   decimal.Decimal `gorm:"column:completed_din;type:decimal(18,4);default:0" json:"completed_din"`
	TotalPackages  int             `gorm:"default:0" json:"total_packages"`
	TestedPackages int             `gorm:"default:0" json:"tested_packages"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SystemWeldingSummary) TableName() string { return "system_welding_summaries" }

type SubsystemWeldingSummary struct {
	ID             int             `gorm:"primaryKey;autoIncrement" json:"id"`
	SystemCode     string          `gorm:"size:50;index:idx_sws_system" json:"system_code"`
	SubSystemCode  string          `gorm:"size:50;uniqueIndex;not null" json:"sub_system_code"`
	TotalDIN       decimal.Decimal `gorm:"column:total_din;type:decimal(18,4);default:0" json:"total_din"`
	CompletedDIN   decimal.Decimal `gorm:"column:completed_din;type:decimal(18,4);default:0" json:"completed_din"`
	TotalPackages  int             `gorm:"default:0" json:"total_packages"`
	TestedPackages int             `gorm:"default:0" json:"tested_packages"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SubsystemWeldingSummary) TableName() string { return "subsystem_welding_summaries" }

// SystemProgressRow is the dashboard read shape for system-level progress.
type SystemProgressRow struct {
	SystemCode          string          `json:"system_code"`
	SystemDescription   string          `json:"system_description"`
	ProcessOrNonProcess string          `json:"process_or_non_process"`
	TotalDIN            decimal.Decimal `gorm:"column:total_din" json:"total_din"`
	CompletedDIN        decimal.Decimal `gorm:"column:completed_din" json:"completed_din"`
	TotalPackages       int             `json:"total_packages"`
	TestedPackages      int             `json:"tested_packages"`
	Progress            float64         `json:"progress"`
}

// ListSystemProgress reads system progress from the pre-aggregated summary.
// When blocks is non-nil the Block summaries are used instead so progress
// reflects only the selected facility blocks.
func ListSystemProgress(ctx context.Context, db *gorm.DB, blocks []string, allowedSystemCodes []string) ([]SystemProgressRow, error) {
	var rows []SystemProgressRow

	if blocks != nil {
		if len(blocks) == 0 {
			return []SystemProgressRow{}, nil
		}
		q := db.WithContext(ctx).Raw(`
			SELECT
				s.system_code,
				s.system_description,
				s.process_or_non_process,
				COALESCE(SUM(bss.total_din), 0) AS total_din,
				COALESCE(SUM(bss.completed_din), 0) AS completed_din,
				COALESCE(SUM(bss.total_packages), 0) AS total_packages,
				COALESCE(SUM(bss.tested_packages), 0) AS tested_packages,
				CASE
					WHEN SUM(bss.total_packages) > 0 THEN (SUM(bss.tested_packages) / SUM(bss.total_packages)) * 100
					ELSE 0
				END AS progress
			FROM system_lists s
			LEFT JOIN block_system_summaries bss
				ON bss.system_code = s.system_code AND bss.block IN ?
			WHERE s.is_deleted = FALSE
			GROUP BY s.system_code, s.system_description, s.process_or_non_process
			ORDER BY s.system_code
		`, blocks)
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
	} else {
		q := db.WithContext(ctx).Raw(`
			SELECT
				s.system_code,
				s.system_description,
				s.process_or_non_process,
				COALESCE(sws.total_din, 0) AS total_din,
				COALESCE(sws.completed_din, 0) AS completed_din,
				COALESCE(sws.total_packages, 0) AS total_packages,
				COALESCE(sws.tested_packages, 0) AS tested_packages,
				CASE
					WHEN sws.total_packages > 0 THEN (sws.tested_packages / sws.total_packages) * 100
					ELSE 0
				END AS progress
			FROM system_lists s
			LEFT JOIN system_welding_summaries sws ON sws.system_code = s.system_code
			WHERE s.is_deleted = FALSE
			ORDER BY s.system_code
		`)
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
	}

	if allowedSystemCodes == nil {
		return rows, nil
	}
	allowed := make(map[string]struct{}, len(allowedSystemCodes))
	for _, c := range allowedSystemCodes {
		allowed[c] = struct{}{}
	}
	filtered := make([]SystemProgressRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := allowed[r.SystemCode]; ok {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// SubsystemProgressRow is the dashboard read shape for subsystem progress.
type SubsystemProgressRow struct {
	SubSystemCode        string          `json:"sub_system_code"`
	SystemCode           string          `json:"system_code"`
	SubSystemDescription string          `json:"sub_system_description"`
	ProcessOrNonProcess  string          `json:"process_or_non_process"`
	TotalDIN             decimal.Decimal `gorm:"column:total_din" json:"total_din"`
	CompletedDIN         decimal.Decimal `gorm:"column:completed_din" json:"completed_din"`
	TotalPackages        int             `json:"total_packages"`
	TestedPackages       int             `json:"tested_packages"`
	Progress             float64         `json:"progress"`
}

func ListSubsystemProgress(ctx context.Context, db *gorm.DB, systemCode string, blocks, allowedSubsystemCodes []string) ([]SubsystemProgressRow, error) {
	var rows []SubsystemProgressRow

	if blocks != nil {
		if len(blocks) == 0 {
			return []SubsystemProgressRow{}, nil
		}
		sql := `
			SELECT
				sub.sub_system_code,
				sub.system_code,
				sub.sub_system_description,
				sub.process_or_non_process,
				COALESCE(SUM(bss.total_din), 0) AS total_din,
				COALESCE(SUM(bss.completed_din), 0) AS completed_din,
				COALESCE(SUM(bss.total_packages), 0) AS total_packages,
				COALESCE(SUM(bss.tested_packages), 0) AS tested_packages,
				CASE
					WHEN SUM(bss.total_packages) > 0 THEN (SUM(bss.tested_packages) / SUM(bss.total_packages)) * 100
					ELSE 0
				END AS progress
			FROM subsystem_lists sub
			LEFT JOIN block_subsystem_summaries bss
				ON bss.sub_system_code = sub.sub_system_code AND bss.block IN ?
			WHERE sub.is_deleted = FALSE`
		args := []interface{}{blocks}
		if systemCode != "" {
			sql += " AND sub.system_code = ?"
			args = append(args, systemCode)
		}
		sql += `
			GROUP BY sub.sub_system_code, sub.system_code, sub.sub_system_description, sub.process_or_non_process
			ORDER BY sub.system_code, sub.sub_system_code`
		if err := db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
			return nil, err
		}
		return filterSubsystemRows(rows, allowedSubsystemCodes), nil
	}

	sql := `
		SELECT
			sub.sub_system_code,
			sub.system_code,
			sub.sub_system_description,
			sub.process_or_non_process,
			COALESCE(sws.total_din, 0) AS total_din,
			COALESCE(sws.completed_din, 0) AS completed_din,
			COALESCE(sws.total_packages, 0) AS total_packages,
			COALESCE(sws.tested_packages, 0) AS tested_packages,
			CASE
				WHEN sws.total_packages > 0 THEN (sws.tested_packages / sws.total_packages) * 100
				ELSE 0
			END AS progress
		FROM subsystem_lists sub
		LEFT JOIN subsystem_welding_summaries sws ON sws.sub_system_code = sub.sub_system_code
		WHERE sub.is_deleted = FALSE`
	var args []interface{}
	if systemCode != "" {
		sql += " AND sub.system_code = ?"
		args = append(args, systemCode)
	}
	sql += " ORDER BY sub.system_code, sub.sub_system_code"
	if err := db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return filterSubsystemRows(rows, allowedSubsystemCodes), nil
}

func filterSubsystemRows(rows []SubsystemProgressRow, allowedSubsystemCodes []string) []SubsystemProgressRow {
	if allowedSubsystemCodes == nil {
		return rows
	}
	allowed := make(map[string]struct{}, len(allowedSubsystemCodes))
	for _, c := range allowedSubsystemCodes {
		allowed[c] = struct{}{}
	}
	filtered := make([]SubsystemProgressRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := allowed[r.SubSystemCode]; ok {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
