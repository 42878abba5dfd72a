package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WeldingRecord is one weld joint from the imported welding list.
//
// A weld counts as complete when WeldDate is set OR Status says so; both
// conventions occur in the source spreadsheets. The per-test result columns
// hold free-text report references; non-empty means the test was performed.
type WeldingRecord struct {
	ID             int        `gorm:"primaryKey;autoIncrement" json:"id"`
	WeldID         string     `gorm:"size:100;uniqueIndex:idx_wr_weld,priority:2;not null" json:"weld_id"`
	TestPackageID  string     `gorm:"size:100;index:idx_wr_package;uniqueIndex:idx_wr_weld,priority:1" json:"test_package_id"`
	SystemCode     string     `gorm:"size:50;index:idx_wr_system" json:"system_code"`
	SubSystemCode  string     `gorm:"size:50;index:idx_wr_subsystem" json:"sub_system_code"`
	PipelineNumber string     `gorm:"size:100;index:idx_wr_pipeline" json:"pipeline_number"`
	DrawingNumber  string     `gorm:"size:200;index:idx_wr_drawing" json:"drawing_number"`
	RevNo          string     `gorm:"size:20" json:"rev_no"`
	// Block is derived from DrawingNumber in canonical A-B-C form.
	Block    string          `gorm:"size:100;index:idx_wr_block" json:"block"`
	Size     decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"size"`
	WeldDate *time.Time      `json:"weld_date"`
	Status   string          `gorm:"size:50" json:"status"`

	VTResult   string `gorm:"size:100" json:"vt_result"`
	RTResult   string `gorm:"size:100" json:"rt_result"`
	PTResult   string `gorm:"size:100" json:"pt_result"`
	UTResult   string `gorm:"size:100" json:"ut_result"`
	MTResult   string `gorm:"size:100" json:"mt_result"`
	PMIResult  string `gorm:"size:100" json:"pmi_result"`
	FTResult   string `gorm:"size:100" json:"ft_result"`
	HTResult   string `gorm:"size:100" json:"ht_result"`
	PWHTResult string `gorm:"size:100" json:"pwht_result"`

	WelderRoot string `gorm:"size:100;index:idx_wr_welder" json:"welder_root"`
	WelderFill string `gorm:"size:100" json:"welder_fill"`

	IsDeleted bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WeldingRecord) TableName() string { return "welding_records" }

// CompletedWeldCond is the completion marker reused by all aggregation SQL.
// Keep it identical everywhere so summaries agree with each other.
const CompletedWeldCond = "(weld_date IS NOT NULL OR status = 'Completed')"

// CompletedWeldCondFor qualifies the completion marker with a table alias
// for queries that join welding_records against other tables.
func CompletedWeldCondFor(alias string) string {
	return "(" + alias + ".weld_date IS NOT NULL OR " + alias + ".status = 'Completed')"
}

func (w *WeldingRecord) IsCompleted() bool {
	return w.WeldDate != nil || w.Status == WeldStatusCompleted
}

func ListWeldingRecordsByPackage(ctx context.Context, db *gorm.DB, testPackageID string) ([]WeldingRecord, error) {
	var records []WeldingRecord
	if err := db.WithContext(ctx).
		Where("test_package_id = ? AND is_deleted = FALSE", testPackageID).
		Order("weld_id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountWeldingRecords returns (total, completed) for a package.
func CountWeldingRecords(ctx context.Context, db *gorm.DB, testPackageID string) (int64, int64, error) {
	type row struct {
		Total     int64
		Completed int64
	}
	var r row
	if err := db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN `+CompletedWeldCond+` THEN 1 ELSE 0 END), 0) AS completed
		FROM welding_records
		WHERE test_package_id = ? AND is_deleted = FALSE
	`, testPackageID).Scan(&r).Error; err != nil {
		return 0, 0, err
	}
	return r.Total, r.Completed, nil
}
