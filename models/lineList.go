package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/tkmfield/precom_backend/utils"
	"gorm.io/gorm"
)

// LineList is one pipeline from the engineering line list. NDEGrade is the
// free-text examination requirement; parsing lives in the workflow package.
type LineList struct {
	ID            int       `gorm:"primaryKey;autoIncrement" json:"id"`
	LineID        string    `gorm:"size:100;uniqueIndex;not null" json:"line_id"`
	NDEGrade      string    `gorm:"column:nde_grade;size:200" json:"nde_grade"`
	Service       string    `gorm:"size:200" json:"service"`
	Material      string    `gorm:"size:100" json:"material"`
	DesignTemp    string    `gorm:"size:50" json:"design_temp"`
	DesignPress   string    `gorm:"size:50" json:"design_press"`
	InsulationTyp string    `gorm:"size:50" json:"insulation_typ"`
	IsDeleted     bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LineList) TableName() string { return "line_lists" }

func GetLineByLineID(ctx context.Context, db *gorm.DB, lineID string) (*LineList, error) {
	var line LineList
	err := db.WithContext(ctx).
		Where("line_id = ? AND is_deleted = FALSE", lineID).
		Take(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &line, nil
}
