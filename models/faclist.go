package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Faclist is the facility block register. Block is stored in canonical
// A-B-C form and is the equality-join key into the Block summaries.
type Faclist struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Block          string    `gorm:"size:100;index:idx_fac_block" json:"block"`
	MainBlock      string    `gorm:"size:100;index:idx_fac_mainblock" json:"main_block"`
	SimpleBLK      string    `gorm:"column:simple_blk;size:100" json:"simple_blk"`
	SubProjectCode string    `gorm:"size:50" json:"sub_project_code"`
	Train          string    `gorm:"size:50" json:"train"`
	Unit           string    `gorm:"size:50" json:"unit"`
	BCCQuarter     string    `gorm:"column:bcc_quarter;size:50" json:"bcc_quarter"`
	DrawingNumber  string    `gorm:"size:200" json:"drawing_number"`
	Descriptions   string    `gorm:"size:500" json:"descriptions"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Faclist) TableName() string { return "faclists" }

// FaclistFilter narrows block selection on the dashboard.
type FaclistFilter struct {
	SubProjectCode string `form:"subproject_code"`
	Train          string `form:"train"`
	Unit           string `form:"unit"`
	SimpleBLK      string `form:"simpleblk"`
	MainBlock      string `form:"mainblock"`
	Block          string `form:"block"`
	BCCQuarter     string `form:"bccquarter"`
}

func (f FaclistFilter) IsZero() bool {
	return f == FaclistFilter{}
}

// MatchedBlocks returns the distinct canonical blocks selected by the filter.
// An empty result means the filter matched nothing; callers must treat that
// as "no data", not "no filter".
func MatchedBlocks(ctx context.Context, db *gorm.DB, f FaclistFilter) ([]string, error) {
	q := db.WithContext(ctx).Model(&Faclist{}).
		Where("block IS NOT NULL AND block <> ''")
	if f.SubProjectCode != "" {
		q = q.Where("sub_project_code = ?", f.SubProjectCode)
	}
	if f.Train != "" {
		q = q.Where("train = ?", f.Train)
	}
	if f.Unit != "" {
		q = q.Where("unit = ?", f.Unit)
	}
	if f.SimpleBLK != "" {
		q = q.Where("simple_blk = ?", f.SimpleBLK)
	}
	if f.MainBlock != "" {
		q = q.Where("main_block = ?", f.MainBlock)
	}
	if f.Block != "" {
		q = q.Where("block = ?", f.Block)
	}
	if f.BCCQuarter != "" {
		q = q.Where("bcc_quarter = ?", f.BCCQuarter)
	}
	var blocks []string
	if err := q.Distinct("block").Order("block").Pluck("block", &blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

// FaclistFilterOptions lists the distinct values for each dashboard facet,
// narrowed by whatever is already selected.
type FaclistFilterOptions struct {
	SubProjectCodes []string `json:"subproject_codes"`
	Trains          []string `json:"trains"`
	Units           []string `json:"units"`
	SimpleBLKs      []string `json:"simpleblks"`
	MainBlocks      []string `json:"mainblocks"`
	Blocks          []string `json:"blocks"`
	BCCQuarters     []string `json:"bccquarters"`
}

func GetFaclistFilterOptions(ctx context.Context, db *gorm.DB, f FaclistFilter) (*FaclistFilterOptions, error) {
	type row struct {
		SubProjectCode string
		Train          string
		Unit           string
		SimpleBLK      string `gorm:"column:simple_blk"`
		MainBlock      string
		Block          string
		BCCQuarter     string `gorm:"column:bcc_quarter"`
	}

	q := db.WithContext(ctx).Model(&Faclist{})
	if f.SubProjectCode != "" {
		q = q.Where("sub_project_code = ?", f.SubProjectCode)
	}
	if f.Train != "" {
		q = q.Where("train = ?", f.Train)
	}
	if f.Unit != "" {
		q = q.Where("unit = ?", f.Unit)
	}
	if f.SimpleBLK != "" {
		q = q.Where("simple_blk = ?", f.SimpleBLK)
	}
	if f.MainBlock != "" {
		q = q.Where("main_block = ?", f.MainBlock)
	}
	if f.Block != "" {
		q = q.Where("block = ?", f.Block)
	}
	if f.BCCQuarter != "" {
		q = q.Where("bcc_quarter = ?", f.BCCQuarter)
	}

	var rows []row
	if err := q.Distinct("sub_project_code", "train", "unit", "simple_blk", "main_block", "block", "bcc_quarter").
		Order("sub_project_code, train, unit, simple_blk, main_block, block, bcc_quarter").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	opts := &FaclistFilterOptions{}
	appendDistinct := func(dst *[]string, v string) {
		if v == "" {
			return
		}
		for _, existing := range *dst {
			if existing == v {
				return
			}
		}
		*dst = append(*dst, v)
	}
	for _, r := range rows {
		appendDistinct(&opts.SubProjectCodes, r.SubProjectCode)
		appendDistinct(&opts.Trains, r.Train)
		appendDistinct(&opts.Units, r.Unit)
		appendDistinct(&opts.SimpleBLKs, r.SimpleBLK)
		appendDistinct(&opts.MainBlocks, r.MainBlock)
		appendDistinct(&opts.Blocks, r.Block)
		appendDistinct(&opts.BCCQuarters, r.BCCQuarter)
	}
	return opts, nil
}
