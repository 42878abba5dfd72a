package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/tkmfield/precom_backend/utils"
	"gorm.io/gorm"
)

// NDEPWHTStatus is the per-package examination scoreboard.
//
// Total and Remaining are pointers on purpose: they are only computable once
// every weld in the package is complete (required counts depend on the final
// joint count per grade group). Until then they stay NULL, which readers must
// render as N/A, never as zero. Completed is always counted from completed
// welds regardless of gating.
//
// NOTE: derived data; rebuilt from welding_records + line_lists.
type NDEPWHTStatus struct {
	ID            int    `gorm:"primaryKey;autoIncrement" json:"id"`
	TestPackageID string `gorm:"size:100;uniqueIndex;not null" json:"test_package_id"`

	VTTotal       *int `gorm:"column:vt_total" json:"vt_total"`
	VTCompleted   int  `gorm:"column:vt_completed;default:0" json:"vt_completed"`
	VTRemaining   *int `gorm:"column:vt_remaining" json:"vt_remaining"`
	RTTotal       *int `gorm:"column:rt_total" json:"rt_total"`
	RTCompleted   int  `gorm:"column:rt_completed;default:0" json:"rt_completed"`
	RTRemaining   *int `gorm:"column:rt_remaining" json:"rt_remaining"`
	PTTotal       *int `gorm:"column:pt_total" json:"pt_total"`
	PTCompleted   int  `gorm:"column:pt_completed;default:0" json:"pt_completed"`
	PTRemaining   *int `gorm:"column:pt_remaining" json:"pt_remaining"`
	UTTotal       *int `gorm:"column:ut_total" json:"ut_total"`
	UTCompleted   int  `gorm:"column:ut_completed;default:0" json:"ut_completed"`
	UTRemaining   *int `gorm:"column:ut_remaining" json:"ut_remaining"`
	MTTotal       *int `gorm:"column:mt_total" json:"mt_total"`
	MTCompleted   int  `gorm:"column:mt_completed;default:0" json:"mt_completed"`
	MTRemaining   *int `gorm:"column:mt_remaining" json:"mt_remaining"`
	PMITotal      *int `gorm:"column:pmi_total" json:"pmi_total"`
	PMICompleted  int  `gorm:"column:pmi_completed;default:0" json:"pmi_completed"`
	PMIRemaining  *int `gorm:"column:pmi_remaining" json:"pmi_remaining"`
	FTTotal       *int `gorm:"column:ft_total" json:"ft_total"`
	FTCompleted   int  `gorm:"column:ft_completed;default:0" json:"ft_completed"`
	FTRemaining   *int `gorm:"column:ft_remaining" json:"ft_remaining"`
	HTTotal       *int `gorm:"column:ht_total" json:"ht_total"`
	HTCompleted   int  `gorm:"column:ht_completed;default:0" json:"ht_completed"`
	HTRemaining   *int `gorm:"column:ht_remaining" json:"ht_remaining"`
	PWHTTotal     *int `gorm:"column:pwht_total" json:"pwht_total"`
	PWHTCompleted int  `gorm:"column:pwht_completed;default:0" json:"pwht_completed"`
	PWHTRemaining *int `gorm:"column:pwht_remaining" json:"pwht_remaining"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (NDEPWHTStatus) TableName() string { return "nde_pwht_statuses" }

// TestStatus is the per-test-type view of a status row.
type TestStatus struct {
	Total     *int `json:"total"`
	Completed int  `json:"completed"`
	Remaining *int `json:"remaining"`
}

// ByTestType explodes the row into its per-test-type cells.
func (s *NDEPWHTStatus) ByTestType() map[TestType]TestStatus {
	return map[TestType]TestStatus{
		TestTypeVT:   {Total: s.VTTotal, Completed: s.VTCompleted, Remaining: s.VTRemaining},
		TestTypeRT:   {Total: s.RTTotal, Completed: s.RTCompleted, Remaining: s.RTRemaining},
		TestTypePT:   {Total: s.PTTotal, Completed: s.PTCompleted, Remaining: s.PTRemaining},
		TestTypeUT:   {Total: s.UTTotal, Completed: s.UTCompleted, Remaining: s.UTRemaining},
		TestTypeMT:   {Total: s.MTTotal, Completed: s.MTCompleted, Remaining: s.MTRemaining},
		TestTypePMI:  {Total: s.PMITotal, Completed: s.PMICompleted, Remaining: s.PMIRemaining},
		TestTypeFT:   {Total: s.FTTotal, Completed: s.FTCompleted, Remaining: s.FTRemaining},
		TestTypeHT:   {Total: s.HTTotal, Completed: s.HTCompleted, Remaining: s.HTRemaining},
		TestTypePWHT: {Total: s.PWHTTotal, Completed: s.PWHTCompleted, Remaining: s.PWHTRemaining},
	}
}

// SetTestStatus writes one per-test-type cell back into the row.
func (s *NDEPWHTStatus) SetTestStatus(t TestType, st TestStatus) {
	switch t {
	case TestTypeVT:
		s.VTTotal, s.VTCompleted, s.VTRemaining = st.Total, st.Completed, st.Remaining
	case TestTypeRT:
		s.RTTotal, s.RTCompleted, s.RTRemaining = st.Total, st.Completed, st.Remaining
	case TestTypePT:
		s.PTTotal, s.PTCompleted, s.PTRemaining = st.Total, st.Completed, st.Remaining
	case TestTypeUT:
		s.UTTotal, s.UTCompleted, s.UTRemaining = st.Total, st.Completed, st.Remaining
	case TestTypeMT:
		s.MTTotal, s.MTCompleted, s.MTRemaining = st.Total, st.Completed, st.Remaining
	case TestTypePMI:
		s.PMITotal, s.PMICompleted, s.PMIRemaining = st.Total, st.Completed, st.Remaining
	case TestTypeFT:
		s.FTTotal, s.FTCompleted, s.FTRemaining = st.Total, st.Completed, st.Remaining
	case TestTypeHT:
		s.HTTotal, s.HTCompleted, s.HTRemaining = st.Total, st.Completed, st.Remaining
	case TestTypePWHT:
		s.PWHTTotal, s.PWHTCompleted, s.PWHTRemaining = st.Total, st.Completed, st.Remaining
	}
}

func GetNDEPWHTStatus(ctx context.Context, db *gorm.DB, testPackageID string) (*NDEPWHTStatus, error) {
	var status NDEPWHTStatus
	err := db.WithContext(ctx).
		Where("test_package_id = ?", testPackageID).
		Take(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &status, nil
}
