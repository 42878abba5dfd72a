package workflow

import (
	"context"

	"gorm.io/gorm"

	"bitbucket.org/tkmfield/precom_backend/models"
	"bitbucket.org/tkmfield/precom_backend/utils"
)

// ndeExamGroup is one (pipeline, welder, grade) group of completed welds with
// its per test type examination counts.
type ndeExamGroup struct {
	TestPackageID  string
	PipelineNumber string
	WelderRoot     string
	NDEGrade       string
	TotalWelds     int
	VTCount        int
	RTCount        int
	PTCount        int
	UTCount        int
	MTCount        int
	PMICount       int
	FTCount        int
	HTCount        int
	PWHTCount      int
}

func (g *ndeExamGroup) count(t models.TestType) int {
	switch t {
	case models.TestTypeVT:
		return g.VTCount
	case models.TestTypeRT:
		return g.RTCount
	case models.TestTypePT:
		return g.PTCount
	case models.TestTypeUT:
		return g.UTCount
	case models.TestTypeMT:
		return g.MTCount
	case models.TestTypePMI:
		return g.PMICount
	case models.TestTypeFT:
		return g.FTCount
	case models.TestTypeHT:
		return g.HTCount
	case models.TestTypePWHT:
		return g.PWHTCount
	}
	return 0
}

// computeNDEPWHTStatuses derives the per test type totals of one package.
//
// Completed counts always accumulate from the completed weld groups. Totals
// and remainders only exist once every weld of the package is welded; until
// then they stay NULL so readers show N/A instead of a misleading zero. The
// required count per group truncates toward zero.
func computeNDEPWHTStatuses(allWeldsCompleted bool, groups []ndeExamGroup) map[models.TestType]models.TestStatus {
	statuses := map[models.TestType]models.TestStatus{}
	for _, t := range models.AllTestTypes {
		st := models.TestStatus{}
		if allWeldsCompleted {
			st.Total = utils.NewInt(0)
			st.Remaining = utils.NewInt(0)
		}
		statuses[t] = st
	}

	for i := range groups {
		group := &groups[i]
		requirements := ParseNDEGrade(group.NDEGrade)
		for _, t := range models.AllTestTypes {
			st := statuses[t]
			st.Completed += group.count(t)
			if st.Total != nil && requirements[t] > 0 {
				required := int(float64(group.TotalWelds) * requirements[t] / 100)
				st.Total = utils.NewInt(*st.Total + required)
			}
			statuses[t] = st
		}
	}

	for _, t := range models.AllTestTypes {
		st := statuses[t]
		if st.Total != nil {
			st.Remaining = utils.NewInt(*st.Total - st.Completed)
		}
		statuses[t] = st
	}

	return statuses
}

const ndeExamGroupSelect = `
SELECT
	wr.test_package_id,
	wr.pipeline_number,
	wr.welder_root,
	COALESCE(ll.nde_grade, '') AS nde_grade,
	COUNT(*) AS total_welds,
	SUM(CASE WHEN wr.vt_result IS NOT NULL AND wr.vt_result <> '' THEN 1 ELSE 0 END) AS vt_count,
	SUM(CASE WHEN wr.rt_result IS NOT NULL AND wr.rt_result <> '' THEN 1 ELSE 0 END) AS rt_count,
	SUM(CASE WHEN wr.pt_result IS NOT NULL AND wr.pt_result <> '' THEN 1 ELSE 0 END) AS pt_count,
	SUM(CASE WHEN wr.ut_result IS NOT NULL AND wr.ut_result <> '' THEN 1 ELSE 0 END) AS ut_count,
	SUM(CASE WHEN wr.mt_result IS NOT NULL AND wr.mt_result <> '' THEN 1 ELSE 0 END) AS mt_count,
	SUM(CASE WHEN wr.pmi_result IS NOT NULL AND wr.pmi_result <> '' THEN 1 ELSE 0 END) AS pmi_count,
	SUM(CASE WHEN wr.ft_result IS NOT NULL AND wr.ft_result <> '' THEN 1 ELSE 0 END) AS ft_count,
	SUM(CASE WHEN wr.ht_result IS NOT NULL AND wr.ht_result <> '' THEN 1 ELSE 0 END) AS ht_count,
	SUM(CASE WHEN wr.pwht_result IS NOT NULL AND wr.pwht_result <> '' THEN 1 ELSE 0 END) AS pwht_count
FROM welding_records wr
LEFT JOIN line_lists ll ON wr.pipeline_number = ll.line_id`

// RefreshNDEPWHTStatus recomputes the examination status row of a single
// test package.
func RefreshNDEPWHTStatus(ctx context.Context, db *gorm.DB, testPackageID string) error {
	total, welded, err := models.CountWeldingRecords(ctx, db, testPackageID)
	if err != nil {
		return err
	}
	allCompleted := total == welded && total > 0

	var groups []ndeExamGroup
	err = db.WithContext(ctx).Raw(ndeExamGroupSelect+`
		WHERE wr.test_package_id = ?
		  AND wr.is_deleted = FALSE
		  AND `+models.CompletedWeldCondFor("wr")+`
		GROUP BY wr.test_package_id, wr.pipeline_number, wr.welder_root, ll.nde_grade`,
		testPackageID).Scan(&groups).Error
	if err != nil {
		return err
	}

	row := buildNDEPWHTRow(testPackageID, computeNDEPWHTStatuses(allCompleted, groups))
	return upsertNDEPWHTStatus(ctx, db, row)
}

// RefreshNDEPWHTStatusBulk rebuilds the examination status table for every
// package that has welding records. Runs inside the caller's transaction.
func RefreshNDEPWHTStatusBulk(ctx context.Context, tx *gorm.DB) (int64, error) {
	type completionRow struct {
		TestPackageID string
		TotalWelds    int
		WeldedCount   int
	}
	var completions []completionRow
	err := tx.WithContext(ctx).Raw(`
		SELECT
			test_package_id,
			COUNT(*) AS total_welds,
			SUM(CASE WHEN ` + models.CompletedWeldCond + ` THEN 1 ELSE 0 END) AS welded_count
		FROM welding_records
		WHERE test_package_id IS NOT NULL AND test_package_id <> ''
		  AND is_deleted = FALSE
		GROUP BY test_package_id`).Scan(&completions).Error
	if err != nil {
		return 0, err
	}

	var groups []ndeExamGroup
	err = tx.WithContext(ctx).Raw(ndeExamGroupSelect + `
		WHERE wr.test_package_id IS NOT NULL AND wr.test_package_id <> ''
		  AND wr.is_deleted = FALSE
		  AND ` + models.CompletedWeldCondFor("wr") + `
		GROUP BY wr.test_package_id, wr.pipeline_number, wr.welder_root, ll.nde_grade`).Scan(&groups).Error
	if err != nil {
		return 0, err
	}

	groupsByPackage := map[string][]ndeExamGroup{}
	for _, group := range groups {
		groupsByPackage[group.TestPackageID] = append(groupsByPackage[group.TestPackageID], group)
	}

	if err := tx.WithContext(ctx).Exec(`DELETE FROM nde_pwht_statuses`).Error; err != nil {
		return 0, err
	}

	rows := make([]models.NDEPWHTStatus, 0, len(completions))
	for _, completion := range completions {
		allCompleted := completion.TotalWelds == completion.WeldedCount && completion.TotalWelds > 0
		statuses := computeNDEPWHTStatuses(allCompleted, groupsByPackage[completion.TestPackageID])
		rows = append(rows, buildNDEPWHTRow(completion.TestPackageID, statuses))
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := tx.WithContext(ctx).CreateInBatches(rows, 200).Error; err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func buildNDEPWHTRow(testPackageID string, statuses map[models.TestType]models.TestStatus) models.NDEPWHTStatus {
	row := models.NDEPWHTStatus{TestPackageID: testPackageID}
	for t, st := range statuses {
		row.SetTestStatus(t, st)
	}
	return row
}

func upsertNDEPWHTStatus(ctx context.Context, db *gorm.DB, row models.NDEPWHTStatus) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`DELETE FROM nde_pwht_statuses WHERE test_package_id = ?`, row.TestPackageID).Error
		if err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
}
