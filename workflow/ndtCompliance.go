package workflow

import (
	"context"
	"math"

	"gorm.io/gorm"

	"bitbucket.org/tkmfield/precom_backend/models"
)

// welderExamStats is one GROUP BY row: a welder's examination counts on one
// pipeline, with the pipeline's grade string joined in from the line list.
type welderExamStats struct {
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
}

func (s *welderExamStats) count(t models.TestType) int {
	switch t {
	case models.TestTypeVT:
		return s.VTCount
	case models.TestTypeRT:
		return s.RTCount
	case models.TestTypePT:
		return s.PTCount
	case models.TestTypeUT:
		return s.UTCount
	case models.TestTypeMT:
		return s.MTCount
	case models.TestTypePMI:
		return s.PMICount
	case models.TestTypeFT:
		return s.FTCount
	}
	return 0
}

type TestCompliance struct {
	Count       int     `json:"count"`
	Percentage  float64 `json:"percentage"`
	RequiredPct float64 `json:"required"`
	Compliant   bool    `json:"compliant"`
}

type WelderCompliance struct {
	TotalWelds int                               `json:"total_welds"`
	Tests      map[models.TestType]TestCompliance `json:"tests"`
	Compliant  bool                              `json:"welder_compliant"`
}

type PipelineCompliance struct {
	NDERequirement map[models.TestType]float64  `json:"nde_requirement"`
	Welders        map[string]WelderCompliance `json:"welders"`
	Compliant      bool                        `json:"pipeline_compliant"`
}

type ComplianceReport struct {
	TotalPipelines        int                            `json:"total_pipelines"`
	CompliantPipelines    int                            `json:"compliant_pipelines"`
	NonCompliantPipelines int                            `json:"non_compliant_pipelines"`
	Details               map[string]*PipelineCompliance `json:"details"`
}

type TestTypeTotals struct {
	Required  int `json:"required"`
	Completed int `json:"completed"`
	Compliant int `json:"compliant"`
}

type PipelineTally struct {
	Total        int `json:"total"`
	Compliant    int `json:"compliant"`
	NonCompliant int `json:"non_compliant"`
}

type NDTStatus struct {
	TotalRequired   int                               `json:"total_required"`
	TotalCompleted  int                               `json:"total_completed"`
	TotalCompliant  int                               `json:"total_compliant"`
	ComplianceRate  float64                           `json:"compliance_rate"`
	ByTestType      map[models.TestType]*TestTypeTotals `json:"by_test_type"`
	PipelineSummary PipelineTally                     `json:"pipeline_summary"`
}

const welderExamStatsQuery = `
SELECT
	wr.pipeline_number,
	wr.welder_root,
	COALESCE(ll.nde_grade, '') AS nde_grade,
	COUNT(*) AS total_welds,
	SUM(CASE WHEN wr.vt_result IS NOT NULL AND wr.vt_result != '' THEN 1 ELSE 0 END) AS vt_count,
	SUM(CASE WHEN wr.rt_result IS NOT NULL AND wr.rt_result != '' THEN 1 ELSE 0 END) AS rt_count,
	SUM(CASE WHEN wr.pt_result IS NOT NULL AND wr.pt_result != '' THEN 1 ELSE 0 END) AS pt_count,
	SUM(CASE WHEN wr.ut_result IS NOT NULL AND wr.ut_result != '' THEN 1 ELSE 0 END) AS ut_count,
	SUM(CASE WHEN wr.mt_result IS NOT NULL AND wr.mt_result != '' THEN 1 ELSE 0 END) AS mt_count,
	SUM(CASE WHEN wr.pmi_result IS NOT NULL AND wr.pmi_result != '' THEN 1 ELSE 0 END) AS pmi_count,
	SUM(CASE WHEN wr.ft_result IS NOT NULL AND wr.ft_result != '' THEN 1 ELSE 0 END) AS ft_count
FROM welding_records wr
LEFT JOIN line_lists ll ON wr.pipeline_number = ll.line_id
WHERE wr.test_package_id = ?
  AND wr.pipeline_number IS NOT NULL AND wr.pipeline_number != ''
  AND wr.welder_root IS NOT NULL AND wr.welder_root != ''
GROUP BY wr.pipeline_number, wr.welder_root, ll.nde_grade`

// CheckNDTCompliance evaluates every welder on every pipeline of a test
// package against the pipeline's grade requirements. A welder is compliant
// when every required test type reaches its percentage; a pipeline is
// compliant when all its welders are.
func CheckNDTCompliance(ctx context.Context, db *gorm.DB, testPackageID string) (*ComplianceReport, error) {
	var stats []welderExamStats
	err := db.WithContext(ctx).Raw(welderExamStatsQuery, testPackageID).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return evaluateCompliance(stats), nil
}

func evaluateCompliance(stats []welderExamStats) *ComplianceReport {
	report := &ComplianceReport{Details: map[string]*PipelineCompliance{}}

	for i := range stats {
		stat := &stats[i]

		pipeline, ok := report.Details[stat.PipelineNumber]
		if !ok {
			pipeline = &PipelineCompliance{
				NDERequirement: ParseNDEGrade(stat.NDEGrade),
				Welders:        map[string]WelderCompliance{},
				Compliant:      true,
			}
			report.Details[stat.PipelineNumber] = pipeline
		}

		welder := WelderCompliance{
			TotalWelds: stat.TotalWelds,
			Tests:      map[models.TestType]TestCompliance{},
			Compliant:  true,
		}

		for _, testType := range models.ComplianceTestTypes {
			count := stat.count(testType)
			actualPct := 0.0
			if stat.TotalWelds > 0 {
				actualPct = float64(count) / float64(stat.TotalWelds) * 100
			}
			requiredPct := pipeline.NDERequirement[testType]
			compliant := requiredPct <= 0 || actualPct >= requiredPct

			welder.Tests[testType] = TestCompliance{
				Count:       count,
				Percentage:  math.Round(actualPct*100) / 100,
				RequiredPct: requiredPct,
				Compliant:   compliant,
			}
			if !compliant {
				welder.Compliant = false
			}
		}

		pipeline.Welders[stat.WelderRoot] = welder
		if !welder.Compliant {
			pipeline.Compliant = false
		}
	}

	report.TotalPipelines = len(report.Details)
	for _, pipeline := range report.Details {
		if pipeline.Compliant {
			report.CompliantPipelines++
		}
	}
	report.NonCompliantPipelines = report.TotalPipelines - report.CompliantPipelines

	return report
}

// CalculateNDTStatus rolls a compliance report up into package level totals
// per test type.
func CalculateNDTStatus(ctx context.Context, db *gorm.DB, testPackageID string) (*NDTStatus, error) {
	report, err := CheckNDTCompliance(ctx, db, testPackageID)
	if err != nil {
		return nil, err
	}
	return summariseNDTStatus(report), nil
}

func summariseNDTStatus(report *ComplianceReport) *NDTStatus {
	status := &NDTStatus{
		ByTestType: map[models.TestType]*TestTypeTotals{},
		PipelineSummary: PipelineTally{
			Total:        report.TotalPipelines,
			Compliant:    report.CompliantPipelines,
			NonCompliant: report.NonCompliantPipelines,
		},
	}
	for _, testType := range models.ComplianceTestTypes {
		status.ByTestType[testType] = &TestTypeTotals{}
	}

	for _, pipeline := range report.Details {
		for _, welder := range pipeline.Welders {
			for _, testType := range models.ComplianceTestTypes {
				test, ok := welder.Tests[testType]
				if !ok {
					continue
				}
				totals := status.ByTestType[testType]
				if test.RequiredPct > 0 {
					totals.Required += welder.TotalWelds
				}
				totals.Completed += test.Count
				if test.Compliant {
					totals.Compliant += test.Count
				}
			}
		}
	}

	for _, totals := range status.ByTestType {
		status.TotalRequired += totals.Required
		status.TotalCompleted += totals.Completed
		status.TotalCompliant += totals.Compliant
	}
	if status.TotalRequired > 0 {
		rate := float64(status.TotalCompliant) / float64(status.TotalRequired) * 100
		status.ComplianceRate = math.Round(rate*100) / 100
	}

	return status
}
