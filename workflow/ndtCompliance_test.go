package workflow

import (
	"testing"

	"bitbucket.org/tkmfield/precom_backend/models"
)

func TestEvaluateComplianceEmpty(t *testing.T) {
	report := evaluateCompliance(nil)
	if report.TotalPipelines != 0 || report.CompliantPipelines != 0 || report.NonCompliantPipelines != 0 {
		t.Fatalf("empty stats should produce zero counts, got %+v", report)
	}
	if report.Details == nil {
		t.Fatal("details map must be initialised even when empty")
	}
}

func TestEvaluateComplianceSingleWelderMeetsRequirement(t *testing.T) {
	stats := []welderExamStats{
		{
			PipelineNumber: "PL-100",
			WelderRoot:     "W01",
			NDEGrade:       "10%RT",
			TotalWelds:     10,
			VTCount:        10,
			RTCount:        1,
		},
	}

	report := evaluateCompliance(stats)
	if report.CompliantPipelines != 1 {
		t.Fatalf("expected pipeline compliant, got %+v", report)
	}

	welder := report.Details["PL-100"].Welders["W01"]
	rt := welder.Tests[models.TestTypeRT]
	if !rt.Compliant || rt.Percentage != 10 || rt.RequiredPct != 10 {
		t.Errorf("RT at exactly the required rate must be compliant, got %+v", rt)
	}
}

func TestEvaluateComplianceOneWelderFailsPipeline(t *testing.T) {
	stats := []welderExamStats{
		{
			PipelineNumber: "PL-200",
			WelderRoot:     "W01",
			NDEGrade:       "20%RT",
			TotalWelds:     10,
			VTCount:        10,
			RTCount:        2,
		},
		{
			PipelineNumber: "PL-200",
			WelderRoot:     "W02",
			NDEGrade:       "20%RT",
			TotalWelds:     10,
			VTCount:        10,
			RTCount:        1,
		},
	}

	report := evaluateCompliance(stats)
	pipeline := report.Details["PL-200"]
	if pipeline.Compliant {
		t.Fatal("pipeline must be non compliant when any welder falls short")
	}
	if !pipeline.Welders["W01"].Compliant {
		t.Error("W01 meets every requirement and must stay compliant")
	}
	if pipeline.Welders["W02"].Compliant {
		t.Error("W02 is below the RT requirement and must be non compliant")
	}
	if report.NonCompliantPipelines != 1 {
		t.Errorf("expected 1 non compliant pipeline, got %d", report.NonCompliantPipelines)
	}
}

func TestEvaluateComplianceMissingVisualFails(t *testing.T) {
	stats := []welderExamStats{
		{
			PipelineNumber: "PL-300",
			WelderRoot:     "W05",
			NDEGrade:       "",
			TotalWelds:     4,
			VTCount:        3,
		},
	}

	report := evaluateCompliance(stats)
	welder := report.Details["PL-300"].Welders["W05"]
	if welder.Compliant {
		t.Fatal("visual inspection is always required at 100% so 3/4 must fail")
	}
	vt := welder.Tests[models.TestTypeVT]
	if vt.Percentage != 75 {
		t.Errorf("expected VT at 75%%, got %v", vt.Percentage)
	}
}

func TestEvaluateComplianceMoreExamsStaysCompliant(t *testing.T) {
	base := welderExamStats{
		PipelineNumber: "PL-400",
		WelderRoot:     "W09",
		NDEGrade:       "10%RT, PT 5%",
		TotalWelds:     20,
		VTCount:        20,
		RTCount:        2,
		PTCount:        1,
	}
	report := evaluateCompliance([]welderExamStats{base})
	if !report.Details["PL-400"].Welders["W09"].Compliant {
		t.Fatal("welder exactly at every requirement must be compliant")
	}

	// Recording extra examinations can never flip a compliant welder.
	more := base
	more.RTCount = 5
	more.PTCount = 8
	more.UTCount = 3
	report = evaluateCompliance([]welderExamStats{more})
	if !report.Details["PL-400"].Welders["W09"].Compliant {
		t.Fatal("additional examinations made a compliant welder non compliant")
	}
}

func TestSummariseNDTStatus(t *testing.T) {
	stats := []welderExamStats{
		{
			PipelineNumber: "PL-500",
			WelderRoot:     "W01",
			NDEGrade:       "50%RT",
			TotalWelds:     10,
			VTCount:        10,
			RTCount:        5,
		},
		{
			PipelineNumber: "PL-500",
			WelderRoot:     "W02",
			NDEGrade:       "50%RT",
			TotalWelds:     10,
			VTCount:        10,
			RTCount:        2,
		},
	}

	status := summariseNDTStatus(evaluateCompliance(stats))

	rt := status.ByTestType[models.TestTypeRT]
	if rt.Required != 20 {
		t.Errorf("RT required = %d, want 20", rt.Required)
	}
	if rt.Completed != 7 {
		t.Errorf("RT completed = %d, want 7", rt.Completed)
	}
	if rt.Compliant != 5 {
		t.Errorf("RT compliant = %d, want 5 (only W01's exams count)", rt.Compliant)
	}

	vt := status.ByTestType[models.TestTypeVT]
	if vt.Required != 20 || vt.Completed != 20 || vt.Compliant != 20 {
		t.Errorf("VT totals = %+v, want 20/20/20", vt)
	}

	if status.PipelineSummary.Total != 1 || status.PipelineSummary.NonCompliant != 1 {
		t.Errorf("pipeline summary = %+v, want 1 total with 1 non compliant", status.PipelineSummary)
	}
}
