package workflow

import (
	"testing"

	"bitbucket.org/tkmfield/precom_backend/models"
)

func TestParseNDEGrade(t *testing.T) {
	cases := []struct {
		name  string
		grade string
		want  map[models.TestType]float64
	}{
		{
			name:  "empty defaults to visual only",
			grade: "",
			want:  map[models.TestType]float64{models.TestTypeVT: 100},
		},
		{
			name:  "nan placeholder defaults to visual only",
			grade: "nan",
			want:  map[models.TestType]float64{models.TestTypeVT: 100},
		},
		{
			name:  "percent then type",
			grade: "10%RT",
			want:  map[models.TestType]float64{models.TestTypeVT: 100, models.TestTypeRT: 10},
		},
		{
			name:  "type then percent",
			grade: "PT 5%",
			want:  map[models.TestType]float64{models.TestTypeVT: 100, models.TestTypePT: 5},
		},
		{
			name:  "multiple comma separated clauses",
			grade: "10%RT, PT 5%",
			want: map[models.TestType]float64{
				models.TestTypeVT: 100,
				models.TestTypeRT: 10,
				models.TestTypePT: 5,
			},
		},
		{
			name:  "bare percentage means radiographic",
			grade: "20%",
			want:  map[models.TestType]float64{models.TestTypeVT: 100, models.TestTypeRT: 20},
		},
		{
			name:  "bare percentage ignored when explicit type present",
			grade: "20%, PT 5%",
			want:  map[models.TestType]float64{models.TestTypeVT: 100, models.TestTypePT: 5},
		},
		{
			name:  "fractional percentage",
			grade: "2.5%UT",
			want:  map[models.TestType]float64{models.TestTypeVT: 100, models.TestTypeUT: 2.5},
		},
		{
			name:  "lowercase input normalised",
			grade: "10%rt",
			want:  map[models.TestType]float64{models.TestTypeVT: 100, models.TestTypeRT: 10},
		},
		{
			name:  "explicit visual overrides default",
			grade: "VT 50%",
			want:  map[models.TestType]float64{models.TestTypeVT: 50},
		},
		{
			name:  "garbage degrades to visual only",
			grade: "see isometric",
			want:  map[models.TestType]float64{models.TestTypeVT: 100},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseNDEGrade(tc.grade)
			if len(got) != len(tc.want) {
				t.Fatalf("ParseNDEGrade(%q) = %v, want %v", tc.grade, got, tc.want)
			}
			for tt, pct := range tc.want {
				if got[tt] != pct {
					t.Errorf("ParseNDEGrade(%q)[%s] = %v, want %v", tc.grade, tt, got[tt], pct)
				}
			}
		})
	}
}

func TestParseNDEGradeAlwaysIncludesVisual(t *testing.T) {
	for _, grade := range []string{"", "10%RT", "100%", "RT 10%, UT 5%, MT 2%"} {
		got := ParseNDEGrade(grade)
		if _, ok := got[models.TestTypeVT]; !ok {
			t.Errorf("ParseNDEGrade(%q) missing VT requirement", grade)
		}
	}
}
