package models

import (
	"testing"
	"time"
)

func TestWeldingRecordIsCompleted(t *testing.T) {
	welded := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		rec  WeldingRecord
		want bool
	}{
		{name: "weld date recorded", rec: WeldingRecord{WeldDate: &welded}, want: true},
		{name: "status completed without date", rec: WeldingRecord{Status: WeldStatusCompleted}, want: true},
		{name: "open weld", rec: WeldingRecord{Status: "Fit-up"}, want: false},
		{name: "empty record", rec: WeldingRecord{}, want: false},
	}
	for _, tc := range cases {
		if got := tc.rec.IsCompleted(); got != tc.want {
			t.Errorf("%s: IsCompleted() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsValidTestType(t *testing.T) {
	for _, tt := range AllTestTypes {
		if !IsValidTestType(string(tt)) {
			t.Errorf("IsValidTestType(%q) = false, want true", tt)
		}
	}
	for _, s := range []string{"", "rt", "XX", "Completed"} {
		if IsValidTestType(s) {
			t.Errorf("IsValidTestType(%q) = true, want false", s)
		}
	}
}
