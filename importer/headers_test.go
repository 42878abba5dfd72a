package importer

import (
	"testing"
	"time"
)

func TestBuildHeaderIndexNormalisesCaptions(t *testing.T) {
	idx := buildHeaderIndex([]string{"Weld ID", "test_package_id", "SYSTEM-CODE", "", "Weld ID"})

	row := []string{"W-1", "TP-1", "SYS1"}
	if got := idx.cell(row, "WeldID"); got != "W-1" {
		t.Errorf("WeldID = %q, want W-1", got)
	}
	if got := idx.cell(row, "Test Package ID"); got != "TP-1" {
		t.Errorf("Test Package ID = %q, want TP-1", got)
	}
	if got := idx.cell(row, "System Code"); got != "SYS1" {
		t.Errorf("System Code = %q, want SYS1", got)
	}
	if got := idx.cell(row, "Missing Column"); got != "" {
		t.Errorf("missing column = %q, want empty", got)
	}
}

func TestHeaderIndexCellShortRow(t *testing.T) {
	idx := buildHeaderIndex([]string{"A", "B", "C"})
	// Trailing empty cells are routinely dropped by sheet readers.
	if got := idx.cell([]string{"only"}, "C"); got != "" {
		t.Errorf("short row lookup = %q, want empty", got)
	}
}

func TestHeaderIndexCellFallbackCaptions(t *testing.T) {
	idx := buildHeaderIndex([]string{"Line No"})
	row := []string{"PL-7"}
	if got := idx.cell(row, "Line ID", "LineID", "Pipeline Number", "Line No"); got != "PL-7" {
		t.Errorf("fallback caption lookup = %q, want PL-7", got)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantNil bool
		wantErr bool
	}{
		{in: "2026-03-10", want: "2026-03-10"},
		{in: "2026/03/10", want: "2026-03-10"},
		{in: "10-Mar-2026", want: "2026-03-10"},
		{in: "", wantNil: true},
		{in: "nan", wantNil: true},
		{in: "-", wantNil: true},
		{in: "not a date", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseDate(%q) expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDate(%q): %v", tc.in, err)
			continue
		}
		if tc.wantNil {
			if got != nil {
				t.Errorf("parseDate(%q) = %v, want nil", tc.in, got)
			}
			continue
		}
		if got == nil || got.Format("2006-01-02") != tc.want {
			t.Errorf("parseDate(%q) = %v, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseDateExcelSerial(t *testing.T) {
	// 45000 is 2023-03-15 in the 1900 date system.
	got, err := parseDate("45000")
	if err != nil {
		t.Fatalf("parseDate serial: %v", err)
	}
	want := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Fatalf("parseDate(45000) = %v, want %v", got, want)
	}
}

func TestParseDecimal(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"12.5", "12.5"},
		{"1,250.75", "1250.75"},
		{"", "0"},
		{"nan", "0"},
		{"-", "0"},
	} {
		got, err := parseDecimal(tc.in)
		if err != nil {
			t.Errorf("parseDecimal(%q): %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("parseDecimal(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
	if _, err := parseDecimal("12.5.6"); err == nil {
		t.Error("parseDecimal(12.5.6) expected error")
	}
}
