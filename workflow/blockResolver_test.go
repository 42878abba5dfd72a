package workflow

import "testing"

func TestExtractBlockFromDrawing(t *testing.T) {
	cases := []struct {
		drawing string
		want    string
	}{
		{"GCC-ASP-DDD-00051-00-5100-TKM-ISO-00004", "5100-00051-00"},
		{"GCC-ASP-DDD-16150-12-2200-TKM-ISO-00004", "2200-16150-12"},
		{"ABC-100-200", "100-200"},
		{"UNIT-42", "42"},
		{"NO-DIGITS-HERE", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := ExtractBlockFromDrawing(tc.drawing); got != tc.want {
			t.Errorf("ExtractBlockFromDrawing(%q) = %q, want %q", tc.drawing, got, tc.want)
		}
	}
}

func TestExtractBlockFromDrawingLeadingZerosPreserved(t *testing.T) {
	// "05100" and "5100" are different blocks; digits never get re-padded
	// or stripped, otherwise equality joins against the facility list break.
	got := ExtractBlockFromDrawing("GCC-ASP-DDD-00051-00-05100-TKM-ISO-00004")
	if got != "05100-00051-00" {
		t.Fatalf("got %q, want %q", got, "05100-00051-00")
	}
}
