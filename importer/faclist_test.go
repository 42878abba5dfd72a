package importer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestImportFaclistRejectsWorkbookWithoutBlockColumn(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetRow("Sheet1", "A1", &[]string{"Area", "Unit"}); err != nil {
		t.Fatalf("set header row: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]string{"A1", "U1"}); err != nil {
		t.Fatalf("set data row: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	// The header check fires before any database work.
	_, err := ImportFaclist(context.Background(), nil, &buf)
	if err == nil || !strings.Contains(err.Error(), "Block") {
		t.Fatalf("ImportFaclist = %v, want a missing Block column error", err)
	}
}

func TestHeaderIndexHas(t *testing.T) {
	idx := buildHeaderIndex([]string{"Block", "Line No"})
	if !idx.has("BLOCK") {
		t.Errorf("has(BLOCK) = false, want true (captions are normalised)")
	}
	if idx.has("Weld ID") {
		t.Errorf("has(Weld ID) = true, want false")
	}
}
