package models

// TestType is one of the NDE/PWHT examination types tracked per weld.
type TestType string

const (
	TestTypeVT   TestType = "VT"
	TestTypeRT   TestType = "RT"
	TestTypePT   TestType = "PT"
	TestTypeUT   TestType = "UT"
	TestTypeMT   TestType = "MT"
	TestTypePMI  TestType = "PMI"
	TestTypeFT   TestType = "FT"
	TestTypeHT   TestType = "HT"
	TestTypePWHT TestType = "PWHT"
)

// AllTestTypes covers the status aggregation scope. Order is stable; the
// status table columns follow it.
var AllTestTypes = []TestType{
	TestTypeVT, TestTypeRT, TestTypePT, TestTypeUT, TestTypeMT,
	TestTypePMI, TestTypeFT, TestTypeHT, TestTypePWHT,
}

// ComplianceTestTypes is the narrower set evaluated by the per-welder
// compliance check. HT/PWHT are heat treatments, not per-welder NDE.
var ComplianceTestTypes = []TestType{
	TestTypeVT, TestTypeRT, TestTypePT, TestTypeUT, TestTypeMT,
	TestTypePMI, TestTypeFT,
}

func IsValidTestType(s string) bool {
	for _, t := range AllTestTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

type TestPackageStatus string

const (
	TestPackageStatusPending    TestPackageStatus = "Pending"
	TestPackageStatusInProgress TestPackageStatus = "InProgress"
	TestPackageStatusCompleted  TestPackageStatus = "Completed"
	TestPackageStatusHold       TestPackageStatus = "Hold"
)

// WeldStatusCompleted marks a weld complete when no weld date was recorded.
const WeldStatusCompleted = "Completed"

type AlertStatus string

const (
	AlertStatusPending AlertStatus = "PENDING"
	AlertStatusAcked   AlertStatus = "ACKED"
	AlertStatusIgnored AlertStatus = "IGNORED"
)

func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusPending, AlertStatusAcked, AlertStatusIgnored:
		return true
	}
	return false
}

// DataSource tags where a row originated.
const (
	DataSourceImport      = "IMPORT"
	DataSourceWeldingList = "WELDING_LIST"
	DataSourceManual      = "MANUAL"
)

type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusPartial SyncStatus = "PARTIAL"
	SyncStatusFailed  SyncStatus = "FAILED"
)
