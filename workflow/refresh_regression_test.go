package workflow_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/tkmfield/precom_backend/config"
	"bitbucket.org/tkmfield/precom_backend/models"
	"bitbucket.org/tkmfield/precom_backend/workflow"
)

func TestFullAggregateRefreshAgainstMySQL(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "precom_test")
	t.Setenv("PIPELINE_SYSTEM_SHARE_THRESHOLD", "0.5")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	db := config.GetDB()
	if db == nil {
		t.Fatalf("db is nil after ConnectDatabaseWithRetry")
	}

	weldDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seed := []models.WeldingRecord{
		// TP-A: two welds, both completed, pipeline PL-1 graded 50%RT.
		{WeldID: "W-001", TestPackageID: "TP-A", SystemCode: "SYS1", SubSystemCode: "SS1",
			PipelineNumber: "PL-1", DrawingNumber: "GCC-ASP-DDD-00051-00-5100-TKM-ISO-00004",
			Size: decimal.NewFromInt(4), WeldDate: &weldDate,
			VTResult: "VT-1", RTResult: "RT-1", WelderRoot: "W01"},
		{WeldID: "W-002", TestPackageID: "TP-A", SystemCode: "SYS1", SubSystemCode: "SS1",
			PipelineNumber: "PL-1", DrawingNumber: "GCC-ASP-DDD-00051-00-5100-TKM-ISO-00004",
			Size: decimal.NewFromInt(6), Status: models.WeldStatusCompleted,
			VTResult: "VT-2", WelderRoot: "W01"},
		// TP-B: one completed, one open, so its totals must stay NULL.
		{WeldID: "W-003", TestPackageID: "TP-B", SystemCode: "SYS1", SubSystemCode: "SS2",
			PipelineNumber: "PL-2", DrawingNumber: "GCC-ASP-DDD-00052-00-5100-TKM-ISO-00001",
			Size: decimal.NewFromInt(3), WeldDate: &weldDate,
			VTResult: "VT-3", WelderRoot: "W02"},
		{WeldID: "W-004", TestPackageID: "TP-B", SystemCode: "SYS1", SubSystemCode: "SS2",
			PipelineNumber: "PL-2", DrawingNumber: "GCC-ASP-DDD-00052-00-5100-TKM-ISO-00001",
			Size: decimal.NewFromInt(5), WelderRoot: "W02"},
		// A soft-deleted open weld in TP-A. It must not hold the package's
		// gate open or bleed into any aggregate.
		{WeldID: "W-005", TestPackageID: "TP-A", SystemCode: "SYS1", SubSystemCode: "SS1",
			PipelineNumber: "PL-1", DrawingNumber: "GCC-ASP-DDD-00051-00-5100-TKM-ISO-00004",
			Size: decimal.NewFromInt(2), WelderRoot: "W01", IsDeleted: true},
		// SYS2: PL-3 is fully welded with exactly half the system's DIN
		// (9 of 18), landing right on the alert threshold.
		{WeldID: "W-010", TestPackageID: "TP-C", SystemCode: "SYS2",
			PipelineNumber: "PL-3", Size: decimal.NewFromInt(4), WeldDate: &weldDate, WelderRoot: "W03"},
		{WeldID: "W-011", TestPackageID: "TP-C", SystemCode: "SYS2",
			PipelineNumber: "PL-3", Size: decimal.NewFromInt(5), WeldDate: &weldDate, WelderRoot: "W03"},
		{WeldID: "W-012", TestPackageID: "TP-D", SystemCode: "SYS2",
			PipelineNumber: "PL-4", Size: decimal.NewFromInt(4), WeldDate: &weldDate, WelderRoot: "W03"},
		{WeldID: "W-013", TestPackageID: "TP-D", SystemCode: "SYS2",
			PipelineNumber: "PL-4", Size: decimal.NewFromInt(5), WelderRoot: "W03"},
		// SYS3: PL-5 is fully welded but carries just under half the
		// system's DIN (8 of 18).
		{WeldID: "W-014", TestPackageID: "TP-E", SystemCode: "SYS3",
			PipelineNumber: "PL-5", Size: decimal.NewFromInt(8), WeldDate: &weldDate, WelderRoot: "W04"},
		{WeldID: "W-015", TestPackageID: "TP-F", SystemCode: "SYS3",
			PipelineNumber: "PL-6", Size: decimal.NewFromInt(10), WelderRoot: "W04"},
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed welding records: %v", err)
	}
	lines := []models.LineList{
		{LineID: "PL-1", NDEGrade: "50%RT"},
		{LineID: "PL-2", NDEGrade: "10%RT"},
	}
	if err := db.Create(&lines).Error; err != nil {
		t.Fatalf("seed line list: %v", err)
	}
	packages := []models.TestPackage{
		{TestPackageID: "TP-A", SystemCode: "SYS1", SubSystemCode: "SS1", ActualDate: &weldDate},
		{TestPackageID: "TP-B", SystemCode: "SYS1", SubSystemCode: "SS2"},
	}
	if err := db.Create(&packages).Error; err != nil {
		t.Fatalf("seed test packages: %v", err)
	}
	systems := []models.System{
		{SystemCode: "SYS1", SystemDescription: "Utility Air"},
		{SystemCode: "SYS2", SystemDescription: "Cooling Water"},
		{SystemCode: "SYS3", SystemDescription: "Flare Gas"},
	}
	if err := db.Create(&systems).Error; err != nil {
		t.Fatalf("seed systems: %v", err)
	}
	subsystems := []models.Subsystem{
		{SystemCode: "SYS1", SubSystemCode: "SS1"},
		{SystemCode: "SYS1", SubSystemCode: "SS2"},
	}
	if err := db.Create(&subsystems).Error; err != nil {
		t.Fatalf("seed subsystems: %v", err)
	}

	if _, err := workflow.BackfillWeldingBlocks(ctx, db, nil); err != nil {
		t.Fatalf("BackfillWeldingBlocks: %v", err)
	}
	var block string
	if err := db.Raw(`SELECT block FROM welding_records WHERE weld_id = 'W-001'`).Scan(&block).Error; err != nil {
		t.Fatalf("read backfilled block: %v", err)
	}
	if block != "5100-00051-00" {
		t.Fatalf("backfilled block = %q, want 5100-00051-00", block)
	}

	// No refresh has run yet, so the block summaries are empty and
	// resolution must fall back to the raw welding records.
	preSys, err := workflow.ResolveSystemCodesByBlocks(ctx, db, []string{"5100-00051-00"})
	if err != nil {
		t.Fatalf("ResolveSystemCodesByBlocks before refresh: %v", err)
	}
	if _, ok := preSys["SYS1"]; !ok || len(preSys) != 1 {
		t.Errorf("pre-refresh system resolution = %v, want {SYS1}", preSys)
	}
	preSub, err := workflow.ResolveSubsystemCodesByBlocks(ctx, db, []string{"5100-00052-00"})
	if err != nil {
		t.Fatalf("ResolveSubsystemCodesByBlocks before refresh: %v", err)
	}
	if _, ok := preSub["SS2"]; !ok || len(preSub) != 1 {
		t.Errorf("pre-refresh subsystem resolution = %v, want {SS2}", preSub)
	}

	counts, err := workflow.RefreshAllAggregates(ctx, db, nil)
	if err != nil {
		t.Fatalf("RefreshAllAggregates: %v", err)
	}
	if counts["joint_summaries"] != 6 {
		t.Errorf("joint_summaries rows = %d, want 6", counts["joint_summaries"])
	}

	// TP-A's live welds are all completed: totals are concrete. The
	// soft-deleted open weld W-005 must not hold the gate closed.
	statusA, err := models.GetNDEPWHTStatus(ctx, db, "TP-A")
	if err != nil {
		t.Fatalf("GetNDEPWHTStatus TP-A: %v", err)
	}
	byType := statusA.ByTestType()
	rt := byType[models.TestTypeRT]
	if rt.Total == nil || *rt.Total != 1 {
		t.Errorf("TP-A RT total = %v, want 1 (int(2 * 0.50))", rt.Total)
	}
	if rt.Completed != 1 {
		t.Errorf("TP-A RT completed = %d, want 1", rt.Completed)
	}
	if rt.Remaining == nil || *rt.Remaining != 0 {
		t.Errorf("TP-A RT remaining = %v, want 0", rt.Remaining)
	}

	// The per-package rebuild counts the same weld population as the bulk
	// one, so running it on its own must not flip TP-A's gate.
	if err := workflow.RefreshNDEPWHTStatus(ctx, db, "TP-A"); err != nil {
		t.Fatalf("RefreshNDEPWHTStatus TP-A: %v", err)
	}
	statusASingle, err := models.GetNDEPWHTStatus(ctx, db, "TP-A")
	if err != nil {
		t.Fatalf("GetNDEPWHTStatus TP-A after per-package rebuild: %v", err)
	}
	rtSingle := statusASingle.ByTestType()[models.TestTypeRT]
	if rtSingle.Total == nil || *rtSingle.Total != 1 || rtSingle.Completed != 1 {
		t.Errorf("TP-A RT after per-package rebuild = %+v, want total 1 completed 1", rtSingle)
	}

	// TP-B still has an open weld: totals stay NULL, completed still counts.
	statusB, err := models.GetNDEPWHTStatus(ctx, db, "TP-B")
	if err != nil {
		t.Fatalf("GetNDEPWHTStatus TP-B: %v", err)
	}
	vtB := statusB.ByTestType()[models.TestTypeVT]
	if vtB.Total != nil || vtB.Remaining != nil {
		t.Errorf("TP-B VT totals must be NULL while a weld is open, got %+v", vtB)
	}
	if vtB.Completed != 1 {
		t.Errorf("TP-B VT completed = %d, want 1", vtB.Completed)
	}

	jointA, err := models.GetJointSummary(ctx, db, "TP-A")
	if err != nil {
		t.Fatalf("GetJointSummary TP-A: %v", err)
	}
	if jointA.TotalJoints != 2 || jointA.CompletedJoints != 2 || jointA.RemainingJoints != 0 {
		t.Errorf("TP-A joints = %d/%d/%d, want 2/2/0",
			jointA.TotalJoints, jointA.CompletedJoints, jointA.RemainingJoints)
	}
	if !jointA.TotalDIN.Equal(decimal.NewFromInt(10)) {
		t.Errorf("TP-A total DIN = %s, want 10", jointA.TotalDIN)
	}

	// PL-1 is fully welded with 10 of SYS1's 18 DIN: share 0.5555 clears
	// the 0.5 threshold. PL-3 sits exactly on the threshold with 9 of
	// SYS2's 18 DIN, and the comparison is inclusive, so it alerts too.
	// PL-5 carries 8 of SYS3's 18 DIN, just below, and stays silent.
	alerts, err := models.ListPreparationAlerts(ctx, db, "", "")
	if err != nil {
		t.Fatalf("ListPreparationAlerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("alerts = %d, want exactly 2 (PL-1 and PL-3)", len(alerts))
	}
	alerted := map[string]bool{}
	for _, a := range alerts {
		alerted[a.PipelineNumber] = true
		if a.Status != models.AlertStatusPending {
			t.Errorf("alert %s status = %q, want %q", a.PipelineNumber, a.Status, models.AlertStatusPending)
		}
	}
	if !alerted["PL-1"] || !alerted["PL-3"] {
		t.Errorf("alerted pipelines = %v, want PL-1 and PL-3", alerted)
	}
	if alerted["PL-5"] {
		t.Errorf("PL-5 alerted at share 8/18, below the 0.5 threshold")
	}

	// Rebuilding from unchanged sources must reproduce identical aggregates.
	counts2, err := workflow.RefreshAllAggregates(ctx, db, nil)
	if err != nil {
		t.Fatalf("second RefreshAllAggregates: %v", err)
	}
	for table, n := range counts {
		if counts2[table] != n {
			t.Errorf("row count of %s changed across identical rebuilds: %d then %d", table, n, counts2[table])
		}
	}
	statusA2, err := models.GetNDEPWHTStatus(ctx, db, "TP-A")
	if err != nil {
		t.Fatalf("GetNDEPWHTStatus TP-A after rebuild: %v", err)
	}
	rt2 := statusA2.ByTestType()[models.TestTypeRT]
	if *rt2.Total != *rt.Total || rt2.Completed != rt.Completed || *rt2.Remaining != *rt.Remaining {
		t.Errorf("TP-A RT status drifted across identical rebuilds: %+v then %+v", rt, rt2)
	}

	// Completing TP-B's open weld and refreshing flips its gate on.
	if err := db.Exec(`UPDATE welding_records SET weld_date = ? WHERE weld_id = 'W-004'`, weldDate).Error; err != nil {
		t.Fatalf("complete W-004: %v", err)
	}
	if _, err := workflow.RefreshAllAggregates(ctx, db, nil); err != nil {
		t.Fatalf("third RefreshAllAggregates: %v", err)
	}
	statusB2, err := models.GetNDEPWHTStatus(ctx, db, "TP-B")
	if err != nil {
		t.Fatalf("GetNDEPWHTStatus TP-B after completion: %v", err)
	}
	vtB2 := statusB2.ByTestType()[models.TestTypeVT]
	if vtB2.Total == nil || *vtB2.Total != 2 {
		t.Errorf("TP-B VT total after completion = %v, want 2", vtB2.Total)
	}

	// Block resolution: the backfilled canonical blocks resolve to SYS1
	// through the precomputed summary, and an unknown block matches nothing.
	codes, err := workflow.ResolveSystemCodesByBlocks(ctx, db, []string{"5100-00051-00", "5100-00052-00"})
	if err != nil {
		t.Fatalf("ResolveSystemCodesByBlocks: %v", err)
	}
	if _, ok := codes["SYS1"]; !ok || len(codes) != 1 {
		t.Errorf("resolved codes = %v, want {SYS1}", codes)
	}
	none, err := workflow.ResolveSystemCodesByBlocks(ctx, db, []string{"9999-99999-99"})
	if err != nil {
		t.Fatalf("ResolveSystemCodesByBlocks unknown: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("unknown block must resolve to an empty non nil set, got %v", none)
	}

	// Subsystem resolution follows the same path, and the subsystem
	// dashboard narrows its rows to the resolved codes.
	subCodes, err := workflow.ResolveSubsystemCodesByBlocks(ctx, db, []string{"5100-00051-00"})
	if err != nil {
		t.Fatalf("ResolveSubsystemCodesByBlocks: %v", err)
	}
	if _, ok := subCodes["SS1"]; !ok || len(subCodes) != 1 {
		t.Errorf("resolved subsystem codes = %v, want {SS1}", subCodes)
	}
	subRows, err := models.ListSubsystemProgress(ctx, db, "", []string{"5100-00051-00"}, []string{"SS1"})
	if err != nil {
		t.Fatalf("ListSubsystemProgress: %v", err)
	}
	if len(subRows) != 1 || subRows[0].SubSystemCode != "SS1" {
		t.Fatalf("filtered subsystem rows = %+v, want the single SS1 row", subRows)
	}
	if !subRows[0].TotalDIN.Equal(decimal.NewFromInt(10)) {
		t.Errorf("SS1 total DIN = %s, want 10", subRows[0].TotalDIN)
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("precom-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=precom_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
