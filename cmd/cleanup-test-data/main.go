package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/tkmfield/precom_backend/config"
	"bitbucket.org/tkmfield/precom_backend/models"
	"bitbucket.org/tkmfield/precom_backend/utils"
	"bitbucket.org/tkmfield/precom_backend/workflow"
)

func main() {
	prefix := flag.String("prefix", "", "Required: id prefix of the test rows to delete, e.g. TEST-")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt")
	skipRefresh := flag.Bool("skip-refresh", false, "Skip the aggregate rebuild after cleanup")
	flag.Parse()

	if strings.TrimSpace(*prefix) == "" {
		fmt.Fprintln(os.Stderr, "--prefix is required")
		os.Exit(1)
	}

	if !*yes {
		fmt.Printf("delete all rows with prefix %q across welding_records, test_packages, line_lists and sync_logs? [y/N] ", *prefix)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("aborted")
			return
		}
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := utils.SetRequestSourceInContext(context.Background(), "cli")

	counts, err := models.CleanupTestData(ctx, db, *prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleanup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("deleted: welding_records=%d test_packages=%d line_lists=%d sync_logs=%d\n",
		counts.WeldingRecords, counts.TestPackages, counts.LineLists, counts.SyncLogs)

	if !*skipRefresh {
		refreshed, err := workflow.RefreshAllAggregates(ctx, db, config.GetLogger())
		if err != nil {
			fmt.Fprintf(os.Stderr, "aggregate refresh failed: %v\n", err)
			os.Exit(1)
		}
		for table, rows := range refreshed {
			fmt.Printf("%s: %d rows\n", table, rows)
		}
	}
}
