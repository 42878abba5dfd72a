package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/tkmfield/precom_backend/config"
	"bitbucket.org/tkmfield/precom_backend/utils"
	"bitbucket.org/tkmfield/precom_backend/workflow"
)

func main() {
	packageID := flag.String("test-package-id", "", "Optional: refresh a single test package instead of the full rebuild")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := utils.SetRequestSourceInContext(context.Background(), "cli")

	if id := strings.TrimSpace(*packageID); id != "" {
		if err := workflow.RefreshAllPackageAggregates(ctx, db, id); err != nil {
			fmt.Fprintf(os.Stderr, "refresh failed for %s: %v\n", id, err)
			os.Exit(1)
		}
		fmt.Printf("refreshed aggregates for %s\n", id)
		return
	}

	counts, err := workflow.RefreshAllAggregates(ctx, db, config.GetLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "full refresh failed: %v\n", err)
		os.Exit(1)
	}
	for table, rows := range counts {
		fmt.Printf("%s: %d rows\n", table, rows)
	}
}
