package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/tkmfield/precom_backend/config"
	"bitbucket.org/tkmfield/precom_backend/importer"
	"bitbucket.org/tkmfield/precom_backend/models"
	"bitbucket.org/tkmfield/precom_backend/utils"
	"bitbucket.org/tkmfield/precom_backend/workflow"
)

func main() {
	filePath := flag.String("file", "", "Required: path to the welding list .xlsx")
	skipRefresh := flag.Bool("skip-refresh", false, "Skip the aggregate rebuild after import")
	flag.Parse()

	if strings.TrimSpace(*filePath) == "" {
		fmt.Fprintln(os.Stderr, "--file is required")
		os.Exit(1)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", *filePath, err)
		os.Exit(1)
	}
	defer f.Close()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	models.MigrateTable()

	ctx := utils.SetRequestSourceInContext(context.Background(), "cli")

	result, err := importer.ImportWeldingList(ctx, db, f, models.DataSourceWeldingList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("rows: %d imported: %d skipped: %d\n", result.TotalRows, result.Imported, result.Skipped)
	for _, rowErr := range result.RowErrors {
		fmt.Fprintln(os.Stderr, rowErr)
	}

	if _, err := workflow.BackfillWeldingBlocks(ctx, db, nil); err != nil {
		fmt.Fprintf(os.Stderr, "block backfill failed: %v\n", err)
		os.Exit(1)
	}

	if !*skipRefresh {
		counts, err := workflow.RefreshAllAggregates(ctx, db, config.GetLogger())
		if err != nil {
			fmt.Fprintf(os.Stderr, "aggregate refresh failed: %v\n", err)
			os.Exit(1)
		}
		for table, rows := range counts {
			fmt.Printf("%s: %d rows\n", table, rows)
		}
	}
}
