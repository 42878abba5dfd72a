package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/tkmfield/precom_backend/config"
	"bitbucket.org/tkmfield/precom_backend/utils"
	"bitbucket.org/tkmfield/precom_backend/workflow"
)

func main() {
	refresh := flag.Bool("refresh", false, "Rebuild aggregate tables after the backfill")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := utils.SetRequestSourceInContext(context.Background(), "cli")

	updated, err := workflow.BackfillWeldingBlocks(ctx, db, config.GetLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "backfill failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("updated %d welding records\n", updated)

	if *refresh {
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
