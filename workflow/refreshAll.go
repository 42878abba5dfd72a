package workflow

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"bitbucket.org/tkmfield/precom_backend/config"
	"bitbucket.org/tkmfield/precom_backend/utils"
)

var tracer = otel.Tracer("precom-backend")

// RefreshAllPackageAggregates refreshes the per package aggregates of one
// test package in place: joint summary, examination status and the ISO
// drawing list.
func RefreshAllPackageAggregates(ctx context.Context, db *gorm.DB, testPackageID string) error {
	if err := RefreshJointSummary(ctx, db, testPackageID); err != nil {
		return err
	}
	if err := RefreshNDEPWHTStatus(ctx, db, testPackageID); err != nil {
		return err
	}
	return RefreshISODrawingList(ctx, db, testPackageID)
}

// RefreshAllAggregates rebuilds every aggregate table from the welding
// records in one transaction, so concurrent readers either see the previous
// rebuild or this one, never a truncated table. Returns reinserted row
// counts per table.
func RefreshAllAggregates(ctx context.Context, db *gorm.DB, logger *logrus.Logger) (map[string]int64, error) {
	ctx, span := tracer.Start(ctx, "RefreshAllAggregates", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	if logger == nil {
		logger = config.GetLogger()
	}

	if err := AcquireAggregateRefreshLock(db, "full"); err != nil {
		return nil, err
	}
	defer ReleaseAggregateRefreshLock(db, "full")

	counts := map[string]int64{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jointRows, err := RefreshJointSummaryBulk(ctx, tx)
		if err != nil {
			return err
		}
		counts["joint_summaries"] = jointRows

		ndeRows, err := RefreshNDEPWHTStatusBulk(ctx, tx)
		if err != nil {
			return err
		}
		counts["nde_pwht_statuses"] = ndeRows

		isoRows, err := RefreshISODrawingListBulk(ctx, tx)
		if err != nil {
			return err
		}
		counts["iso_drawing_lists"] = isoRows

		alertRows, err := RefreshPreparationAlerts(ctx, tx, config.SystemShareThreshold())
		if err != nil {
			return err
		}
		counts["test_package_preparation_alerts"] = alertRows

		sysRows, subRows, err := RefreshSystemAndSubsystemSummaries(ctx, tx)
		if err != nil {
			return err
		}
		counts["system_welding_summaries"] = sysRows
		counts["subsystem_welding_summaries"] = subRows

		blockSysRows, blockSubRows, err := RefreshBlockSummaries(ctx, tx)
		if err != nil {
			return err
		}
		counts["block_system_summaries"] = blockSysRows
		counts["block_subsystem_summaries"] = blockSubRows
		return nil
	})
	if err != nil {
		config.LogError(logger, "workflow", "RefreshAllAggregates", "full rebuild failed", counts, err)
		return nil, err
	}

	fields := logrus.Fields{
		"module": "workflow",
		"func":   "RefreshAllAggregates",
	}
	if countsJSON, jsonErr := utils.MarshalToJSON(counts); jsonErr == nil {
		fields["counts"] = countsJSON
	}
	if src, ok := utils.GetRequestSourceFromContext(ctx); ok {
		fields["triggeredBy"] = src
	}
	logger.WithFields(fields).Info("aggregate tables rebuilt")
	return counts, nil
}
