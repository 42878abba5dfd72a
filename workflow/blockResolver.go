package workflow

import (
	"context"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"bitbucket.org/tkmfield/precom_backend/utils"
)

// blockChunkSize bounds the IN list fan-out when resolving large block sets.
const blockChunkSize = 200

var numericGroups = regexp.MustCompile(`\d+`)

// ExtractBlockFromDrawing derives the canonical block label from a drawing
// number. Drawing numbers carry the block coordinates as their first three
// numeric groups in B-C-A order; the facility list stores A-B-C, so the
// groups are reordered to make plain equality joins work.
//
//	"GCC-ASP-DDD-00051-00-5100-TKM-ISO-00004" -> "5100-00051-00"
func ExtractBlockFromDrawing(drawingNumber string) string {
	drawingNumber = strings.TrimSpace(drawingNumber)
	if drawingNumber == "" {
		return ""
	}
	parts := numericGroups.FindAllString(drawingNumber, -1)
	switch {
	case len(parts) >= 3:
		return parts[2] + "-" + parts[0] + "-" + parts[1]
	case len(parts) == 2:
		return parts[0] + "-" + parts[1]
	case len(parts) == 1:
		return parts[0]
	}
	return ""
}

// ResolveSystemCodesByBlocks maps facility blocks to the system codes with
// welds inside them. The precomputed block summary table is the fast path;
// when it yields nothing the welding records are scanned directly, since an
// empty summary usually means the rollup has not been rebuilt yet.
//
// The result is an empty (non nil) set when no block matches. Callers must
// treat that as a filter that excludes everything.
func ResolveSystemCodesByBlocks(ctx context.Context, db *gorm.DB, blocks []string) (map[string]struct{}, error) {
	codes, err := resolveCodesByBlocks(ctx, db, blocks,
		`SELECT DISTINCT system_code FROM block_system_summaries WHERE block IN ?`,
		`SELECT DISTINCT system_code FROM welding_records
		 WHERE block IN ? AND is_deleted = FALSE
		   AND system_code IS NOT NULL AND TRIM(system_code) <> ''`)
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// ResolveSubsystemCodesByBlocks is the subsystem counterpart of
// ResolveSystemCodesByBlocks.
func ResolveSubsystemCodesByBlocks(ctx context.Context, db *gorm.DB, blocks []string) (map[string]struct{}, error) {
	return resolveCodesByBlocks(ctx, db, blocks,
		`SELECT DISTINCT sub_system_code FROM block_subsystem_summaries WHERE block IN ?`,
		`SELECT DISTINCT sub_system_code FROM welding_records
		 WHERE block IN ? AND is_deleted = FALSE
		   AND sub_system_code IS NOT NULL AND TRIM(sub_system_code) <> ''`)
}

func resolveCodesByBlocks(ctx context.Context, db *gorm.DB, blocks []string, summaryQuery, fallbackQuery string) (map[string]struct{}, error) {
	codes := map[string]struct{}{}
	cleaned := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block = strings.TrimSpace(block); block != "" {
			cleaned = append(cleaned, block)
		}
	}
	if len(cleaned) == 0 {
		return codes, nil
	}

	if err := collectCodes(ctx, db, summaryQuery, cleaned, codes); err != nil {
		return nil, err
	}
	if len(codes) > 0 {
		return codes, nil
	}

	if err := collectCodes(ctx, db, fallbackQuery, cleaned, codes); err != nil {
		return nil, err
	}
	return codes, nil
}

func collectCodes(ctx context.Context, db *gorm.DB, query string, blocks []string, into map[string]struct{}) error {
	for _, chunk := range utils.ChunkStrings(blocks, blockChunkSize) {
		var found []string
		if err := db.WithContext(ctx).Raw(query, chunk).Scan(&found).Error; err != nil {
			return err
		}
		for _, code := range found {
			if code != "" {
				into[code] = struct{}{}
			}
		}
	}
	return nil
}
