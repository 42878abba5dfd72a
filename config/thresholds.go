package config

import (
	"os"
	"strconv"
	"strings"
)

// SystemShareThreshold is the minimum completed-DIN share a system must reach
// before its individually completed pipelines raise preparation alerts.
//
// Set via env:
// - PIPELINE_SYSTEM_SHARE_THRESHOLD=0.5 (0 < v <= 1, default 0.5)
func SystemShareThreshold() float64 {
	v := strings.TrimSpace(os.Getenv("PIPELINE_SYSTEM_SHARE_THRESHOLD"))
	if v == "" {
		return 0.5
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || f > 1 {
		return 0.5
	}
	return f
}

// SkipMigrations disables AutoMigrate on startup (run it as a separate job instead).
//
// Set via env:
// - SKIP_MIGRATIONS=true
func SkipMigrations() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
