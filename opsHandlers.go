package main

import (
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bitbucket.org/tkmfield/precom_backend/config"
	"bitbucket.org/tkmfield/precom_backend/importer"
	"bitbucket.org/tkmfield/precom_backend/models"
	"bitbucket.org/tkmfield/precom_backend/models/reports"
	"bitbucket.org/tkmfield/precom_backend/workflow"
)

// refreshAggregatesHandler rebuilds every aggregate table.
// The Redis lock is a best-effort optimization to shed duplicate requests
// early; correctness does not depend on it, the rebuild also serializes via
// MySQL advisory locks inside RefreshAllAggregates.
func refreshAggregatesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		redisLock := config.GetRedisLock()

		var lock *redislock.Lock
		if redisLock == nil {
			logger.WithFields(logrus.Fields{
				"field": "refreshAggregatesHandler",
			}).Warn("redis lock not ready; proceeding without redis lock")
		} else {
			var err error
			lock, err = redisLock.Obtain(c.Request.Context(), "lock:aggregate-refresh", 10*time.Minute, nil)
			if err == redislock.ErrNotObtained {
				c.JSON(http.StatusConflict, gin.H{"error": "an aggregate refresh is already running"})
				return
			} else if err != nil {
				logger.WithFields(logrus.Fields{
					"field": "refreshAggregatesHandler",
				}).Warn("could not reach redis for lock; proceeding without redis lock: " + err.Error())
				lock = nil
			}
		}
		if lock != nil {
			defer func() { _ = lock.Release(c.Request.Context()) }()
		}

		counts, err := workflow.RefreshAllAggregates(c.Request.Context(), config.GetDB(), logger)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"refreshed": counts})
	}
}

func refreshPackageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing test package id"})
			return
		}
		err := workflow.RefreshAllPackageAggregates(c.Request.Context(), config.GetDB(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"refreshed": id})
	}
}

func backfillBlocksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		updated, err := workflow.BackfillWeldingBlocks(c.Request.Context(), config.GetDB(), config.GetLogger())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated_rows": updated})
	}
}

func cleanupTestDataHandler() gin.HandlerFunc {
	type request struct {
		Prefix string `json:"prefix" binding:"required"`
	}
	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		counts, err := models.CleanupTestData(c.Request.Context(), config.GetDB(), req.Prefix)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": counts})
	}
}

func openUploadedWorkbook(c *gin.Context) (multipart.File, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return nil, false
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type: only .xlsx files are allowed"})
		return nil, false
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return f, true
}

func importWeldingListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := openUploadedWorkbook(c)
		if !ok {
			return
		}
		defer f.Close()

		result, err := importer.ImportWeldingList(c.Request.Context(), config.GetDB(), f, models.DataSourceWeldingList)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// The import changed the source of truth; rebuild the aggregates so
		// dashboards reflect it immediately. A rebuild failure does not undo
		// the import, so report it alongside the import result.
		counts, err := workflow.RefreshAllAggregates(c.Request.Context(), config.GetDB(), nil)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"import": result, "refresh_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"import": result, "refreshed": counts})
	}
}

func importLineListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := openUploadedWorkbook(c)
		if !ok {
			return
		}
		defer f.Close()

		result, err := importer.ImportLineList(c.Request.Context(), config.GetDB(), f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// NDE grades drive the compliance and status aggregates.
		counts, err := workflow.RefreshAllAggregates(c.Request.Context(), config.GetDB(), nil)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"import": result, "refresh_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"import": result, "refreshed": counts})
	}
}

func importFaclistHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := openUploadedWorkbook(c)
		if !ok {
			return
		}
		defer f.Close()

		result, err := importer.ImportFaclist(c.Request.Context(), config.GetDB(), f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func exportSystemSummariesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=system_summaries.xlsx")
		if err := reports.ExportSystemSummaries(c.Request.Context(), config.GetDB(), c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	}
}

func exportNDEStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=nde_pwht_status.xlsx")
		if err := reports.ExportNDEPWHTStatus(c.Request.Context(), config.GetDB(), c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	}
}
