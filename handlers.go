package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bitbucket.org/tkmfield/precom_backend/config"
	"bitbucket.org/tkmfield/precom_backend/models"
	"bitbucket.org/tkmfield/precom_backend/utils"
	"bitbucket.org/tkmfield/precom_backend/workflow"
)

func listSystemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		systems, err := models.ListSystems(c.Request.Context(), config.GetDB())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"systems": systems})
	}
}

func listSubsystemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		subsystems, err := models.ListSubsystems(c.Request.Context(), config.GetDB(), c.Query("system_code"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"subsystems": subsystems})
	}
}

// getTestPackageHandler returns a package with every aggregate hanging off
// it: joint summary, examination status and ISO drawings. Missing aggregates
// come back as null rather than an error, since a package imported moments
// ago may not have been through a refresh yet.
func getTestPackageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		db := config.GetDB()
		id := c.Param("id")

		pkg, err := models.GetTestPackage(ctx, db, id)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "test package not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		joint, err := models.GetJointSummary(ctx, db, id)
		if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ndeStatus, err := models.GetNDEPWHTStatus(ctx, db, id)
		if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		drawings, err := models.ListISODrawings(ctx, db, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		welds, err := models.ListWeldingRecordsByPackage(ctx, db, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		completedWelds := 0
		for i := range welds {
			if welds[i].IsCompleted() {
				completedWelds++
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"test_package":    pkg,
			"joint_summary":   joint,
			"nde_pwht_status": ndeStatus,
			"iso_drawings":    drawings,
			"welds":           welds,
			"completed_welds": completedWelds,
		})
	}
}

func ndtComplianceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := workflow.CheckNDTCompliance(c.Request.Context(), config.GetDB(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func ndtStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		examType := c.Query("type")
		if examType != "" && !models.IsValidTestType(examType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown test type: " + examType})
			return
		}
		status, err := workflow.CalculateNDTStatus(c.Request.Context(), config.GetDB(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if examType != "" {
			c.JSON(http.StatusOK, gin.H{
				"test_package_id": c.Param("id"),
				"test_type":       examType,
				"totals":          status.ByTestType[models.TestType(examType)],
			})
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// resolveFilterBlocks turns the dashboard's facility filter into the block
// set to resolve against. nil means no filter; an empty slice means the
// filter matched nothing and the dashboard must come back empty.
func resolveFilterBlocks(c *gin.Context) ([]string, bool) {
	var filter models.FaclistFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if filter.IsZero() {
		return nil, true
	}
	blocks, err := models.MatchedBlocks(c.Request.Context(), config.GetDB(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if blocks == nil {
		blocks = []string{}
	}
	return blocks, true
}

func systemDashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		db := config.GetDB()

		blocks, ok := resolveFilterBlocks(c)
		if !ok {
			return
		}

		var allowed []string
		if blocks != nil {
			codes, err := workflow.ResolveSystemCodesByBlocks(ctx, db, blocks)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			allowed = make([]string, 0, len(codes))
			for code := range codes {
				allowed = append(allowed, code)
			}
		}

		rows, err := models.ListSystemProgress(ctx, db, blocks, allowed)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"systems": rows})
	}
}

func subsystemDashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		db := config.GetDB()

		blocks, ok := resolveFilterBlocks(c)
		if !ok {
			return
		}

		var allowed []string
		if blocks != nil {
			codes, err := workflow.ResolveSubsystemCodesByBlocks(ctx, db, blocks)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			allowed = make([]string, 0, len(codes))
			for code := range codes {
				allowed = append(allowed, code)
			}
		}

		rows, err := models.ListSubsystemProgress(ctx, db, c.Query("system_code"), blocks, allowed)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"subsystems": rows})
	}
}

func faclistOptionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.FaclistFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts, err := models.GetFaclistFilterOptions(c.Request.Context(), config.GetDB(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, opts)
	}
}

func listAlertsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := models.AlertStatus(c.Query("status"))
		if status != "" && !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
		alerts, err := models.ListPreparationAlerts(c.Request.Context(), config.GetDB(), c.Query("system_code"), status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"alerts": alerts})
	}
}

func updateAlertStatusHandler() gin.HandlerFunc {
	type request struct {
		Status  models.AlertStatus `json:"status" binding:"required"`
		Remarks string             `json:"remarks"`
	}
	return func(c *gin.Context) {
		alertID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
			return
		}
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		alert, err := models.UpdatePreparationAlertStatus(c.Request.Context(), config.GetDB(), alertID, req.Status, req.Remarks)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, alert)
	}
}
