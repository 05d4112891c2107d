package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"duopet-backend/models"
	"duopet-backend/services"
)

type SuspensionService interface {
	Suspend(ctx context.Context, userID int64, action string) (*time.Time, error)
	Unsuspend(ctx context.Context, userID int64) error
}

type StatsService interface {
	LoginStats(ctx context.Context) (*models.LoginStats, error)
}

type AdminController struct {
	users SuspensionService
	stats StatsService
	log   logrus.FieldLogger
}

func NewAdminController(users SuspensionService, stats StatsService, log logrus.FieldLogger) *AdminController {
	return &AdminController{users: users, stats: stats, log: log}
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return id, true
}

// Suspend handles POST /admin/users/:id/suspend
func (ac *AdminController) Suspend(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req models.SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	until, err := ac.users.Suspend(c.Request.Context(), id, req.Action)
	if err != nil {
		ac.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": id, "status": models.StatusSuspended, "suspendedUntil": until})
}

// Unsuspend handles POST /admin/users/:id/unsuspend
func (ac *AdminController) Unsuspend(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	if err := ac.users.Unsuspend(c.Request.Context(), id); err != nil {
		ac.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": id, "status": models.StatusActive})
}

// LoginStats handles GET /admin/login-stats
func (ac *AdminController) LoginStats(c *gin.Context) {
	stats, err := ac.stats.LoginStats(c.Request.Context())
	if err != nil {
		ac.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (ac *AdminController) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		ac.log.WithError(err).Error("admin request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}
