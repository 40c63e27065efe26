package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/habitpulse/habitpulse/internal/adapters/handler/http/middleware"
	"github.com/habitpulse/habitpulse/internal/core/services"
)

type ProgressHandler struct {
	svc *services.ProgressService
}

func NewProgressHandler(svc *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		svc: svc,
	}
}

func (h *ProgressHandler) RegisterRoutes(router *gin.RouterGroup) {
	progress := router.Group("/progress")
	{
		progress.GET("", h.Overview)
		progress.GET("/history", h.History)
		progress.GET("/streaks", h.Streaks)
	}
}

// Overview returns the daily completion series plus user-level streaks.
// tz defaults to UTC; from/to filter the returned series only.
func (h *ProgressHandler) Overview(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	overview, err := h.svc.Overview(c.Request.Context(), userID,
		c.DefaultQuery("tz", "UTC"), c.Query("from"), c.Query("to"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

func (h *ProgressHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	history, err := h.svc.History(c.Request.Context(), userID,
		c.DefaultQuery("tz", "UTC"), c.Query("from"), c.Query("to"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *ProgressHandler) Streaks(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	streaks, err := h.svc.Streaks(c.Request.Context(), userID, c.DefaultQuery("tz", "UTC"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, streaks)
}
