package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/habitpulse/habitpulse/internal/adapters/handler/http/middleware"
	"github.com/habitpulse/habitpulse/internal/core/services"
	"github.com/habitpulse/habitpulse/internal/core/timeday"
)

type TrackerHandler struct {
	svc *services.TrackerService
}

func NewTrackerHandler(svc *services.TrackerService) *TrackerHandler {
	return &TrackerHandler{
		svc: svc,
	}
}

func (h *TrackerHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/trackers/toggle", h.Toggle)
	router.GET("/day", h.Day)
	router.GET("/habits/:id/trackers", h.ListByHabit)
}

type toggleRequest struct {
	HabitID   string `json:"habit_id" binding:"required"`
	Timestamp string `json:"timestamp"`
	TimeZone  string `json:"tz" binding:"required"`
	Notes     string `json:"notes"`
}

// Toggle flips the completion state of a habit for the local day of the
// given timestamp. An empty timestamp means "now", resolved server-side.
func (h *TrackerHandler) Toggle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ts time.Time
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timestamp, expected RFC 3339"})
			return
		}
		ts = parsed
	}

	result, err := h.svc.Toggle(c.Request.Context(), services.ToggleInput{
		HabitID:   req.HabitID,
		UserID:    userID,
		Timestamp: ts,
		TimeZone:  req.TimeZone,
		Notes:     req.Notes,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Day returns the habits due on a calendar day together with their completion
// state. Defaults to today in the requested timezone.
func (h *TrackerHandler) Day(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	tz := c.DefaultQuery("tz", "UTC")

	dateKey := c.Query("date")
	if dateKey == "" {
		loc, err := timeday.LoadLocation(tz)
		if err != nil {
			handleError(c, err)
			return
		}
		dateKey = timeday.DayKey(time.Now(), loc)
	}

	habits, err := h.svc.Day(c.Request.Context(), userID, dateKey, tz)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":   dateKey,
		"habits": habits,
	})
}

// ListByHabit returns a habit's completions within an optional instant range.
func (h *TrackerHandler) ListByHabit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	from := time.Time{}
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from, expected RFC 3339"})
			return
		}
		from = parsed
	}

	to := time.Now().UTC()
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to, expected RFC 3339"})
			return
		}
		to = parsed
	}

	trackers, err := h.svc.ListByHabit(c.Request.Context(), c.Param("id"), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, trackers)
}
