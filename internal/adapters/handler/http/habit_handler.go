package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/habitpulse/habitpulse/internal/adapters/handler/http/middleware"
	"github.com/habitpulse/habitpulse/internal/core/domain"
	"github.com/habitpulse/habitpulse/internal/core/services"
	"github.com/habitpulse/habitpulse/internal/core/timeday"
)

type HabitHandler struct {
	svc        *services.HabitService
	trackerSvc *services.TrackerService
}

func NewHabitHandler(svc *services.HabitService, trackerSvc *services.TrackerService) *HabitHandler {
	return &HabitHandler{
		svc:        svc,
		trackerSvc: trackerSvc,
	}
}

type createHabitRequest struct {
	Name      string   `json:"name" binding:"required"`
	Icon      string   `json:"icon"`
	Frequency []string `json:"frequency" binding:"required"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
}

type updateHabitRequest struct {
	Name      string   `json:"name"`
	Icon      string   `json:"icon"`
	Frequency []string `json:"frequency"`
	EndDate   string   `json:"end_date"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/:id", h.Get)
		habits.GET("/:id/stats", h.Stats)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
	}
}

func parseOptionalDay(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	day, err := timeday.ParseDayKey(value)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var startDate time.Time
	if req.StartDate != "" {
		parsed, err := timeday.ParseDayKey(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
			return
		}
		startDate = parsed
	}

	endDate, err := parseOptionalDay(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
		return
	}

	input := services.CreateHabitInput{
		UserID:    userID,
		Name:      req.Name,
		Icon:      req.Icon,
		Frequency: req.Frequency,
		StartDate: startDate,
		EndDate:   endDate,
	}

	habit, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Stats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	tz := c.DefaultQuery("tz", "UTC")

	stats, err := h.trackerSvc.Stats(c.Request.Context(), c.Param("id"), userID, tz)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	endDate, err := parseOptionalDay(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
		return
	}

	input := services.UpdateHabitInput{
		ID:        c.Param("id"),
		UserID:    userID,
		Name:      req.Name,
		Icon:      req.Icon,
		Frequency: req.Frequency,
		EndDate:   endDate,
	}

	habit, err := h.svc.Update(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Delete soft-deletes by default; ?hard=true removes the habit and all of
// its trackers in one transaction.
func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	id := c.Param("id")

	var err error
	if c.Query("hard") == "true" {
		err = h.svc.DeleteCascade(c.Request.Context(), id, userID)
	} else {
		err = h.svc.Delete(c.Request.Context(), id, userID)
	}

	if err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTimeZone),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrHabitNameEmpty),
		errors.Is(err, domain.ErrHabitNameTooLong),
		errors.Is(err, domain.ErrFrequencyEmpty),
		errors.Is(err, domain.ErrInvalidWeekday),
		errors.Is(err, domain.ErrInvalidDateRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrHabitNotFound), errors.Is(err, domain.ErrTrackerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	default:
		// Includes ErrInconsistentState: surfaced as a generic failure, full
		// context stays in the server log.
		logServerError(c, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
