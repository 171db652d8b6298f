package api

import (
	"net/http"
	"strconv"

	"powerplant_project/internal/domain"
	"powerplant_project/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler handles battery HTTP requests
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new handler
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateBattery handles POST /battery/create
func (h *Handler) CreateBattery(c *gin.Context) {
	var battery domain.Battery
	if err := c.ShouldBindJSON(&battery); err != nil {
		bindError(c, err)
		return
	}

	saved, err := h.svc.CreateBattery(c.Request.Context(), battery)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

// CreateBatteries handles POST /battery/batteries
func (h *Handler) CreateBatteries(c *gin.Context) {
	var batteries []domain.Battery
	if err := c.ShouldBindJSON(&batteries); err != nil {
		bindError(c, err)
		return
	}

	saved, err := h.svc.CreateBatteries(c.Request.Context(), batteries)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

// GetBatteries handles GET /battery/batteries
func (h *Handler) GetBatteries(c *gin.Context) {
	batteries, err := h.svc.ListBatteries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, batteries)
}

// GetBatteriesInPostcodeRange handles POST /battery/range
func (h *Handler) GetBatteriesInPostcodeRange(c *gin.Context) {
	var req domain.RangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	report, err := h.svc.GetBatteriesInPostcodeRange(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetBattery handles GET /battery/:id
func (h *Handler) GetBattery(c *gin.Context) {
	id, ok := batteryID(c)
	if !ok {
		return
	}

	battery, err := h.svc.GetBattery(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, battery)
}

// UpdateBattery handles PUT /battery/:id
func (h *Handler) UpdateBattery(c *gin.Context) {
	id, ok := batteryID(c)
	if !ok {
		return
	}

	var battery domain.Battery
	if err := c.ShouldBindJSON(&battery); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.svc.UpdateBattery(c.Request.Context(), id, battery)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Health{Status: "ok", Store: h.svc.StoreType()})
}

// batteryID parses the :id path parameter, answering 400 when it is not a number
func batteryID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Message: "Invalid battery id: " + raw, Success: false})
		return 0, false
	}
	return id, true
}
