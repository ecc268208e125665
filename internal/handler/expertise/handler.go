package expertise

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/handler"
	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	"github.com/profmed/crm-api/internal/service/expertise"
)

type Handler struct {
	service *expertise.Service
}

func NewHandler(service *expertise.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	expertises := r.Group("/expertises")
	{
		expertises.POST("", h.Create)
		expertises.GET("", h.List)
		expertises.GET("/check-readiness", h.CheckReadiness)
		expertises.GET("/final-act-stats", h.FinalActStats)
		expertises.GET("/health-plan-items", h.HealthPlanItems)
		expertises.GET("/:id", h.Get)
		expertises.PUT("/:id", h.Update)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateExpertiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	created, err := h.service.Create(c.Request.Context(), handler.Actor(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid expertise ID"))
		return
	}
	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid expertise ID"))
		return
	}
	var req model.UpdateExpertiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	updated, err := h.service.Update(c.Request.Context(), handler.Actor(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) List(c *gin.Context) {
	filter, ok := h.filterFromQuery(c)
	if !ok {
		return
	}
	expertises, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(expertises))
}

func (h *Handler) CheckReadiness(c *gin.Context) {
	id, err := uuid.Parse(c.Query("route_sheet_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid route sheet ID"))
		return
	}
	report, err := h.service.CheckReadiness(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}

func (h *Handler) FinalActStats(c *gin.Context) {
	filter, ok := h.filterFromQuery(c)
	if !ok {
		return
	}
	stats, err := h.service.FinalActStats(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func (h *Handler) HealthPlanItems(c *gin.Context) {
	filter, ok := h.filterFromQuery(c)
	if !ok {
		return
	}
	items, err := h.service.HealthPlanItems(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}

func (h *Handler) filterFromQuery(c *gin.Context) (repository.ExpertiseFilter, bool) {
	filter := repository.ExpertiseFilter{
		PatientID:  c.Query("patient_id"),
		Department: c.Query("department"),
	}
	if raw := c.Query("from"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid from date"))
			return filter, false
		}
		filter.From = &d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid to date"))
			return filter, false
		}
		filter.To = &d
	}
	return filter, true
}
