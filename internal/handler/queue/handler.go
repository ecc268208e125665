package queue

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/handler"
	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	"github.com/profmed/crm-api/internal/service/queue"
)

type Handler struct {
	service *queue.Service
}

func NewHandler(service *queue.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	q := r.Group("/patient-queue")
	{
		q.POST("", h.Add)
		q.POST("/from-route-sheet", h.AddFromRouteSheet)
		q.GET("/current", h.Current)
		q.POST("/:id/call", h.Call)
		q.POST("/:id/start", h.Start)
		q.POST("/:id/complete", h.Complete)
		q.POST("/:id/skip", h.Skip)
	}
}

func (h *Handler) Add(c *gin.Context) {
	var req model.AddToQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	entry, err := h.service.Add(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(entry))
}

type addFromRouteSheetRequest struct {
	RouteSheetID uuid.UUID           `json:"route_sheet_id" binding:"required"`
	Priority     model.QueuePriority `json:"priority" binding:"omitempty,oneof=normal urgent"`
}

func (h *Handler) AddFromRouteSheet(c *gin.Context) {
	var req addFromRouteSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	entries, err := h.service.AddFromRouteSheet(c.Request.Context(), req.RouteSheetID, req.Priority)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(entries))
}

// Current returns today's queue. Doctors see their own cabinet unless
// they filter explicitly.
func (h *Handler) Current(c *gin.Context) {
	actor := handler.Actor(c)
	filter := repository.QueueFilter{
		Specialization: c.Query("specialization"),
		Status:         model.QueueStatus(c.Query("status")),
	}

	if actor.IsDoctor() && filter.Specialization == "" {
		entries, err := h.service.CurrentForDoctor(c.Request.Context(), actor)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
		return
	}

	entries, err := h.service.Current(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

func (h *Handler) Call(c *gin.Context)     { h.transition(c, h.service.Call) }
func (h *Handler) Start(c *gin.Context)    { h.transition(c, h.service.Start) }
func (h *Handler) Complete(c *gin.Context) { h.transition(c, h.service.Complete) }
func (h *Handler) Skip(c *gin.Context)     { h.transition(c, h.service.Skip) }

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*model.QueueEntry, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid queue entry ID"))
		return
	}
	entry, err := op(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entry))
}
