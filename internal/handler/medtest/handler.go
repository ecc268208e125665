package medtest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/handler"
	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/service/medtest"
)

type Handler struct {
	service *medtest.Service
}

func NewHandler(service *medtest.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts two route families over the same storage: one
// for laboratory assays, one for functional diagnostics.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	h.registerKind(r.Group("/laboratory-tests"), model.TestKindLaboratory)
	h.registerKind(r.Group("/functional-tests"), model.TestKindFunctional)
}

func (h *Handler) registerKind(g *gin.RouterGroup, kind model.TestKind) {
	g.POST("", h.create(kind))
	g.GET("", h.list(kind))
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
}

func (h *Handler) create(kind model.TestKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateMedicalTestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
		test, err := h.service.Create(c.Request.Context(), kind, &req)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, handler.NewSuccessResponse(test))
	}
}

func (h *Handler) list(kind model.TestKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var routeSheetID *uuid.UUID
		if raw := c.Query("route_sheet_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid route sheet ID"))
				return
			}
			routeSheetID = &id
		}
		tests, err := h.service.List(c.Request.Context(), kind, routeSheetID)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(tests))
	}
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid test ID"))
		return
	}
	test, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(test))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid test ID"))
		return
	}
	var req model.UpdateMedicalTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	test, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(test))
}
