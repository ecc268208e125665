package routesheet

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/handler"
	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/service/routesheet"
)

type Handler struct {
	service *routesheet.Service
}

func NewHandler(service *routesheet.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sheets := r.Group("/route-sheets")
	{
		sheets.POST("/generate", h.Generate)
		sheets.GET("", h.List)
		sheets.GET("/:id", h.Get)
		sheets.PATCH("/:id/services/:serviceID", h.UpdateServiceStatus)
		sheets.GET("/:id/qr", h.QRCode)
		sheets.GET("/:id/pdf", h.PDF)
	}
}

func (h *Handler) Generate(c *gin.Context) {
	var req model.GenerateRouteSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	sheet, err := h.service.Generate(c.Request.Context(), handler.Actor(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(sheet))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid route sheet ID"))
		return
	}
	sheet, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sheet))
}

func (h *Handler) List(c *gin.Context) {
	var visitDate *model.Date
	if raw := c.Query("visit_date"); raw != "" {
		parsed, err := model.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid visit date"))
			return
		}
		visitDate = &parsed
	}
	sheets, err := h.service.List(c.Request.Context(), handler.Actor(c), visitDate)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sheets))
}

func (h *Handler) UpdateServiceStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid route sheet ID"))
		return
	}
	var req model.UpdateServiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	sheet, err := h.service.UpdateServiceStatus(c.Request.Context(), handler.Actor(c), id, c.Param("serviceID"), req.Status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sheet))
}

func (h *Handler) QRCode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid route sheet ID"))
		return
	}
	png, err := h.service.QRCode(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) PDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid route sheet ID"))
		return
	}
	data, err := h.service.PDF(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="route_sheet.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
