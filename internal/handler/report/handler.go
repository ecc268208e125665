package report

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profmed/crm-api/internal/handler"
	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/service/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service *report.Service
}

func NewHandler(service *report.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/summary/pdf", h.SummaryPDF)
		reports.GET("/summary/excel", h.SummaryExcel)
		reports.GET("/final-act/pdf", h.FinalActPDF)
		reports.GET("/final-act/excel", h.FinalActExcel)
	}
}

func (h *Handler) SummaryPDF(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}
	data, err := h.service.SummaryPDF(c.Request.Context(), period)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="summary_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *Handler) SummaryExcel(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}
	data, err := h.service.SummaryExcel(c.Request.Context(), period)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="summary_report.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) FinalActPDF(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}
	data, err := h.service.FinalActPDF(c.Request.Context(), period)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="final_act.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *Handler) FinalActExcel(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}
	data, err := h.service.FinalActExcel(c.Request.Context(), period)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="final_act.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) period(c *gin.Context) (report.Period, bool) {
	var period report.Period
	if raw := c.Query("from"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid from date"))
			return period, false
		}
		period.From = &d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid to date"))
			return period, false
		}
		period.To = &d
	}
	return period, true
}
