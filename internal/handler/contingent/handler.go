package contingent

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/handler"
	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/service/contingent"
)

type Handler struct {
	service *contingent.Service
}

func NewHandler(service *contingent.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	employees := r.Group("/contingent-employees")
	{
		employees.POST("", h.Create)
		employees.GET("", h.List)
		employees.GET("/template", h.Template)
		employees.POST("/upload-excel", h.UploadExcel)
		employees.POST("/find-by-qr", h.FindByQR)
		employees.DELETE("/delete-all", h.DeleteAll)
		employees.GET("/:id", h.Get)
		employees.PUT("/:id", h.Update)
		employees.DELETE("/:id", h.Delete)
		employees.GET("/:id/qr", h.QRCode)
	}
	r.GET("/harmful-factors", h.HarmfulFactors)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateContingentRequest
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
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid employee ID"))
		return
	}
	employee, err := h.service.Get(c.Request.Context(), handler.Actor(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(employee))
}

func (h *Handler) List(c *gin.Context) {
	var contractID *uuid.UUID
	if raw := c.Query("contract_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid contract ID"))
			return
		}
		contractID = &id
	}
	employees, err := h.service.List(c.Request.Context(), handler.Actor(c), contractID, c.Query("department"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(employees))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid employee ID"))
		return
	}
	var req model.UpdateContingentRequest
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

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid employee ID"))
		return
	}
	if err := h.service.Delete(c.Request.Context(), handler.Actor(c), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"deleted": true}))
}

func (h *Handler) DeleteAll(c *gin.Context) {
	if err := h.service.DeleteAll(c.Request.Context(), handler.Actor(c)); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"deleted": true}))
}

// UploadExcel imports a contingent workbook. Pass replace_existing=true
// to overwrite a list already attached to the contract.
func (h *Handler) UploadExcel(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("file is required"))
		return
	}

	var contractID *uuid.UUID
	if raw := c.PostForm("contract_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid contract ID"))
			return
		}
		contractID = &id
	}
	replaceExisting := c.PostForm("replace_existing") == "true"

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("failed to open file"))
		return
	}
	defer src.Close()

	result, err := h.service.Import(c.Request.Context(), handler.Actor(c), contractID, src, replaceExisting)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) Template(c *gin.Context) {
	data, err := h.service.Template()
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="contingent_template.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handler) QRCode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid employee ID"))
		return
	}
	png, err := h.service.QRCode(c.Request.Context(), handler.Actor(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) FindByQR(c *gin.Context) {
	var req model.FindByQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	employee, err := h.service.FindByQR(c.Request.Context(), req.Payload)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(employee))
}

func (h *Handler) HarmfulFactors(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.HarmfulFactors()))
}
