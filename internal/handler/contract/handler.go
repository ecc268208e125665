package contract

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/handler"
	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/service/contract"
)

type Handler struct {
	service *contract.Service
}

func NewHandler(service *contract.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	contracts := r.Group("/contracts")
	{
		contracts.POST("", h.Create)
		contracts.GET("", h.List)
		contracts.GET("/:id", h.Get)
		contracts.PUT("/:id", h.Update)
		contracts.GET("/:id/history", h.History)

		contracts.POST("/:id/send-for-approval", h.SendForApproval)
		contracts.POST("/:id/approve", h.Approve)
		contracts.POST("/:id/reject", h.Reject)
		contracts.POST("/:id/resend-for-approval", h.ResendForApproval)
		contracts.POST("/:id/send", h.Send)
		contracts.POST("/:id/execute", h.Execute)
		contracts.POST("/:id/cancel", h.Cancel)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateContractRequest
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
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid contract ID"))
		return
	}
	found, err := h.service.Get(c.Request.Context(), handler.Actor(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) List(c *gin.Context) {
	contracts, err := h.service.List(c.Request.Context(), handler.Actor(c), model.ContractStatus(c.Query("status")))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(contracts))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid contract ID"))
		return
	}
	var req model.UpdateContractRequest
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

func (h *Handler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid contract ID"))
		return
	}
	history, err := h.service.History(c.Request.Context(), handler.Actor(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(history))
}

func (h *Handler) SendForApproval(c *gin.Context) {
	h.lifecycle(c, h.service.SendForApproval)
}

func (h *Handler) Approve(c *gin.Context) {
	h.lifecycle(c, h.service.Approve)
}

func (h *Handler) Send(c *gin.Context) {
	h.lifecycle(c, h.service.Send)
}

func (h *Handler) Execute(c *gin.Context) {
	h.lifecycle(c, h.service.Execute)
}

func (h *Handler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid contract ID"))
		return
	}
	var req model.RejectContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	rejected, err := h.service.Reject(c.Request.Context(), handler.Actor(c), id, req.Reason)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rejected))
}

func (h *Handler) ResendForApproval(c *gin.Context) {
	h.lifecycleWithComment(c, h.service.ResendForApproval)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.lifecycleWithComment(c, h.service.Cancel)
}

func (h *Handler) lifecycle(c *gin.Context, op func(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Contract, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid contract ID"))
		return
	}
	updated, err := op(c.Request.Context(), handler.Actor(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) lifecycleWithComment(c *gin.Context, op func(ctx context.Context, actor model.Actor, id uuid.UUID, comment string) (*model.Contract, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid contract ID"))
		return
	}
	var req model.ContractCommentRequest
	_ = c.ShouldBindJSON(&req)
	updated, err := op(c.Request.Context(), handler.Actor(c), id, req.Comment)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}
