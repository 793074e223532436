package handlers

import (
	"net/http"

	"ninthwaka_backend/internal/services"
	"ninthwaka_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// CreateOrder handles POST /orders (customer).
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, gin.H{"order": order})
}

// GetOrderByID handles GET /orders/:id.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderByID(actor, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"order": order})
}

// GetMyOrders handles GET /orders/mine: the caller's own orders (all orders for admins).
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	orders, err := h.orderService.GetMyOrders(actor, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{
		"orders":    orders,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetAvailableOrders handles GET /orders/available (rider).
func (h *OrderHandler) GetAvailableOrders(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	orders, err := h.orderService.GetAvailableOrders(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"orders": orders})
}

// AcceptOrder handles PATCH /orders/:id/accept (rider).
func (h *OrderHandler) AcceptOrder(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.AcceptOrder(actor, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"order": order})
}

// AdvanceOrder handles PATCH /orders/:id/status with an action payload.
func (h *OrderHandler) AdvanceOrder(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.AdvanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.orderService.AdvanceOrder(actor, orderID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"order": order})
}

// IssueDeliveryOTP handles POST /orders/:id/delivery/otp (rider at the door).
func (h *OrderHandler) IssueDeliveryOTP(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.IssueDeliveryOTP(actor, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"order": order})
}

// VerifyDeliveryOTP handles POST /orders/:id/delivery/verify.
func (h *OrderHandler) VerifyDeliveryOTP(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.orderService.VerifyDeliveryOTP(actor, orderID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"order": order})
}

// UpdateDeliveryProof handles PATCH /orders/:id/delivery.
func (h *OrderHandler) UpdateDeliveryProof(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.DeliveryProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.orderService.UpdateDeliveryProof(actor, orderID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"order": order})
}
