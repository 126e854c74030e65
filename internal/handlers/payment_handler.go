package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcore/internal/models"
	"shopcore/internal/services"
)

type PaymentHandler struct {
	payments services.PaymentService
	orders   services.OrderService
}

func NewPaymentHandler(payments services.PaymentService, orders services.OrderService) *PaymentHandler {
	return &PaymentHandler{payments: payments, orders: orders}
}

type createPaymentRequest struct {
	OrderID   string  `json:"order_id" binding:"required"`
	Gateway   string  `json:"gateway" binding:"required"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Reference string  `json:"reference"`
}

type paymentTransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Only the order owner or staff may open a payment against it.
	userID, isStaff := currentUser(c)
	order, err := h.orders.GetOrder(req.OrderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if order == nil || (order.UserID != userID && !isStaff) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	p := &models.Payment{
		OrderID:   req.OrderID,
		Gateway:   req.Gateway,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Reference: req.Reference,
	}
	if err := h.payments.CreatePayment(p); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	p, err := h.payments.GetPayment(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) ListByOrder(c *gin.Context) {
	payments, err := h.payments.ListByOrder(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	payments, err := h.payments.ListPayments(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payments)
}

// Transition applies a gateway callback or a manual status change.
func (h *PaymentHandler) Transition(c *gin.Context) {
	var req paymentTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.payments.Transition(c.Param("id"), req.Status)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "payment updated", "status": req.Status})
	case errors.Is(err, services.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
