package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcore/internal/models"
	"shopcore/internal/repositories"
	"shopcore/internal/services"
)

type OrderHandler struct {
	orders   services.OrderService
	invoices services.InvoiceRenderer
}

func NewOrderHandler(orders services.OrderService, invoices services.InvoiceRenderer) *OrderHandler {
	return &OrderHandler{orders: orders, invoices: invoices}
}

type placeOrderRequest struct {
	Items []services.OrderItemInput `json:"items" binding:"required,min=1,dive"`

	BillingFirstName string          `json:"billing_first_name" binding:"required"`
	BillingLastName  string          `json:"billing_last_name" binding:"required"`
	BillingEmail     string          `json:"billing_email" binding:"required,email"`
	BillingPhone     string          `json:"billing_phone"`
	BillingAddress   json.RawMessage `json:"billing_address" binding:"required"`

	ShippingFirstName string          `json:"shipping_first_name"`
	ShippingLastName  string          `json:"shipping_last_name"`
	ShippingAddress   json.RawMessage `json:"shipping_address"`

	TaxAmount  float64 `json:"tax_amount"`
	ShipAmount float64 `json:"shipping_amount"`
	Discount   float64 `json:"discount_amount"`
	Notes      string  `json:"notes"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary      Place an order
// @Description  Prices the items from the catalog, reserves stock and queues the confirmation email
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        order  body      placeOrderRequest  true  "Order payload"
// @Success      201    {object}  models.Order
// @Failure      400    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Router       /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	userID, _ := currentUser(c)

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := &models.Order{
		UserID:            userID,
		TaxAmount:         req.TaxAmount,
		ShipAmount:        req.ShipAmount,
		Discount:          req.Discount,
		BillingFirstName:  req.BillingFirstName,
		BillingLastName:   req.BillingLastName,
		BillingEmail:      req.BillingEmail,
		BillingPhone:      req.BillingPhone,
		BillingAddress:    req.BillingAddress,
		ShippingFirstName: req.ShippingFirstName,
		ShippingLastName:  req.ShippingLastName,
		ShippingAddress:   req.ShippingAddress,
		Notes:             req.Notes,
	}
	if order.ShippingFirstName == "" {
		order.ShippingFirstName = order.BillingFirstName
		order.ShippingLastName = order.BillingLastName
	}
	if len(order.ShippingAddress) == 0 {
		order.ShippingAddress = order.BillingAddress
	}

	err := h.orders.PlaceOrder(order, req.Items)
	switch {
	case err == nil:
		log.Printf("[order][place] created order=%s user=%d total=%.2f", order.OrderNumber, userID, order.TotalAmount)
		c.JSON(http.StatusCreated, order)
	case errors.Is(err, repositories.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock"})
	case errors.Is(err, services.ErrVariantNotFound), errors.Is(err, services.ErrEmptyOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[order][place] failed user=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order failed"})
	}
}

// getAuthorized loads the order and enforces that only the owner or staff can
// see it.
func (h *OrderHandler) getAuthorized(c *gin.Context) *models.Order {
	order, err := h.orders.GetOrder(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil
	}
	userID, isStaff := currentUser(c)
	if order == nil || (order.UserID != userID && !isStaff) {
		// Hide existence from non-owners.
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return nil
	}
	return order
}

func (h *OrderHandler) Get(c *gin.Context) {
	if order := h.getAuthorized(c); order != nil {
		c.JSON(http.StatusOK, order)
	}
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, _ := currentUser(c)
	limit, offset := pagination(c)
	orders, err := h.orders.ListOrdersByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListAll(c *gin.Context) {
	limit, offset := pagination(c)
	orders, err := h.orders.ListOrders(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// @Summary      Download the order invoice
// @Tags         Orders
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path  string  true  "Order id"
// @Success      200
// @Router       /orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	order := h.getAuthorized(c)
	if order == nil {
		return
	}
	path, err := h.invoices.Generate(order)
	if err != nil {
		log.Printf("[order][invoice] render failed order=%s: %v", order.OrderNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invoice generation failed"})
		return
	}
	c.FileAttachment(path, "invoice_"+order.OrderNumber+".pdf")
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.orders.UpdateStatus(c.Param("id"), req.Status)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "status updated", "status": req.Status})
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
