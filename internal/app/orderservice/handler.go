package orderservice

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"quickeats/internal/shared/postgres"
)

// Handler adapts the HTTP API to the order service.
type Handler struct {
	svc *Service
	log *logrus.Entry
}

// NewHandler wires the HTTP handler.
func NewHandler(svc *Service, log *logrus.Entry) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts the order routes.
func (h *Handler) Register(router *gin.Engine) {
	router.POST("/api/orders", h.placeOrder)
	router.GET("/api/orders/:id", h.getOrder)
	router.PUT("/api/orders/:id/status", h.updateStatus)
}

type placeOrderRequest struct {
	UserID          int64           `json:"userId"`
	RestaurantID    int64           `json:"restaurantId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	DeliveryAddress string          `json:"deliveryAddress"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	order, err := h.svc.PlaceOrder(c.Request.Context(), PlaceOrderCommand{
		UserID:          req.UserID,
		RestaurantID:    req.RestaurantID,
		TotalAmount:     req.TotalAmount,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOrder) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.WithField("action", "place_order_failed").WithError(err).Error("place order failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, orderView(order))
}

func (h *Handler) getOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order id must be numeric"})
		return
	}

	order, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		h.log.WithField("action", "get_order_failed").WithError(err).Error("get order failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, orderView(order))
}

func (h *Handler) updateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order id must be numeric"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, orderView(order))
	case errors.Is(err, postgres.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": "order was updated concurrently, retry"})
	default:
		h.log.WithField("action", "update_status_failed").WithError(err).Error("update status failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func orderView(order *postgres.Order) gin.H {
	return gin.H{
		"id":              order.ID,
		"userId":          order.UserID,
		"restaurantId":    order.RestaurantID,
		"totalAmount":     order.TotalAmount,
		"status":          order.Status,
		"deliveryAddress": order.DeliveryAddress,
		"createdAt":       order.CreatedAt,
		"updatedAt":       order.UpdatedAt,
	}
}
