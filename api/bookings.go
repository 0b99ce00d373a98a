package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/avelichko/tourbooking/internal/domain"
	"github.com/avelichko/tourbooking/internal/money"
	"github.com/avelichko/tourbooking/internal/pricing"
	"github.com/avelichko/tourbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.ReservationUseCase
}

type createBookingItem struct {
	CategoryID string `json:"category_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
}

type contactRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

type createBookingRequest struct {
	SlotID     string              `json:"slot_id" binding:"required"`
	ActivityID string              `json:"activity_id" binding:"required"`
	Items      []createBookingItem `json:"items" binding:"required,min=1,dive"`
	Contact    contactRequest      `json:"contact" binding:"required"`
}

type lineItemResponse struct {
	CategoryID     string `json:"category_id"`
	SlotID         string `json:"slot_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	UnitPrice      string `json:"unit_price"`
}

type bookingResponse struct {
	ID         string             `json:"id"`
	Status     string             `json:"status"`
	TotalCents int64              `json:"total_cents"`
	TotalPrice string             `json:"total_price"`
	Items      []lineItemResponse `json:"items"`
	ExpiresAt  string             `json:"expires_at,omitempty"`
	CreatedAt  string             `json:"created_at"`
}

func NewBookingHandler(service booking.ReservationUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]pricing.RequestedItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, pricing.RequestedItem{CategoryID: it.CategoryID, Quantity: it.Quantity})
	}

	result, err := h.service.Reserve(c.Request.Context(), booking.ReserveInput{
		SlotID:     req.SlotID,
		ActivityID: req.ActivityID,
		Items:      items,
		Contact: domain.Contact{
			Name:  req.Contact.Name,
			Email: req.Contact.Email,
			Phone: req.Contact.Phone,
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(result))
}

func (h *BookingHandler) get(c *gin.Context) {
	result, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(result))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	result, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(result))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:         b.ID,
		Status:     string(b.Status),
		TotalCents: b.TotalCents,
		TotalPrice: money.FormatCents(b.TotalCents),
		Items:      make([]lineItemResponse, 0, len(b.Items)),
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
	}
	if !b.ExpiresAt.IsZero() {
		resp.ExpiresAt = b.ExpiresAt.Format(time.RFC3339)
	}
	for _, item := range b.Items {
		resp.Items = append(resp.Items, lineItemResponse{
			CategoryID:     item.CategoryID,
			SlotID:         item.SlotID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			UnitPrice:      money.FormatCents(item.UnitPriceCents),
		})
	}
	return resp
}

// writeError maps the reservation error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var capErr *domain.CapacityError
	if errors.As(err, &capErr) {
		c.JSON(http.StatusConflict, gin.H{"error": capErr.Error(), "remaining": capErr.Remaining})
		return
	}

	switch {
	case errors.Is(err, domain.ErrSlotNotFound),
		errors.Is(err, domain.ErrActivityNotFound),
		errors.Is(err, domain.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrInvalidQuantity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRetryExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
