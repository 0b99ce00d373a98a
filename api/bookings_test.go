package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avelichko/tourbooking/internal/domain"
	"github.com/avelichko/tourbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) Reserve(ctx context.Context, input booking.ReserveInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockReservationUseCase) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockReservationUseCase) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockReservationUseCase) Availability(ctx context.Context, slotID string) (booking.SlotAvailability, error) {
	args := m.Called(ctx, slotID)
	return args.Get(0).(booking.SlotAvailability), args.Error(1)
}

func (m *MockReservationUseCase) CancelExpiredBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func validCreateBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"slot_id":     "slot-1",
		"activity_id": "act-1",
		"items": []map[string]any{
			{"category_id": "cat-adult", "quantity": 2},
		},
		"contact": map[string]any{
			"name":  "Test",
			"email": "test@example.com",
		},
	})
	return body
}

func newCreateContext(t *testing.T, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := newCreateContext(t, validCreateBody())

	result := &domain.Booking{
		ID:         "booking-1",
		Status:     domain.BookingStatusConfirmed,
		TotalCents: 2000,
		Items: []domain.LineItem{
			{CategoryID: "cat-adult", SlotID: "slot-1", Quantity: 2, UnitPriceCents: 1000},
		},
	}
	mockService.On("Reserve", c.Request.Context(), mock.AnythingOfType("booking.ReserveInput")).Return(result, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "booking-1", resp.ID)
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, "20.00", resp.TotalPrice)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(1000), resp.Items[0].UnitPriceCents)
}

func TestBookingHandler_create_InvalidPayload(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	body, _ := json.Marshal(map[string]any{
		"slot_id":     "slot-1",
		"activity_id": "act-1",
		"items": []map[string]any{
			{"category_id": "cat-adult", "quantity": 0},
		},
		"contact": map[string]any{"name": "Test", "email": "test@example.com"},
	})
	c, w := newCreateContext(t, body)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}

func TestBookingHandler_create_CapacityExceeded(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := newCreateContext(t, validCreateBody())

	capErr := &domain.CapacityError{SlotID: "slot-1", Requested: 2, Remaining: 1}
	mockService.On("Reserve", c.Request.Context(), mock.AnythingOfType("booking.ReserveInput")).Return(nil, capErr)

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["remaining"])
}

func TestBookingHandler_create_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"slot not found", domain.ErrSlotNotFound, http.StatusNotFound},
		{"unknown category", domain.ErrUnknownCategory, http.StatusUnprocessableEntity},
		{"retry exhausted", domain.ErrRetryExhausted, http.StatusServiceUnavailable},
		{"storage failure", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockReservationUseCase{}
			handler := NewBookingHandler(mockService)
			c, w := newCreateContext(t, validCreateBody())

			mockService.On("Reserve", c.Request.Context(), mock.AnythingOfType("booking.ReserveInput")).Return(nil, tc.err)

			handler.create(c)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/bookings/booking-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "booking-1"}}

	result := &domain.Booking{ID: "booking-1", Status: domain.BookingStatusCancelled}
	mockService.On("CancelBooking", c.Request.Context(), "booking-1").Return(result, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CANCELLED", resp.Status)
}

func TestBookingHandler_get_NotFound(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings/no-such", nil)
	c.Params = gin.Params{{Key: "id", Value: "no-such"}}

	mockService.On("GetBooking", c.Request.Context(), "no-such").Return(nil, domain.ErrBookingNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
