package api

import (
	"net/http"

	"github.com/avelichko/tourbooking/internal/service/booking"
	"github.com/avelichko/tourbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	service      catalog.CatalogUseCase
	availability booking.ReservationUseCase
}

func NewCatalogHandler(service catalog.CatalogUseCase, availability booking.ReservationUseCase) *CatalogHandler {
	return &CatalogHandler{service: service, availability: availability}
}

func (h *CatalogHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/slots", h.listSlots)
	router.GET("/:id/categories", h.listCategories)
}

// RegisterSlots mounts the per-slot availability endpoint.
func (h *CatalogHandler) RegisterSlots(router *gin.RouterGroup) {
	router.GET("/:id/availability", h.slotAvailability)
}

func (h *CatalogHandler) list(c *gin.Context) {
	activities, err := h.service.ListActivities(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (h *CatalogHandler) get(c *gin.Context) {
	activity, err := h.service.GetActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

func (h *CatalogHandler) listSlots(c *gin.Context) {
	slots, err := h.service.ListSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *CatalogHandler) listCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) slotAvailability(c *gin.Context) {
	availability, err := h.availability.Availability(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}
