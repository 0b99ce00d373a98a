package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avelichko/tourbooking/api"
	"github.com/avelichko/tourbooking/config"
	"github.com/avelichko/tourbooking/internal/service/booking"
	"github.com/avelichko/tourbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, catalogSvc catalog.CatalogUseCase, reservationSvc booking.ReservationUseCase) error {
	router := newRouter(logger, catalogSvc, reservationSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(logger *slog.Logger, catalogSvc catalog.CatalogUseCase, reservationSvc booking.ReservationUseCase) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	catalogHandler := api.NewCatalogHandler(catalogSvc, reservationSvc)
	catalogHandler.Register(router.Group("/activities"))
	catalogHandler.RegisterSlots(router.Group("/slots"))

	bookingHandler := api.NewBookingHandler(reservationSvc)
	bookingHandler.Register(router.Group("/bookings"))

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
