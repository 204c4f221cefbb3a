package bootstrap

import (
	"net/http"

	"github.com/Domenick1991/flightledger/api"
	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/service/booking"
	"github.com/Domenick1991/flightledger/internal/service/customers"
	"github.com/Domenick1991/flightledger/internal/service/flights"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

const swaggerDocURL = "/swagger/ledger.swagger.json"

type Services struct {
	Flights   flights.FlightUseCase
	Customers customers.CustomerUseCase
	Bookings  booking.BookingUseCase
}

// NewRouter mounts the ledger API under /api/v1 and, when a swagger
// directory is configured, the API docs under /docs.
func NewRouter(cfg *config.Config, svcs Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	api.NewFlightHandler(svcs.Flights).Register(v1.Group("/flights"))
	api.NewCustomerHandler(svcs.Customers).Register(v1.Group("/customers"))
	api.NewBookingHandler(svcs.Bookings).Register(v1.Group("/bookings"))

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerDocURL))))
	}

	return router
}
