package api

import (
	"net/http"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type createFlightRequest struct {
	FlightNumber  string `json:"flight_number"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	Seats         int    `json:"seats"`
	Price         int64  `json:"price"`
}

type flightResponse struct {
	ID            int64  `json:"id"`
	FlightNumber  string `json:"flight_number"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	Seats         int    `json:"seats"`
	Price         int64  `json:"price"`
	Details       string `json:"details"`
}

type flightDetailsResponse struct {
	flightResponse
	Passengers []customerResponse `json:"passengers"`
}

type quoteResponse struct {
	FlightID int64 `json:"flight_id"`
	Price    int64 `json:"price"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.delete)
	router.GET("/:id/bookings", h.bookings)
	router.GET("/:id/quote", h.quote)
}

// list returns flights that have not departed; ?all=true includes departed ones.
func (h *FlightHandler) list(c *gin.Context) {
	list := h.service.ListActive
	if c.Query("all") == "true" {
		list = h.service.ListAll
	}

	flights, err := list(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(flights))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	passengers, err := h.service.Passengers(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := flightDetailsResponse{flightResponse: toFlightResponse(*flight)}
	resp.Details = flight.DetailsLong(passengers)
	resp.Passengers = toCustomerResponses(passengers)
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	departure, ok := parseOptionalDate(c, "departure_date", req.DepartureDate)
	if !ok {
		return
	}

	flight, err := h.service.Create(c.Request.Context(), flights.CreateFlightInput{
		FlightNumber:  req.FlightNumber,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: departure,
		Seats:         req.Seats,
		Price:         req.Price,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(*flight))
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	removed, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "cancelled_bookings": toBookingResponses(removed)})
}

func (h *FlightHandler) bookings(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	bookings, err := h.service.Bookings(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *FlightHandler) quote(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	price, err := h.service.Quote(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse{FlightID: id, Price: price})
}

func toFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		ID:            f.ID,
		FlightNumber:  f.FlightNumber,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureDate: f.DepartureDate.Format(domain.DateLayout),
		Seats:         f.Seats,
		Price:         f.Price,
		Details:       f.DetailsShort(),
	}
}

func toFlightResponses(flights []domain.Flight) []flightResponse {
	out := make([]flightResponse, 0, len(flights))
	for _, f := range flights {
		out = append(out, toFlightResponse(f))
	}
	return out
}
