package api

import (
	"net/http"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	CustomerID int64 `json:"customer_id"`
	FlightID   int64 `json:"flight_id"`
	// Date is YYYY-MM-DD; empty books for the ledger's reference date.
	Date string `json:"date"`
}

type rebookRequest struct {
	Date string `json:"date" binding:"required"`
}

type editBookingRequest struct {
	CustomerID int64  `json:"customer_id" binding:"required"`
	FlightID   int64  `json:"flight_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
}

type bookingResponse struct {
	ID          int64  `json:"id"`
	CustomerID  int64  `json:"customer_id"`
	FlightID    int64  `json:"flight_id"`
	BookingDate string `json:"booking_date"`
	Price       int64  `json:"price"`
	Details     string `json:"details"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.create)
	router.DELETE("/", h.cancel)
	router.PATCH("/", h.edit)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.rebook)
}

// list returns every booking, or the single booking of
// ?customer_id=&flight_id= when both are given.
func (h *BookingHandler) list(c *gin.Context) {
	if c.Query("customer_id") != "" || c.Query("flight_id") != "" {
		h.find(c)
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) find(c *gin.Context) {
	customerID, ok := queryID(c, "customer_id")
	if !ok {
		return
	}
	flightID, ok := queryID(c, "flight_id")
	if !ok {
		return
	}
	b, err := h.service.FindBooking(c.Request.Context(), customerID, flightID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, ok := parseOptionalDate(c, "date", req.Date)
	if !ok {
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		CustomerID: req.CustomerID,
		FlightID:   req.FlightID,
		Date:       date,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(*b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	customerID, ok := queryID(c, "customer_id")
	if !ok {
		return
	}
	flightID, ok := queryID(c, "flight_id")
	if !ok {
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), customerID, flightID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func (h *BookingHandler) rebook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req rebookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, ok := parseOptionalDate(c, "date", req.Date)
	if !ok {
		return
	}

	b, err := h.service.RebookBooking(c.Request.Context(), id, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func (h *BookingHandler) edit(c *gin.Context) {
	var req editBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, ok := parseOptionalDate(c, "date", req.Date)
	if !ok {
		return
	}

	b, err := h.service.EditBooking(c.Request.Context(), req.CustomerID, req.FlightID, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		FlightID:    b.FlightID,
		BookingDate: b.BookingDate.Format(domain.DateLayout),
		Price:       b.Price,
		Details:     b.DetailsShort(),
	}
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}
