package api

import (
	"net/http"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/customers"
	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	service customers.CustomerUseCase
}

type createCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
}

type customerResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
	Details string `json:"details"`
}

type customerDetailsResponse struct {
	customerResponse
	Bookings []bookingResponse `json:"bookings"`
}

func NewCustomerHandler(service customers.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{service: service}
}

func (h *CustomerHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.delete)
	router.GET("/:id/bookings", h.bookings)
}

func (h *CustomerHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponses(list))
}

func (h *CustomerHandler) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	customer, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	bookings, err := h.service.Bookings(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := customerDetailsResponse{customerResponse: toCustomerResponse(*customer)}
	resp.Details = customer.DetailsLong(bookings)
	resp.Bookings = toBookingResponses(bookings)
	c.JSON(http.StatusOK, resp)
}

func (h *CustomerHandler) create(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.service.Create(c.Request.Context(), customers.CreateCustomerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Balance: req.Balance,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(*customer))
}

func (h *CustomerHandler) delete(c *gin.Context) {
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

func (h *CustomerHandler) bookings(c *gin.Context) {
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

func toCustomerResponse(cu domain.Customer) customerResponse {
	return customerResponse{
		ID:      cu.ID,
		Name:    cu.Name,
		Phone:   cu.Phone,
		Email:   cu.Email,
		Balance: cu.Balance,
		Details: cu.DetailsShort(),
	}
}

func toCustomerResponses(list []domain.Customer) []customerResponse {
	out := make([]customerResponse, 0, len(list))
	for _, cu := range list {
		out = append(out, toCustomerResponse(cu))
	}
	return out
}
