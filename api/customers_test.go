package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/service/customers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerHandler_create(t *testing.T) {
	mockService := &MockCustomerUseCase{}
	handler := NewCustomerHandler(mockService)

	c, w := newTestContext("POST", "/customers", `{"name":"John Doe","phone":"555-0100","email":"john@example.com"}`)
	input := customers.CreateCustomerInput{Name: "John Doe", Phone: "555-0100", Email: "john@example.com"}
	mockService.On("Create", c.Request.Context(), input).
		Return(&domain.Customer{ID: 1, Name: "John Doe", Phone: "555-0100", Email: "john@example.com"}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp customerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Customer #1 - John Doe - 555-0100 - john@example.com", resp.Details)

	mockService.AssertExpectations(t)
}

func TestCustomerHandler_createInvalid(t *testing.T) {
	mockService := &MockCustomerUseCase{}
	handler := NewCustomerHandler(mockService)

	c, w := newTestContext("POST", "/customers", `{"name":""}`)
	mockService.On("Create", c.Request.Context(), customers.CreateCustomerInput{}).
		Return(nil, ledger.ValidationError{Field: "name", Message: "is required"})

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "name")
}

func TestCustomerHandler_get(t *testing.T) {
	mockService := &MockCustomerUseCase{}
	handler := NewCustomerHandler(mockService)

	c, w := newTestContext("GET", "/customers/1", "")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	bookings := []domain.Booking{{ID: 4, CustomerID: 1, FlightID: 2, BookingDate: departure, Price: 300}}
	mockService.On("GetByID", c.Request.Context(), int64(1)).Return(&domain.Customer{ID: 1, Name: "John Doe"}, nil)
	mockService.On("Bookings", c.Request.Context(), int64(1)).Return(bookings, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp customerDetailsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "2024-03-01", resp.Bookings[0].BookingDate)
	assert.Contains(t, resp.Details, "Booking #4")

	mockService.AssertExpectations(t)
}

func TestCustomerHandler_delete(t *testing.T) {
	mockService := &MockCustomerUseCase{}
	handler := NewCustomerHandler(mockService)

	c, w := newTestContext("DELETE", "/customers/7", "")
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	mockService.On("Delete", c.Request.Context(), int64(7)).
		Return([]domain.Booking(nil), &ledger.Error{Kind: ledger.ErrNotFound, Entity: ledger.EntityCustomer, ID: 7})

	handler.delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = newTestContext("GET", "/customers", "")
	mockService.On("List", c.Request.Context()).Return([]domain.Customer(nil), errors.New("boom"))

	handler.list(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	mockService.AssertExpectations(t)
}
