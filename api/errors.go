package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case ledger.IsConflict(err):
		return http.StatusConflict
	case ledger.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// parseOptionalDate returns the zero time for an empty string.
func parseOptionalDate(c *gin.Context, field, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	parsed, err := domain.ParseDate(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + field + ": expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return parsed, true
}
