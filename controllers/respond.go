package controllers

import (
	"errors"
	"net/http"
	"time"

	"nutribalance/middlewares"
	"nutribalance/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// respondError maps service errors onto status codes. Unexpected errors are
// logged and answered with the fallback message only.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUpstream):
		log.Warn().Err(err).Str("path", c.FullPath()).Msg(fallback)
		c.JSON(http.StatusBadGateway, gin.H{"error": fallback})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func userID(c *gin.Context) string { return c.GetString(middlewares.UserIDKey) }

// idParam parses the :id path parameter, answering 400 when it is not a uuid.
func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// parseTimeQuery accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
// A plain date means UTC midnight, or the last instant of that day when
// endOfDay is set. Empty yields nil.
func parseTimeQuery(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
	return nil, false
}
