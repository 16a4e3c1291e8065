package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutribalance/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestRespondErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: bad age", models.ErrValidation), http.StatusBadRequest},
		{models.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("meal: %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("s3: %w", models.ErrUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("edamam: %w", models.ErrUpstream), http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, w := testContext("/")
		respondError(c, tc.err, "Something failed")
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	c, w := testContext("/")
	respondError(c, errors.New("pq: password authentication failed"), "Failed to fetch meals")
	assert.JSONEq(t, `{"error":"Failed to fetch meals"}`, w.Body.String())
}

func TestParseTimeQuery(t *testing.T) {
	c, _ := testContext("/?from=2026-03-10&to=2026-03-10&at=2026-03-10T08:30:00Z")

	from, ok := parseTimeQuery(c, "from", false)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), *from)

	to, ok := parseTimeQuery(c, "to", true)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 10, 23, 59, 59, 999999999, time.UTC), *to)

	at, ok := parseTimeQuery(c, "at", true)
	require.True(t, ok)
	assert.Equal(t, 8, at.Hour())

	missing, ok := parseTimeQuery(c, "missing", false)
	assert.True(t, ok)
	assert.Nil(t, missing)
}

func TestParseTimeQueryRejectsGarbage(t *testing.T) {
	c, w := testContext("/?date=tomorrow")
	_, ok := parseTimeQuery(c, "date", false)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid date"}`, w.Body.String())
}

func TestIDParam(t *testing.T) {
	c, w := testContext("/")
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	_, ok := idParam(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
