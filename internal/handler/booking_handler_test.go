package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinlix/service-booking/internal/application"
	"github.com/clinlix/service-booking/pkg/auth"
	"github.com/clinlix/service-booking/pkg/domain"
)

func newBookingRouter(t *testing.T) (*gin.Engine, *auth.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	router := gin.New()
	NewBookingHandler(application.NewBookingService(application.BookingServiceDeps{})).
		RegisterRoutes(&router.RouterGroup, jwtManager)
	return router, jwtManager
}

func bearerToken(t *testing.T, jwtManager *auth.JWTManager, role string) string {
	t.Helper()
	token, err := jwtManager.GenerateAccessToken(uuid.New(), role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestDeclineBookingMalformedBodyRejected(t *testing.T) {
	router, jwtManager := newBookingRouter(t)

	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/bookings/"+uuid.New().String()+"/decline",
		strings.NewReader(`{"reason": `))
	req.Header.Set("Authorization", bearerToken(t, jwtManager, auth.RoleProvider))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestDeclineBookingEmptyBodyReportsMissingReason(t *testing.T) {
	router, jwtManager := newBookingRouter(t)

	// No body at all is tolerated by the bind; the absent reason is the error.
	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/bookings/"+uuid.New().String()+"/decline", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtManager, auth.RoleProvider))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.CodeMissingReason)
}

func TestCancelBookingMalformedBodyRejected(t *testing.T) {
	router, jwtManager := newBookingRouter(t)

	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/bookings/"+uuid.New().String()+"/cancel",
		strings.NewReader(`{"reason": "plans changed"`))
	req.Header.Set("Authorization", bearerToken(t, jwtManager, auth.RoleCustomer))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}
