package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveTelegramAuth(t *testing.T) {
	before := testutil.ToFloat64(telegramAttempts.WithLabelValues("stale_auth_data"))
	ObserveTelegramAuth("stale_auth_data")
	ObserveTelegramAuth("stale_auth_data")
	require.Equal(t, before+2, testutil.ToFloat64(telegramAttempts.WithLabelValues("stale_auth_data")))
}

func TestGin_RecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Gin())
	r.GET("/users/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	counter := httpRequests.WithLabelValues("GET", "/users/:id", "418")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	require.Equal(t, http.StatusTeapot, w.Code)
	require.Equal(t, before+1, testutil.ToFloat64(counter))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestHandler_Exposes(t *testing.T) {
	ObserveTelegramAuth("accepted")
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "gamefi_auth_telegram_attempts_total")
}
