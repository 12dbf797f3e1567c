package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/kungpiyaphon/note-app-api/pkg/metrics"
)

func TestRequestMetrics_CountsByMethodAndStatus(t *testing.T) {
	r := gin.New()
	r.Use(RequestMetrics())
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.POST("/missing", func(c *gin.Context) { c.JSON(404, gin.H{"error": true}) })

	okBefore := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "200"))
	missBefore := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("POST", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ok", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest("POST", "/missing", nil))

	require.Equal(t, okBefore+1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "200")))
	require.Equal(t, missBefore+1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("POST", "404")))
}
