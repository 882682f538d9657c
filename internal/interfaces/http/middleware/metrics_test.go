package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method string
	route  string
	status int
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []observation
}

func (f *fakeRecorder) ObserveServerRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, observation{method, route, status})
}

func TestHTTPMetrics(t *testing.T) {
	rec := &fakeRecorder{}
	router := gin.New()
	router.Use(HTTPMetrics(rec))
	router.GET("/api/backgroundjobs/:id/status", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/backgroundjobs/abc/status", nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	require.Len(t, rec.seen, 2)
	assert.Equal(t, observation{"GET", "/api/backgroundjobs/:id/status", 200}, rec.seen[0], "labels use the route pattern")
	assert.Equal(t, observation{"GET", "unknown", 404}, rec.seen[1])
}

func TestHTTPMetrics_NilRecorder(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(nil))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
