package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"delivery-service/controllers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setupRoutingRouter(upstreamURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rc := controllers.NewRoutingController(upstreamURL, zap.NewNop())
	r.GET("/route/v1/driving/*coordinates", rc.GetRoute)
	return r
}

func TestGetRoute_PassthroughSuccess(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/route/v1/driving/77.59,12.97;77.61,12.93", r.URL.Path)
		assert.Equal(t, "full", r.URL.Query().Get("overview"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":4210.3}]}`))
	}))
	defer upstream.Close()

	r := setupRoutingRouter(upstream.URL)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/route/v1/driving/77.59,12.97;77.61,12.93?overview=full", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"Ok"`)
}

func TestGetRoute_UpstreamErrorPassthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"InvalidQuery"}`))
	}))
	defer upstream.Close()

	r := setupRoutingRouter(upstream.URL)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/route/v1/driving/not-coordinates", nil)
	r.ServeHTTP(w, req)

	// Upstream errors pass through untouched rather than being remapped.
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidQuery")
}

func TestGetRoute_UpstreamTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer upstream.Close()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	rc := controllers.NewRoutingControllerWithTimeout(upstream.URL, 50*time.Millisecond, zap.NewNop())
	r.GET("/route/v1/driving/*coordinates", rc.GetRoute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/route/v1/driving/77.59,12.97;77.61,12.93", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "timed out")
}

func TestGetRoute_UpstreamUnreachable(t *testing.T) {
	r := setupRoutingRouter("http://127.0.0.1:1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/route/v1/driving/77.59,12.97;77.61,12.93", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
