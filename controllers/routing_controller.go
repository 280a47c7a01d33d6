package controllers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"delivery-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultRoutingTimeout = 15 * time.Second

// RoutingController proxies route computation requests to an OSRM-compatible
// upstream. The upstream response passes through untouched, success or
// error; this service adds nothing to the routing result.
type RoutingController struct {
	upstreamURL string
	client      *http.Client
	logger      *zap.Logger
}

// NewRoutingController creates a proxy against upstreamURL, e.g.
// "http://router.project-osrm.org".
func NewRoutingController(upstreamURL string, logger *zap.Logger) *RoutingController {
	return NewRoutingControllerWithTimeout(upstreamURL, defaultRoutingTimeout, logger)
}

// NewRoutingControllerWithTimeout creates a proxy with an explicit bound
// on the upstream call.
func NewRoutingControllerWithTimeout(upstreamURL string, timeout time.Duration, logger *zap.Logger) *RoutingController {
	return &RoutingController{
		upstreamURL: upstreamURL,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// GetRoute handles GET /route/v1/driving/*coordinates
func (rc *RoutingController) GetRoute(ctx *gin.Context) {
	coordinates := ctx.Param("coordinates")

	target, err := url.Parse(rc.upstreamURL + "/route/v1/driving" + coordinates)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route path"})
		return
	}
	target.RawQuery = ctx.Request.URL.RawQuery

	req, err := http.NewRequestWithContext(ctx.Request.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build upstream request"})
		return
	}

	resp, err := rc.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			rc.logger.Warn("Routing upstream timed out", zap.String("url", target.String()))
			svcErr := services.NewUpstreamTimeoutError("Routing upstream timed out", err)
			ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
			return
		}
		rc.logger.Error("Routing upstream request failed", zap.Error(err))
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Routing upstream unreachable"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to read upstream response"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	ctx.Data(resp.StatusCode, contentType, body)
}
