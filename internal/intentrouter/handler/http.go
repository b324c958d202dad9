// Package handler exposes C2 over HTTP, the same gin.Context-handling
// shape the teacher's project/handler.Handler takes: bind request,
// delegate to the service, translate its outcome into a status+body pair.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/intend-project/inserv-orch/internal/intentrouter/domain"
	"github.com/intend-project/inserv-orch/internal/logging"
)

const routeTimeout = 30 * time.Second

// Handler handles the inbound TMF-921 intent endpoint.
type Handler struct {
	service domain.Service
	logger  *logging.StructuredLogger
}

// NewHandler builds the Intent Router HTTP handler.
func NewHandler(service domain.Service, logger *logging.StructuredLogger) *Handler {
	return &Handler{service: service, logger: logger}
}

type wireExpression struct {
	Type            string `json:"@type" binding:"required"`
	ExpressionValue string `json:"expressionValue" binding:"required"`
}

type wireIntentRequest struct {
	Type        string         `json:"@type" binding:"required"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Priority    string         `json:"priority"`
	Context     interface{}    `json:"context"`
	Expression  wireExpression `json:"expression" binding:"required"`
}

// CreateIntent implements POST /tmf-api/intentManagement/v5/intent (§6).
func (h *Handler) CreateIntent(c *gin.Context) {
	var body wireIntentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid TMF intent payload: " + err.Error()})
		return
	}

	datacenterID := c.Query("datacenter")
	if datacenterID == "" {
		datacenterID = extractDataCenterFromContext(body.Context)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), routeTimeout)
	defer cancel()

	result, err := h.service.Route(ctx, domain.IntentRequest{
		Type:        body.Type,
		Name:        body.Name,
		Description: body.Description,
		Priority:    body.Priority,
		TurtleBody:  body.Expression.ExpressionValue,
	}, datacenterID)

	if err != nil {
		status, payload := mapRouteError(err)
		h.logger.Error(ctx, "intent routing failed", err)
		c.JSON(status, payload)
		return
	}

	c.JSON(result.StatusCode, result.Body)
}

func extractDataCenterFromContext(raw interface{}) string {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return ""
	}
	if dc, ok := m["DataCenter"].(string); ok {
		return dc
	}
	if dc, ok := m["datacenter"].(string); ok {
		return dc
	}
	return ""
}

// mapRouteError implements §7's error-kind-to-status mapping.
func mapRouteError(err error) (int, gin.H) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, domain.ErrDownstreamTimeout):
		return http.StatusGatewayTimeout, gin.H{"error": "downstream handler timed out"}
	case errors.Is(err, domain.ErrDownstreamUnavailable):
		return http.StatusServiceUnavailable, gin.H{"error": "downstream handler unreachable"}
	case errors.Is(err, domain.ErrGraphUnavailable):
		return http.StatusServiceUnavailable, gin.H{"error": "GraphDB unavailable"}
	case errors.Is(err, domain.ErrDataCenterNotFound):
		return http.StatusInternalServerError, gin.H{"error": "DataCenter not found in infrastructure data"}
	case errors.Is(err, domain.ErrSplitFailed):
		return http.StatusBadRequest, gin.H{"error": "failed to split combined intent"}
	default:
		return http.StatusInternalServerError, gin.H{"error": err.Error()}
	}
}
