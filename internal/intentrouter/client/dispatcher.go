// Package client implements the outbound half of C2: posting a classified
// sub-intent to its downstream handler as plain JSON over net/http,
// following the teacher's repository-package convention of wrapping
// *http.Client directly rather than pulling in a REST framework for
// outbound calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/intend-project/inserv-orch/internal/intentrouter/domain"
)

// Dispatcher posts a classified sub-intent downstream (§5: 30s total
// timeout; timeout → 504, connection error → 503 per §7).
type Dispatcher struct {
	httpClient *http.Client
}

// NewDispatcher builds a Dispatcher with the given total per-call timeout.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	return &Dispatcher{httpClient: &http.Client{Timeout: timeout}}
}

var _ domain.DownstreamDispatcher = (*Dispatcher)(nil)

type wireIntent struct {
	Type       string         `json:"@type"`
	Name       string         `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Priority   string         `json:"priority,omitempty"`
	Expression wireExpression `json:"expression"`
}

type wireExpression struct {
	Type            string `json:"@type"`
	ExpressionValue string `json:"expressionValue"`
}

// Dispatch posts req's Turtle body to baseURL + "/intent" as the TMF-921
// JSON envelope (§6), mapping transport failures per §7.
func (d *Dispatcher) Dispatch(ctx context.Context, baseURL string, req domain.IntentRequest) (int, map[string]interface{}, error) {
	payload := wireIntent{
		Type:        "Intent",
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		Expression: wireExpression{
			Type:            "TurtleExpression",
			ExpressionValue: req.TurtleBody,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshaling outbound intent: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/intent", bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("building outbound request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, nil, domain.ErrDownstreamTimeout
		}
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrDownstreamUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading downstream response: %w", err)
	}

	var decoded map[string]interface{}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			decoded = map[string]interface{}{"raw": string(respBody)}
		}
	}

	return resp.StatusCode, decoded, nil
}
