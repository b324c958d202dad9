// Package prometheus implements C4's polling client: query with a
// declared-endpoint-first, then-namespace, then-default-namespace fallback
// chain (§4.4.4), grounded on the teacher's plain net/http repository
// style (no client library; Prometheus's HTTP API is simple enough that
// the teacher's own outbound-HTTP packages never reach for one either).
package prometheus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/intend-project/inserv-orch/internal/reporter/domain"
)

const queryTimeout = 10 * time.Second

// Client polls Prometheus's /api/v1/query endpoint.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a Prometheus polling Client.
func NewClient(logger *slog.Logger) *Client {
	return &Client{httpClient: &http.Client{Timeout: queryTimeout}, logger: logger}
}

var _ domain.PrometheusQuerier = (*Client)(nil)

// Query tries endpoint, then the namespace's in-cluster Prometheus
// service, then the default namespace's, returning the first successful
// response (§4.4.4). A well-formed empty vector is success, not an error.
func (c *Client) Query(ctx context.Context, q, endpoint, namespace string) (domain.Sample, error) {
	candidates := []string{endpoint}
	if namespace != "" {
		candidates = append(candidates, fmt.Sprintf("http://prometheus.%s.svc.cluster.local:9090/api/v1/query", namespace))
	}
	candidates = append(candidates, "http://prometheus.default.svc.cluster.local:9090/api/v1/query")

	var lastErr error
	for _, base := range candidates {
		if base == "" {
			continue
		}
		sample, err := c.queryOnce(ctx, q, base)
		if err == nil {
			return sample, nil
		}
		lastErr = err
		c.logger.Warn("prometheus query failed, trying fallback", "endpoint", base, "error", err)
	}
	return domain.Sample{}, fmt.Errorf("all prometheus endpoints failed: %w", lastErr)
}

func (c *Client) queryOnce(ctx context.Context, q, base string) (domain.Sample, error) {
	reqURL := base
	if !hasQueryPath(base) {
		reqURL = base + "/api/v1/query"
	}
	u, err := url.Parse(reqURL)
	if err != nil {
		return domain.Sample{}, fmt.Errorf("parsing prometheus url: %w", err)
	}
	qs := u.Query()
	qs.Set("query", q)
	u.RawQuery = qs.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Sample{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Sample{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Sample{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Sample{}, fmt.Errorf("prometheus returned status %d", resp.StatusCode)
	}

	return parseVectorResponse(body)
}

func hasQueryPath(base string) bool {
	return len(base) >= len("/api/v1/query") && base[len(base)-len("/api/v1/query"):] == "/api/v1/query"
}

type promResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string `json:"resultType"`
		Result     []struct {
			Value [2]interface{} `json:"value"`
		} `json:"result"`
	} `json:"data"`
}

func parseVectorResponse(body []byte) (domain.Sample, error) {
	var parsed promResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.Sample{}, fmt.Errorf("decoding prometheus response: %w", err)
	}
	if parsed.Status != "success" {
		return domain.Sample{}, fmt.Errorf("prometheus query status %q", parsed.Status)
	}
	if parsed.Data.ResultType != "vector" {
		return domain.Sample{}, fmt.Errorf("unexpected prometheus result type %q", parsed.Data.ResultType)
	}
	if len(parsed.Data.Result) == 0 {
		return domain.Sample{HasSample: false}, nil
	}

	raw := parsed.Data.Result[0].Value
	ts, ok := toFloat(raw[0])
	if !ok {
		return domain.Sample{}, fmt.Errorf("malformed prometheus timestamp")
	}
	valStr, ok := raw[1].(string)
	if !ok {
		return domain.Sample{}, fmt.Errorf("malformed prometheus value")
	}
	value, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return domain.Sample{}, fmt.Errorf("parsing prometheus value: %w", err)
	}

	return domain.Sample{Value: value, Timestamp: int64(ts), HasSample: true}, nil
}

func toFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
