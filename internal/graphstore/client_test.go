package graphstore_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intend-project/inserv-orch/internal/config"
	"github.com/intend-project/inserv-orch/internal/graphstore"
	"github.com/intend-project/inserv-orch/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, server *httptest.Server) *graphstore.Client {
	t.Helper()
	logger := logging.NewStructuredLogger(&logging.LoggerConfig{Component: "graphstore_test"})
	cfg := &config.GraphDBConfig{
		URL:        server.URL,
		Repository: "intentDataEU",
	}
	return graphstore.NewClient(cfg, logger)
}

func TestStoreIntent_ExtractsIDAndUpserts(t *testing.T) {
	var gotContentType string
	var gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/repositories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"intentDataEU"}]`))
	})
	mux.HandleFunc("/repositories/intentDataEU/statements", func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)
	ttl := `data5g:I0123456789abcdef0123456789abcdef a icm:Intent .`

	id, err := client.StoreIntent(context.Background(), ttl)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", id)
	assert.Equal(t, "application/x-turtle", gotContentType)
	assert.Contains(t, gotBody, "0123456789abcdef0123456789abcdef")
}

func TestStoreIntent_NoMatchReturnsEmptyID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/repositories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"intentDataEU"}]`))
	})
	mux.HandleFunc("/repositories/intentDataEU/statements", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)
	id, err := client.StoreIntent(context.Background(), `@prefix data5g: <http://5g4data.eu/5g4data#> .`)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestGetHighestReportNumber_EmptyReturnsZero(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/intentDataEU", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(`{"results":{"bindings":[]}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)
	n, err := client.GetHighestReportNumber(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGetHighestReportNumber_ReturnsMax(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/intentDataEU", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"bindings":[{"maxReportNum":{"value":"3"}}]}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)
	n, err := client.GetHighestReportNumber(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDeleteIntent_PropertyPathQuery(t *testing.T) {
	var gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/intentDataEU/statements", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		assert.Equal(t, "application/sparql-update", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)
	err := client.DeleteIntent(context.Background(), "abc")
	require.NoError(t, err)
	assert.Contains(t, gotBody, "Iabc")
}

func TestGetIntentReportByNumber_NotFoundReturnsEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/intentDataEU", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/turtle", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)
	ttl, err := client.GetIntentReportByNumber(context.Background(), "abc", 1)
	require.NoError(t, err)
	assert.Empty(t, ttl)
}
