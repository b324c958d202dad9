// Package graphstore is the SPARQL HTTP adapter onto the GraphDB
// triplestore (C5): it is the system's only durable store. Every write is
// single-statement; there are no cross-write transactional guarantees (§5).
package graphstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/intend-project/inserv-orch/internal/config"
	"github.com/intend-project/inserv-orch/internal/logging"
)

// Client talks to a GraphDB repository over its SPARQL HTTP endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	repository string
	metaGraph  string
	persist    bool
	localDir   string
	logger     *logging.StructuredLogger
}

// NewClient builds a graphstore Client from configuration. It does not
// verify repository existence eagerly — StoreIntent/StoreIntentReport
// create the repository lazily on first write, the way the original
// client does.
func NewClient(cfg *config.GraphDBConfig, logger *logging.StructuredLogger) *Client {
	if cfg.LocalIntentsDir != "" && cfg.PersistLocalCopies {
		_ = ensureDir(cfg.LocalIntentsDir)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.URL,
		repository: cfg.Repository,
		metaGraph:  cfg.MetadataGraph,
		persist:    cfg.PersistLocalCopies,
		localDir:   cfg.LocalIntentsDir,
		logger:     logger.WithComponent("graphstore"),
	}
}

var intentIDPattern = regexp.MustCompile(`data5g:I([a-f0-9]{32})`)

// StoreIntent upserts a Turtle-encoded Intent document and returns its
// inferred ID (the `data5g:I<32hex>` local name). It also records a
// data5g:sourceFile provenance triple pointing at the locally persisted
// copy, when local persistence is enabled (a supplemented feature: the
// original client wrote this unconditionally, this system makes it opt-in
// via GraphDBConfig.PersistLocalCopies).
func (c *Client) StoreIntent(ctx context.Context, ttl string) (string, error) {
	if err := c.ensureRepository(ctx); err != nil {
		return "", err
	}
	if err := c.postTurtle(ctx, ttl); err != nil {
		return "", fmt.Errorf("storing intent: %w", err)
	}

	match := intentIDPattern.FindStringSubmatch(ttl)
	if match == nil {
		return "", nil
	}
	intentID := match[1]

	if c.persist {
		relPath, err := c.writeLocalCopy(intentID, ttl)
		if err != nil {
			c.logger.Warn(ctx, "failed to persist local intent copy", slog.String("intent_id", intentID), slog.String("error", err.Error()))
		} else {
			provenance := fmt.Sprintf("<http://5g4data.eu/5g4data#I%s> <http://5g4data.eu/5g4data#sourceFile> %q .\n", intentID, relPath)
			if err := c.postTurtle(ctx, provenance); err != nil {
				c.logger.Warn(ctx, "failed to store sourceFile provenance triple", slog.String("intent_id", intentID), slog.String("error", err.Error()))
			}
		}
	}

	return intentID, nil
}

// StoreIntentReport inserts an IntentReport document. Returns false (not an
// error) on a non-204 response, matching the original's boolean contract.
func (c *Client) StoreIntentReport(ctx context.Context, ttl string) (bool, error) {
	if err := c.ensureRepository(ctx); err != nil {
		return false, err
	}
	status, err := c.postTurtleStatus(ctx, ttl)
	if err != nil {
		return false, err
	}
	return status == http.StatusNoContent, nil
}

// GetIntent retrieves every triple reachable from the Intent IRI via
// property-path CONSTRUCT, the contract's "(^!rdf:type|!rdf:type)*"
// traversal. The Turtle body is returned as GraphDB serialized it; no
// prefixes are re-bound on the response.
func (c *Client) GetIntent(ctx context.Context, intentID string) (string, error) {
	query := fmt.Sprintf(`
PREFIX rdf: <%s>
CONSTRUCT { ?s ?p ?o . }
WHERE {
  ?s ?p ?o .
  <http://5g4data.eu/5g4data#I%s> (^!rdf:type|!rdf:type)* ?s .
}`, "http://www.w3.org/1999/02/22-rdf-syntax-ns#", intentID)

	return c.constructTurtle(ctx, query)
}

// GetLastIntentReport returns the most recent IntentReport, ordered by
// reportGenerated DESC LIMIT 1, as Turtle.
func (c *Client) GetLastIntentReport(ctx context.Context, intentID string) (string, error) {
	query := fmt.Sprintf(`%s
CONSTRUCT {
  ?report rdf:type icm:IntentReport ;
          icm:about data5g:I%s ;
          icm:reportNumber ?number ;
          icm:reportGenerated ?timestamp ;
          icm:intentHandlingState ?state ;
          icm:reason ?reason ;
          imo:handler ?handler ;
          imo:owner ?owner .
}
WHERE {
  ?report rdf:type icm:IntentReport ;
          icm:about data5g:I%s ;
          icm:reportNumber ?number ;
          icm:reportGenerated ?timestamp .
  OPTIONAL { ?report icm:intentHandlingState ?state }
  OPTIONAL { ?report icm:reason ?reason }
  OPTIONAL { ?report imo:handler ?handler }
  OPTIONAL { ?report imo:owner ?owner }
}
ORDER BY DESC(?timestamp)
LIMIT 1`, reportPrefixes, intentID, intentID)

	return c.constructTurtle(ctx, query)
}

// GetIntentReportByNumber returns the report with the given reportNumber,
// or "" if none exists.
func (c *Client) GetIntentReportByNumber(ctx context.Context, intentID string, number int) (string, error) {
	query := fmt.Sprintf(`%s
CONSTRUCT {
  ?report rdf:type icm:IntentReport ;
          icm:about data5g:I%s ;
          icm:reportNumber ?number ;
          icm:reportGenerated ?timestamp ;
          icm:intentHandlingState ?state ;
          icm:reason ?reason ;
          imo:handler ?handler ;
          imo:owner ?owner .
}
WHERE {
  ?report rdf:type icm:IntentReport ;
          icm:about data5g:I%s ;
          icm:reportNumber ?number ;
          icm:reportGenerated ?timestamp .
  FILTER (?number = %d)
  OPTIONAL { ?report icm:intentHandlingState ?state }
  OPTIONAL { ?report icm:reason ?reason }
  OPTIONAL { ?report imo:handler ?handler }
  OPTIONAL { ?report imo:owner ?owner }
}
ORDER BY DESC(?timestamp)
LIMIT 1`, reportPrefixes, intentID, intentID, number)

	return c.constructTurtle(ctx, query)
}

// GetHighestReportNumber returns the max reportNumber for the intent, or 0
// when none exist, satisfying I2.
func (c *Client) GetHighestReportNumber(ctx context.Context, intentID string) (int, error) {
	query := fmt.Sprintf(`
PREFIX icm: <%s>
PREFIX data5g: <%s>
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
SELECT (MAX(xsd:integer(?reportNum)) as ?maxReportNum)
WHERE {
  ?report rdf:type icm:IntentReport ;
          icm:about data5g:I%s ;
          icm:reportNumber ?reportNum .
}`, icmNS, data5gNS, intentID)

	results, err := c.selectJSON(ctx, query)
	if err != nil {
		return 0, err
	}
	return extractMaxInt(results, "maxReportNum"), nil
}

// QueryIntents executes an arbitrary SPARQL SELECT and returns the decoded
// sparql-results+json result set.
func (c *Client) QueryIntents(ctx context.Context, sparql string) (map[string]interface{}, error) {
	return c.selectJSON(ctx, sparql)
}

// DeleteAllIntents removes every triple in the repository.
func (c *Client) DeleteAllIntents(ctx context.Context) error {
	return c.update(ctx, `DELETE { ?s ?p ?o } WHERE { ?s ?p ?o }`)
}

// DeleteIntent removes every triple reachable from the Intent IRI via the
// same property-path traversal used by GetIntent, and removes the local
// filesystem copy if persistence is enabled.
func (c *Client) DeleteIntent(ctx context.Context, intentID string) error {
	if c.persist {
		_ = removeLocalCopy(c.localDir, intentID)
	}
	query := fmt.Sprintf(`
PREFIX rdf: <%s>
DELETE { ?s ?p ?o }
WHERE {
  ?s ?p ?o .
  <http://5g4data.eu/5g4data#I%s> (^!rdf:type|!rdf:type)* ?s .
}`, "http://www.w3.org/1999/02/22-rdf-syntax-ns#", intentID)
	return c.update(ctx, query)
}

// StoreMetricMetadata registers a reusable federated-query document once
// per metric, in the reserved metadata named graph (§4.5, consumed by C4
// so it only registers a metric once per process — see
// internal/reporter/service/metacache.go).
func (c *Client) StoreMetricMetadata(ctx context.Context, metricName, queryURL string) error {
	insert := fmt.Sprintf(`
PREFIX data5g: <%s>
INSERT DATA {
  GRAPH <%s> {
    data5g:%s data5g:hasQuery <%s> .
  }
}`, data5gNS, c.metaGraph, metricName, queryURL)
	return c.update(ctx, insert)
}

const (
	icmNS    = "http://tio.models.tmforum.org/tio/v3.6.0/IntentCommonModel/"
	data5gNS = "http://5g4data.eu/5g4data#"
	imoNS    = "http://tio.models.tmforum.org/tio/v3.6.0/IntentManagementOntology/"
)

var reportPrefixes = fmt.Sprintf("PREFIX icm: <%s>\nPREFIX data5g: <%s>\nPREFIX imo: <%s>\nPREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>", icmNS, data5gNS, imoNS)

func (c *Client) statementsEndpoint() string {
	return fmt.Sprintf("%s/repositories/%s/statements", c.baseURL, c.repository)
}

func (c *Client) queryEndpoint() string {
	return fmt.Sprintf("%s/repositories/%s", c.baseURL, c.repository)
}

func (c *Client) postTurtle(ctx context.Context, ttl string) error {
	status, err := c.postTurtleStatus(ctx, ttl)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("graphdb returned status %d", status)
	}
	return nil
}

func (c *Client) postTurtleStatus(ctx context.Context, ttl string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.statementsEndpoint(), bytes.NewBufferString(ttl))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-turtle")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("graphdb unavailable: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func (c *Client) constructTurtle(ctx context.Context, query string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryEndpoint(), bytes.NewBufferString(query))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/sparql-query")
	req.Header.Set("Accept", "text/turtle")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("graphdb unavailable: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("graphdb query failed with status %d: %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}

func (c *Client) update(ctx context.Context, query string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.statementsEndpoint(), bytes.NewBufferString(query))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/sparql-update")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphdb unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("graphdb update failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
