// Package repository resolves datacenter identifiers against the same
// triplestore C2/C3/C4 write to, grounded on graphstore.Client's
// selectJSON-backed QueryIntents.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/intend-project/inserv-orch/internal/infra6/domain"
)

// GraphQuerier is the narrow slice of graphstore.Client this package needs,
// kept as an interface so tests can substitute a fake.
type GraphQuerier interface {
	QueryIntents(ctx context.Context, sparql string) (map[string]interface{}, error)
}

// Repository resolves DataCenter IRIs to handler URLs via SPARQL SELECT
// against the infrastructure graph (§4.6).
type Repository struct {
	graph GraphQuerier
}

// NewRepository builds an infra6 Repository.
func NewRepository(graph GraphQuerier) *Repository {
	return &Repository{graph: graph}
}

const infraNS = "http://5g4data.eu/5g4data#"

// ResolveHandlerURL looks up datacenterID's handler URL. A query transport
// failure is reported as ErrGraphUnavailable; an empty result set as
// ErrDataCenterNotFound — neither is retried here (§4.2, §4.6).
func (r *Repository) ResolveHandlerURL(ctx context.Context, datacenterID string) (string, error) {
	query := fmt.Sprintf(`
PREFIX data5g: <%s>
SELECT ?handlerUrl WHERE {
  ?dc data5g:datacenterId "%s" ;
      data5g:handlerUrl ?handlerUrl .
}`, infraNS, escapeSPARQLString(datacenterID))

	results, err := r.graph.QueryIntents(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGraphUnavailable, err)
	}

	url := extractFirstBinding(results, "handlerUrl")
	if url == "" {
		return "", domain.ErrDataCenterNotFound
	}
	return url, nil
}

func escapeSPARQLString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// extractFirstBinding reads the first row's value for varName out of a
// decoded SPARQL JSON result set ({"results":{"bindings":[{"varName":{"value":"..."}}]}}).
func extractFirstBinding(results map[string]interface{}, varName string) string {
	resultsObj, ok := results["results"].(map[string]interface{})
	if !ok {
		return ""
	}
	bindings, ok := resultsObj["bindings"].([]interface{})
	if !ok || len(bindings) == 0 {
		return ""
	}
	row, ok := bindings[0].(map[string]interface{})
	if !ok {
		return ""
	}
	binding, ok := row[varName].(map[string]interface{})
	if !ok {
		return ""
	}
	value, _ := binding["value"].(string)
	return value
}
