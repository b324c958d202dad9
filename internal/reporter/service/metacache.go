package service

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/intend-project/inserv-orch/internal/reporter/domain"
	"github.com/intend-project/inserv-orch/internal/redis"
)

// metadataCache guards exactly-once metric-metadata registration per
// process (§4.4.6, §5: "a second mutex"), widened to exactly-once across
// replicas via a Redis set, the same cross-process pattern
// internal/deployment/service.PortCache uses for NodePort claims.
type metadataCache struct {
	mu         sync.Mutex
	registered map[string]bool
	redis      *redis.Client
}

func newMetadataCache(redisClient *redis.Client) *metadataCache {
	return &metadataCache{registered: make(map[string]bool), redis: redisClient}
}

// NewMetadataCache builds the cross-process metadata-registration guard,
// exported so wiring code outside this package can construct one to pass
// into NewService.
func NewMetadataCache(redisClient *redis.Client) *metadataCache {
	return newMetadataCache(redisClient)
}

const metadataRegisteredSetKey = "reporter:metadata:registered"

// registerOnce registers metricName's federated-query document the first
// time it's seen by this process (and, via Redis, by any replica),
// returning whether this call performed the registration.
func (m *metadataCache) registerOnce(ctx context.Context, registrar domain.MetadataRegistrar, metricName, repository string) (didRegister bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered[metricName] {
		return false, nil
	}

	if m.redis != nil {
		exists, err := m.redis.SMembers(ctx, metadataRegisteredSetKey)
		if err == nil {
			for _, e := range exists {
				if e == metricName {
					m.registered[metricName] = true
					return false, nil
				}
			}
		}
	}

	queryURL := federatedQueryURL(metricName, repository)
	if err := registrar.StoreMetricMetadata(ctx, metricName, queryURL); err != nil {
		return false, err
	}

	m.registered[metricName] = true
	if m.redis != nil {
		if err := m.redis.SAdd(ctx, metadataRegisteredSetKey, metricName); err != nil {
			return true, fmt.Errorf("recording metadata registration: %w", err)
		}
	}
	return true, nil
}

// federatedQueryURL builds the URL-encoded SPARQL SELECT that, executed
// against the metadata graph, returns metricName's time series via a
// federated SERVICE clause against the owning repository (§4.4.6).
func federatedQueryURL(metricName, repository string) string {
	query := fmt.Sprintf(`PREFIX data5g: <http://5g4data.eu/5g4data#>
PREFIX met: <http://5g4data.eu/met#>
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
SELECT ?obtainedAt ?value WHERE {
  SERVICE <repository:%s> {
    ?obs met:observedMetric data5g:%s ;
         met:observedValue [ rdf:value ?value ] ;
         met:obtainedAt ?obtainedAt .
  }
} ORDER BY ?obtainedAt`, repository, metricName)
	return "query?query=" + url.QueryEscape(query)
}
