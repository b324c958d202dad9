package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/intend-project/inserv-orch/internal/deployment/domain"
)

// promQLTemplates gives the fixed query per KPIProfile class (§4.3.6).
var promQLTemplates = map[string]string{
	"latency":   `histogram_quantile(0.99, sum(rate(http_request_duration_seconds_bucket{namespace="%s"}[5m])) by (le))`,
	"bandwidth": `sum(rate(container_network_transmit_bytes_total{namespace="%s"}[5m]))`,
}

// bandwidthObjectiveNames marks objective names that classify as a
// bandwidth KPIProfile; anything not recognized falls back to latency,
// matching the teacher's convention of defaulting rather than rejecting an
// unrecognized-but-present enum value.
var bandwidthObjectiveNames = map[string]bool{
	"throughput":      true,
	"bandwidth":       true,
	"data-rate-downl": true,
	"data-rate-uplk":  true,
}

func classifyObjective(name string) string {
	lower := strings.ToLower(name)
	for key := range bandwidthObjectiveNames {
		if strings.Contains(lower, key) {
			return "bandwidth"
		}
	}
	if strings.Contains(lower, "bandwidth") || strings.Contains(lower, "throughput") {
		return "bandwidth"
	}
	return "latency"
}

// prometheusEndpoint computes the KPIProfile endpoint per §4.3.6: prefer
// the in-cluster default Prometheus, then PROMETHEUS_URL, then the
// configured external fallback, always ensuring the path ends in
// /api/v1/query.
func prometheusEndpoint(inCluster bool, externalFallback string) string {
	var base string
	switch {
	case inCluster:
		base = "http://prometheus.default.svc.cluster.local:9090"
	case os.Getenv("PROMETHEUS_URL") != "":
		base = os.Getenv("PROMETHEUS_URL")
	default:
		base = externalFallback
	}
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/api/v1/query") {
		return base
	}
	return base + "/api/v1/query"
}

// buildIDOResources constructs one KPIProfile per objective on req and a
// single IDOIntent listing every objective, named per §4.3.6's convention
// (p99token-<ns>, llm-intent-<ns>). When more than one objective is present
// each gets its own uniquely-suffixed KPIProfile name so they don't collide.
func buildIDOResources(req domain.Request, namespace string, inCluster bool, externalFallback string, reportingFrequency int) ([]domain.KPIProfile, domain.IDOIntent) {
	endpoint := prometheusEndpoint(inCluster, externalFallback)

	intent := domain.IDOIntent{
		Name:      fmt.Sprintf("llm-intent-%s", namespace),
		Namespace: namespace,
	}

	var profiles []domain.KPIProfile
	for name, objective := range req.Objectives {
		kind := classifyObjective(name)
		profileName := fmt.Sprintf("p99token-%s", namespace)
		if len(req.Objectives) > 1 {
			profileName = fmt.Sprintf("p99token-%s-%s", namespace, sanitizeName(name))
		}

		profile := domain.KPIProfile{
			Name:               profileName,
			Type:               kind,
			Description:        fmt.Sprintf("auto-generated KPI profile for objective %s", name),
			Query:              fmt.Sprintf(promQLTemplates[kind], namespace),
			Endpoint:           endpoint,
			ReportingFrequency: reportingFrequency,
			ObjectiveName:      name,
		}
		profiles = append(profiles, profile)

		intent.Objectives = append(intent.Objectives, domain.IDOObjective{
			Name:       name,
			Value:      objective.Value,
			MeasuredBy: fmt.Sprintf("%s/%s", namespace, profileName),
		})
	}

	return profiles, intent
}

func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return '-'
	}, s)
}
