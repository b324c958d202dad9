// Package domain holds the C4 Observation Reporter's task shapes and the
// ports its service depends on: a Prometheus querier and the narrow slice
// of the graph store it writes observations and metric metadata through.
package domain

import "context"

// KPIProfile is what C3 hands C4 per objective: enough to poll Prometheus
// and to classify the emitted unit by default when parsing can't recover
// the declared one (§4.4.3's fallback).
type KPIProfile struct {
	Name               string
	Type               string // "latency" | "bandwidth"
	Query              string
	Endpoint           string
	ReportingFrequency int
}

// IDOObjective mirrors the ido.intel.com/v1alpha1 Intent's objectives
// entries, the join key §4.4.2's KPI-to-Condition mapping walks from.
type IDOObjective struct {
	Name       string
	MeasuredBy string // "<namespace>/<kpiProfileName>", joined as "intend/<kpiName>" per spec wording
}

// StartRequest is startReporting's argument set (§4.4.1).
type StartRequest struct {
	IntentID      string
	Namespace     string
	TurtleBody    string // the original intent Turtle, for Condition mapping (§4.4.2)
	KPIProfiles   []KPIProfile
	IDOObjectives []IDOObjective
}

// Sample is one Prometheus query result.
type Sample struct {
	Value     float64
	Timestamp int64 // unix seconds
	HasSample bool
}

// PrometheusQuerier polls a PromQL query against an endpoint, with the
// fallback chain implemented by the caller (§4.4.4).
type PrometheusQuerier interface {
	Query(ctx context.Context, query, endpoint, namespace string) (Sample, error)
}

// GraphInserter is the narrow slice of C5 used to write an Observation
// document (any Turtle insert works; observations don't carry the
// data5g:I<32hex> Intent pattern StoreIntent's ID-extraction looks for, so
// its return value is simply unused here).
type GraphInserter interface {
	StoreIntent(ctx context.Context, ttl string) (string, error)
}

// MetadataRegistrar is the narrow slice of C5 used for exactly-once
// metric-metadata registration (§4.4.6).
type MetadataRegistrar interface {
	StoreMetricMetadata(ctx context.Context, metricName, queryURL string) error
}

// Service is C4's contract.
type Service interface {
	StartReporting(ctx context.Context, req StartRequest) error
	StopReporting(intentID string)
}
