// Package domain holds the C2 Intent Router's classification result
// shapes and the service contract the handler talks to, mirroring the
// teacher's domain/service/handler split at one layer higher than C1's
// pure parsing functions.
package domain

import (
	"context"
	"errors"
)

// Classification is the result of deciding which branch of §4.2's state
// machine an incoming intent takes.
type Classification int

const (
	ClassifyUnknown Classification = iota
	ClassifyNetwork
	ClassifyDeployment
	ClassifyCombined
)

func (c Classification) String() string {
	switch c {
	case ClassifyNetwork:
		return "network"
	case ClassifyDeployment:
		return "deployment"
	case ClassifyCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// IntentRequest is the decoded TMF-921 request body (§6): the Turtle
// payload plus the envelope metadata the graph store needs for
// provenance.
type IntentRequest struct {
	Type        string
	Name        string
	Description string
	Priority    string
	TurtleBody  string
}

// SubIntentResult is one branch's outcome when routing a combined intent.
type SubIntentResult struct {
	Kind       string // "network" | "deployment"
	IntentID   string
	StatusCode int
	Body       map[string]interface{}
}

// RouteResult is what Route returns to the handler: the response body to
// serialize, the HTTP status to answer with, and (for bundles) the
// per-branch detail.
type RouteResult struct {
	StatusCode     int
	Body           map[string]interface{}
	IsBundle       bool
	SubIntents     []SubIntentResult
}

// ErrGraphUnavailable surfaces as 503 (§4.2).
var ErrGraphUnavailable = errors.New("intentrouter: graph database unavailable")

// ErrDataCenterNotFound surfaces as 500 (§4.2).
var ErrDataCenterNotFound = errors.New("intentrouter: datacenter not found in infrastructure data")

// ErrSplitFailed surfaces as 400 (§6): the combined intent could not be
// partitioned into its two sub-intents.
var ErrSplitFailed = errors.New("intentrouter: failed to split combined intent")

// ErrDownstreamTimeout surfaces as 504.
var ErrDownstreamTimeout = errors.New("intentrouter: downstream handler timed out")

// ErrDownstreamUnavailable surfaces as 503.
var ErrDownstreamUnavailable = errors.New("intentrouter: downstream handler unreachable")

// DataCenterResolver is C6's contract as seen from C2.
type DataCenterResolver interface {
	ResolveHandlerURL(ctx context.Context, datacenterID string) (string, error)
}

// GraphStore is the narrow slice of C5 the router needs directly (storing
// the received intent and, for the locally-owned ABSORBED_AS_RECEIVED
// branch, its first report).
type GraphStore interface {
	StoreIntent(ctx context.Context, ttl string) (string, error)
	StoreIntentReport(ctx context.Context, ttl string) (bool, error)
}

// DownstreamDispatcher posts a classified sub-intent to its handler.
type DownstreamDispatcher interface {
	Dispatch(ctx context.Context, baseURL string, req IntentRequest) (statusCode int, body map[string]interface{}, err error)
}

// DeploymentDispatcher hands a deployment-concern Turtle document to C3,
// returning the HTTP-shaped outcome the router bundles into its response.
type DeploymentDispatcher interface {
	DispatchDeployment(ctx context.Context, intentID, turtleBody, datacenterID string) (statusCode int, body map[string]interface{}, err error)
}

// Service is C2's contract.
type Service interface {
	Route(ctx context.Context, req IntentRequest, datacenterID string) (*RouteResult, error)
}
