// Package domain holds the C6 Infrastructure Resolver's contract: resolve
// a datacenter identifier (e.g. "EC21") to the downstream handler base URL
// that owns it. The cluster number C3's NodePort arithmetic needs is not
// resolved here.
package domain

import (
	"context"
	"errors"
)

// ErrGraphUnavailable is returned when the graph store cannot be reached;
// callers surface this as HTTP 503 (§4.2, §4.6).
var ErrGraphUnavailable = errors.New("infra6: graph database unavailable")

// ErrDataCenterNotFound is returned when datacenterId has no mapping in the
// graph; callers surface this as HTTP 500 (§4.2).
var ErrDataCenterNotFound = errors.New("infra6: datacenter not found in infrastructure data")

// Resolver is C6's contract.
type Resolver interface {
	// ResolveHandlerURL returns the downstream handler base URL for
	// datacenterID, or ErrDataCenterNotFound / ErrGraphUnavailable.
	ResolveHandlerURL(ctx context.Context, datacenterID string) (string, error)
}
