// Package domain holds the C3 Deployment Engine's types and ports: a
// deployment request carries everything the parsed intent contributed
// (application/namespace, chart source, objectives), and the Repository
// interface is the seam the service talks to Kubernetes/Helm through.
package domain

import "context"

// Request is what the intent router hands the deployment engine once it
// has classified an intent as deployment-concern.
type Request struct {
	IntentID    string
	Application string // also the release name and the namespace
	ChartURL    string
	DataCenter  string
	Objectives  map[string]Objective // objective name -> parsed target value
	IntentTTL   string                // the single-expectation Turtle this deploy was derived from
}

// Objective is the deployment engine's view of a parsed TMF objective: a
// target value (already ms->s converted) plus the unit it should be
// reported back in (§4.4.3 is applied by the reporter, not here, but the
// unit travels with the objective since IDO resource creation needs it).
type Objective struct {
	Value         float64
	Unit          string
	OriginalValue float64
}

// Result is returned by Deploy/Upgrade: what the caller (intent router,
// tests) needs to start observation reporting and to answer status queries.
type Result struct {
	ReleaseName    string
	Namespace      string
	Installed      bool // true = fresh install, false = upgrade
	AssignedPorts  map[string]int32
	AccessURLs     []string
	KPIProfiles    []KPIProfile
	IDOIntentName  string
	Warnings       []string
}

// KPIProfile mirrors the ido.intel.com/v1alpha1 KPIProfile custom resource
// created per objective (§4.3.6).
type KPIProfile struct {
	Name               string
	Type               string // "latency" | "bandwidth"
	Description        string
	Query              string
	Endpoint           string
	ReportingFrequency int
	ObjectiveName      string
	ConditionID        string
}

// IDOIntent mirrors the ido.intel.com/v1alpha1 Intent custom resource: a
// single objective naming the KPIProfile that measures it.
type IDOIntent struct {
	Name       string
	Namespace  string
	Objectives []IDOObjective
}

// IDOObjective is one entry of an IDOIntent's objectives list.
type IDOObjective struct {
	Name       string
	Value      float64
	MeasuredBy string // "<namespace>/<kpiProfileName>"
}

// NodePortRange is the ten-port decahedron reserved for one cluster, per
// §4.3.3: [30100+10n-9, 30100+10n].
type NodePortRange struct {
	ClusterNumber int
	Low           int
	High          int
}

// ChartSource resolves either a local filesystem path or a remote chart
// archive that needs downloading and (for well-known external hosts)
// rewriting to an in-cluster URL so pods fetching it don't leave the
// cluster.
type ChartSource struct {
	LocalPath string
}

// Repository is the seam onto Kubernetes/Helm. The service package depends
// only on this interface; internal/deployment/repository/kubernetes and
// internal/deployment/helm implement it in combination.
type Repository interface {
	// Namespace & secret bootstrap (§4.3.2).
	EnsureNamespace(ctx context.Context, namespace string) error
	EnsureImagePullSecret(ctx context.Context, namespace, secretName, sourceNamespace string) error

	// NodePort arithmetic support (§4.3.3/4.3.4).
	ResolveClusterNumber(ctx context.Context) (int, error)
	UsedNodePorts(ctx context.Context, clusterLabelSelector string) (map[int]bool, error)

	// Helm operations, native-client-backed.
	ReleaseExists(ctx context.Context, releaseName, namespace string) (bool, error)
	ResolveChart(ctx context.Context, chartURL string) (string, error) // returns local chart path
	ChartDefaultNodePortSlots(chartPath string) ([]string, error)      // dotted paths, in declaration order
	Install(ctx context.Context, releaseName, namespace, chartPath string, setOverrides map[string]string) error
	Upgrade(ctx context.Context, releaseName, namespace, chartPath string, setOverrides map[string]string) error
	Uninstall(ctx context.Context, releaseName, namespace string) (alreadyAbsent bool, err error)

	// Post-install reconciliation (§4.3.5 steps 4-6).
	PatchServiceAccountsWithSecret(ctx context.Context, namespace, secretName string) error
	DeletePodsInNamespace(ctx context.Context, namespace string, gracePeriodSeconds int64) error
	WaitForDeploymentsReady(ctx context.Context, namespace, releaseName string, perDeploymentTimeout int) []string // returns warnings
	EnsureIngressForLoadBalancers(ctx context.Context, namespace, ingressClass, ingressHost string) error
	NodePortServiceURLs(ctx context.Context, namespace string) ([]string, error)

	// IDO custom resources (§4.3.6).
	CreateOrUpdateKPIProfile(ctx context.Context, namespace string, profile KPIProfile) error
	CreateOrUpdateIDOIntent(ctx context.Context, intent IDOIntent) error

	// External host inference (supplemented feature #3).
	ResolveExternalHost(ctx context.Context) string
}

// PortClaimCache is the cross-process advisory cache for ports assigned in
// the current process lifetime, backed by Redis so a restarted/replicated
// deployment-engine pod doesn't re-claim a port a sibling already holds
// (§5's "assigned in the current process lifetime" is widened to "assigned
// by any live replica").
type PortClaimCache interface {
	Claim(ctx context.Context, cluster string, port int) (claimed bool, err error)
	Claimed(ctx context.Context, cluster string) (map[int]bool, error)
}

// Service is C3's contract: deploy (install-or-upgrade) and delete.
type Service interface {
	Deploy(ctx context.Context, req Request) (*Result, error)
	Delete(ctx context.Context, releaseName, namespace string) (alreadyAbsent bool, err error)
}
