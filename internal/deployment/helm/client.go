// Package helm wraps native Helm v3 actions (install/upgrade/uninstall/
// show-values/history) the way the teacher's internal/helm.Service does,
// generalized to a real RESTClientGetter so action.Configuration can talk
// to the live cluster, and extended with chart resolution (local path or
// downloaded tgz) per §4.3.5 step 1. `helm install`/`upgrade` are run
// without `--wait` deliberately (§9: ServiceAccount patching must happen
// before pods start pulling images).
package helm

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/storage/driver"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	defaultActionTimeout = 5 * time.Minute
	uninstallTimeout     = 5 * time.Minute
)

// Client runs Helm actions against one namespace at a time, matching the
// way action.Configuration is scoped in upstream Helm.
type Client struct {
	restConfig *rest.Config
	logger     *slog.Logger
}

// NewClient builds a Helm Client from a Kubernetes REST config.
func NewClient(restConfig *rest.Config, logger *slog.Logger) *Client {
	return &Client{restConfig: restConfig, logger: logger}
}

// restClientGetter adapts a *rest.Config into the genericclioptions-shaped
// interface action.Configuration.Init requires, without pulling in a full
// kubeconfig loader (this process already has an in-cluster or kubeconfig
// *rest.Config from bootstrap).
type restClientGetter struct {
	cfg *rest.Config
}

func (g *restClientGetter) ToRESTConfig() (*rest.Config, error) { return g.cfg, nil }

func (g *restClientGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	dc, err := discovery.NewDiscoveryClientForConfig(g.cfg)
	if err != nil {
		return nil, err
	}
	return memory.NewMemCacheClient(dc), nil
}

func (g *restClientGetter) ToRESTMapper() (meta.RESTMapper, error) {
	dc, err := g.ToDiscoveryClient()
	if err != nil {
		return nil, err
	}
	return restmapper.NewDeferredDiscoveryRESTMapper(dc), nil
}

func (g *restClientGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	return nil
}

// newActionConfig initializes a fresh action.Configuration scoped to
// namespace, matching the per-namespace release-storage scoping Helm
// itself uses (one Secret-backed release history per namespace).
func (c *Client) newActionConfig(namespace string) (*action.Configuration, error) {
	actionConfig := new(action.Configuration)
	debugLog := func(format string, v ...interface{}) {
		c.logger.Debug("helm client", "message", fmt.Sprintf(format, v...))
	}
	getter := &restClientGetter{cfg: c.restConfig}
	if err := actionConfig.Init(getter, namespace, os.Getenv("HELM_DRIVER"), debugLog); err != nil {
		return nil, fmt.Errorf("initializing helm action config: %w", err)
	}
	return actionConfig, nil
}

// ReleaseExists reports whether releaseName has release history in
// namespace, the same membership check §4.3.1 uses to choose Install vs
// Upgrade.
func (c *Client) ReleaseExists(releaseName, namespace string) (bool, error) {
	actionConfig, err := c.newActionConfig(namespace)
	if err != nil {
		return false, err
	}
	hist := action.NewHistory(actionConfig)
	hist.Max = 1
	_, err = hist.Run(releaseName)
	if err == driver.ErrReleaseNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking release history for %s: %w", releaseName, err)
	}
	return true, nil
}

// LoadChart reads a chart from a local path (directory or .tgz).
func (c *Client) LoadChart(path string) (*chart.Chart, error) {
	ch, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading chart %s: %w", path, err)
	}
	return ch, nil
}

// DefaultValues returns the chart's values.yaml as a nested map, the
// source ExtractSlots walks to find NodePort declarations.
func (c *Client) DefaultValues(ch *chart.Chart) map[string]interface{} {
	return ch.Values
}

// Install runs `helm install` without waiting, applying setOverrides as
// dotted-path --set equivalents coerced through chartutil so numeric
// values land as integers, not strings.
func (c *Client) Install(releaseName, namespace string, ch *chart.Chart, setOverrides map[string]string) (*release.Release, error) {
	actionConfig, err := c.newActionConfig(namespace)
	if err != nil {
		return nil, err
	}
	install := action.NewInstall(actionConfig)
	install.ReleaseName = releaseName
	install.Namespace = namespace
	install.CreateNamespace = true
	install.Wait = false
	install.Timeout = defaultActionTimeout

	values, err := mergeSetOverrides(ch.Values, setOverrides)
	if err != nil {
		return nil, err
	}

	rel, err := install.Run(ch, values)
	if err != nil {
		return nil, fmt.Errorf("helm install %s: %w", releaseName, err)
	}
	return rel, nil
}

// Upgrade runs `helm upgrade` on an existing release without waiting.
func (c *Client) Upgrade(releaseName, namespace string, ch *chart.Chart, setOverrides map[string]string) (*release.Release, error) {
	actionConfig, err := c.newActionConfig(namespace)
	if err != nil {
		return nil, err
	}
	upgrade := action.NewUpgrade(actionConfig)
	upgrade.Namespace = namespace
	upgrade.Install = true
	upgrade.MaxHistory = 10
	upgrade.Wait = false
	upgrade.Timeout = defaultActionTimeout

	values, err := mergeSetOverrides(ch.Values, setOverrides)
	if err != nil {
		return nil, err
	}

	rel, err := upgrade.Run(releaseName, ch, values)
	if err != nil {
		return nil, fmt.Errorf("helm upgrade %s: %w", releaseName, err)
	}
	return rel, nil
}

// Uninstall removes a release, returning (true, nil) when it was already
// absent rather than treating that as an error (§4.3.7).
func (c *Client) Uninstall(releaseName, namespace string) (alreadyAbsent bool, err error) {
	actionConfig, err := c.newActionConfig(namespace)
	if err != nil {
		return false, err
	}
	uninstall := action.NewUninstall(actionConfig)
	uninstall.Timeout = uninstallTimeout
	_, err = uninstall.Run(releaseName)
	if errors.Is(err, driver.ErrReleaseNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("helm uninstall %s: %w", releaseName, err)
	}
	return false, nil
}

// mergeSetOverrides applies dotted-path overrides on top of the chart's
// own default values, the programmatic equivalent of repeated
// `--set path=value` flags.
func mergeSetOverrides(defaults map[string]interface{}, overrides map[string]string) (map[string]interface{}, error) {
	base := chartutil.Values(defaults)
	for path, value := range overrides {
		if err := setPath(base, path, value); err != nil {
			return nil, fmt.Errorf("applying override %s=%s: %w", path, value, err)
		}
	}
	return map[string]interface{}(base), nil
}

// setPath sets a dotted path (e.g. "service.nodePort") on a nested map,
// creating intermediate maps as needed and coercing the value to an int
// when it parses as one (NodePort overrides are always integers).
func setPath(m map[string]interface{}, path, value string) error {
	parts := strings.Split(path, ".")
	cur := m
	for i, part := range parts {
		if i == len(parts)-1 {
			if n, err := strconv.Atoi(value); err == nil {
				cur[part] = n
			} else {
				cur[part] = value
			}
			return nil
		}
		next, ok := cur[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			cur[part] = next
		}
		cur = next
	}
	return nil
}
