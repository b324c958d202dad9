// Package service implements the Deployment Engine's orchestration:
// install-vs-upgrade dispatch, NodePort assignment, the
// patch-SA/delete-pods/wait-ready sequence, ingress reconciliation, and IDO
// resource creation, grounded on the teacher's internal/application/service
// orchestration style (a thin service that sequences calls onto narrow
// repository ports and never touches client-go/Helm types directly).
package service

import (
	"context"
	"fmt"

	"github.com/intend-project/inserv-orch/internal/deployment/domain"
	"github.com/intend-project/inserv-orch/internal/deployment/helm"
	"github.com/intend-project/inserv-orch/internal/deployment/nodeport"
	kube "github.com/intend-project/inserv-orch/internal/deployment/repository/kubernetes"
)

// CompositeRepository satisfies domain.Repository by pairing the
// Kubernetes-facing adapter with the Helm client, the two halves that
// together cover every method the interface names. Splitting them this way
// keeps the Kubernetes adapter free of Helm's chart/release vocabulary and
// vice versa, the same separation the teacher draws between its
// repository/application and internal/helm packages.
type CompositeRepository struct {
	kube     *kube.Repository
	helm     *helm.Client
	cacheDir string
}

// NewCompositeRepository builds the combined Repository.
func NewCompositeRepository(kubeRepo *kube.Repository, helmClient *helm.Client, chartCacheDir string) *CompositeRepository {
	return &CompositeRepository{kube: kubeRepo, helm: helmClient, cacheDir: chartCacheDir}
}

func (c *CompositeRepository) EnsureNamespace(ctx context.Context, namespace string) error {
	return c.kube.EnsureNamespace(ctx, namespace)
}

func (c *CompositeRepository) EnsureImagePullSecret(ctx context.Context, namespace, secretName, sourceNamespace string) error {
	return c.kube.EnsureImagePullSecret(ctx, namespace, secretName, sourceNamespace)
}

func (c *CompositeRepository) ResolveClusterNumber(ctx context.Context) (int, error) {
	return c.kube.ResolveClusterNumber(ctx)
}

func (c *CompositeRepository) UsedNodePorts(ctx context.Context, clusterLabelSelector string) (map[int]bool, error) {
	return c.kube.UsedNodePorts(ctx, clusterLabelSelector)
}

func (c *CompositeRepository) ReleaseExists(ctx context.Context, releaseName, namespace string) (bool, error) {
	return c.helm.ReleaseExists(releaseName, namespace)
}

func (c *CompositeRepository) ResolveChart(ctx context.Context, chartURL string) (string, error) {
	return helm.ResolveChartSource(chartURL, c.cacheDir)
}

func (c *CompositeRepository) ChartDefaultNodePortSlots(chartPath string) ([]string, error) {
	ch, err := c.helm.LoadChart(chartPath)
	if err != nil {
		return nil, err
	}
	slots := nodeport.ExtractSlots(c.helm.DefaultValues(ch))
	paths := make([]string, 0, len(slots))
	for _, s := range slots {
		paths = append(paths, s.Path)
	}
	return paths, nil
}

func (c *CompositeRepository) Install(ctx context.Context, releaseName, namespace, chartPath string, setOverrides map[string]string) error {
	ch, err := c.helm.LoadChart(chartPath)
	if err != nil {
		return err
	}
	_, err = c.helm.Install(releaseName, namespace, ch, setOverrides)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrHelmOperationFailed, err)
	}
	return nil
}

func (c *CompositeRepository) Upgrade(ctx context.Context, releaseName, namespace, chartPath string, setOverrides map[string]string) error {
	ch, err := c.helm.LoadChart(chartPath)
	if err != nil {
		return err
	}
	_, err = c.helm.Upgrade(releaseName, namespace, ch, setOverrides)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrHelmOperationFailed, err)
	}
	return nil
}

func (c *CompositeRepository) Uninstall(ctx context.Context, releaseName, namespace string) (bool, error) {
	return c.helm.Uninstall(releaseName, namespace)
}

func (c *CompositeRepository) PatchServiceAccountsWithSecret(ctx context.Context, namespace, secretName string) error {
	return c.kube.PatchServiceAccountsWithSecret(ctx, namespace, secretName)
}

func (c *CompositeRepository) DeletePodsInNamespace(ctx context.Context, namespace string, gracePeriodSeconds int64) error {
	return c.kube.DeletePodsInNamespace(ctx, namespace, gracePeriodSeconds)
}

func (c *CompositeRepository) WaitForDeploymentsReady(ctx context.Context, namespace, releaseName string, perDeploymentTimeout int) []string {
	return c.kube.WaitForDeploymentsReady(ctx, namespace, releaseName, perDeploymentTimeout)
}

func (c *CompositeRepository) EnsureIngressForLoadBalancers(ctx context.Context, namespace, ingressClass, ingressHost string) error {
	return c.kube.EnsureIngressForLoadBalancers(ctx, namespace, ingressClass, ingressHost)
}

func (c *CompositeRepository) NodePortServiceURLs(ctx context.Context, namespace string) ([]string, error) {
	return c.kube.NodePortServiceURLs(ctx, namespace)
}

func (c *CompositeRepository) CreateOrUpdateKPIProfile(ctx context.Context, namespace string, profile domain.KPIProfile) error {
	return c.kube.CreateOrUpdateKPIProfile(ctx, namespace, profile)
}

func (c *CompositeRepository) CreateOrUpdateIDOIntent(ctx context.Context, intent domain.IDOIntent) error {
	return c.kube.CreateOrUpdateIDOIntent(ctx, intent)
}

func (c *CompositeRepository) ResolveExternalHost(ctx context.Context) string {
	return c.kube.ResolveExternalHost(ctx)
}

var _ domain.Repository = (*CompositeRepository)(nil)
