package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/intend-project/inserv-orch/internal/config"
	"github.com/intend-project/inserv-orch/internal/deployment/domain"
	"github.com/intend-project/inserv-orch/internal/deployment/nodeport"
)

const (
	podDeleteGracePeriodSeconds = 5
	settlePeriod                = 3 * time.Second
)

// Service orchestrates §4.3's deploy sequence against a domain.Repository,
// never touching Helm or client-go types directly; grounded on the
// teacher's internal/application/service layering where the service holds
// only ports and sequencing logic.
type Service struct {
	repo             domain.Repository
	ports            domain.PortClaimCache
	cfg              config.DeploymentConfig
	defaultFrequency int
	inCluster        bool
	logger           *slog.Logger
}

// NewService builds the Deployment Engine orchestrator. defaultFrequency is
// the reporter's default polling interval (§4.4.7), stamped onto every
// KPIProfile this engine creates.
func NewService(repo domain.Repository, ports domain.PortClaimCache, cfg config.DeploymentConfig, defaultFrequency int, inCluster bool, logger *slog.Logger) *Service {
	return &Service{repo: repo, ports: ports, cfg: cfg, defaultFrequency: defaultFrequency, inCluster: inCluster, logger: logger}
}

var _ domain.Service = (*Service)(nil)

// Deploy runs the full install-or-upgrade sequence for req and returns the
// access/observation-relevant facts the intent router and reporter need.
func (s *Service) Deploy(ctx context.Context, req domain.Request) (*domain.Result, error) {
	releaseName := req.Application
	namespace := req.Application

	chartPath, err := s.repo.ResolveChart(ctx, req.ChartURL)
	if err != nil {
		return nil, fmt.Errorf("resolving chart: %w", err)
	}

	if err := s.repo.EnsureNamespace(ctx, namespace); err != nil {
		return nil, fmt.Errorf("ensuring namespace %s: %w", namespace, err)
	}

	var warnings []string
	if err := s.repo.EnsureImagePullSecret(ctx, namespace, s.cfg.ImagePullSecretName, s.cfg.SourceNamespace); err != nil {
		warnings = append(warnings, fmt.Sprintf("image pull secret bootstrap: %v", err))
		s.logger.Warn("image pull secret bootstrap failed", "namespace", namespace, "error", err)
	}

	assigned, overrides, err := s.assignNodePorts(ctx, chartPath)
	if err != nil {
		return nil, err
	}

	installed, err := s.installOrUpgrade(ctx, releaseName, namespace, chartPath, overrides)
	if err != nil {
		return nil, err
	}

	time.Sleep(settlePeriod)

	if err := s.repo.PatchServiceAccountsWithSecret(ctx, namespace, s.cfg.ImagePullSecretName); err != nil {
		warnings = append(warnings, fmt.Sprintf("serviceaccount patch: %v", err))
		s.logger.Warn("serviceaccount patch failed", "namespace", namespace, "error", err)
	}
	if err := s.repo.DeletePodsInNamespace(ctx, namespace, podDeleteGracePeriodSeconds); err != nil {
		warnings = append(warnings, fmt.Sprintf("pod recycle: %v", err))
		s.logger.Warn("pod recycle failed", "namespace", namespace, "error", err)
	}

	readyWarnings := s.repo.WaitForDeploymentsReady(ctx, namespace, releaseName, s.cfg.ReadyTimeoutSeconds)
	warnings = append(warnings, readyWarnings...)

	if err := s.repo.EnsureIngressForLoadBalancers(ctx, namespace, s.cfg.IngressClass, s.cfg.IngressHost); err != nil {
		warnings = append(warnings, fmt.Sprintf("ingress reconciliation: %v", err))
		s.logger.Warn("ingress reconciliation failed", "namespace", namespace, "error", err)
	}

	result := &domain.Result{
		ReleaseName:   releaseName,
		Namespace:     namespace,
		Installed:     installed,
		AssignedPorts: assigned,
	}

	if len(req.Objectives) > 0 {
		profiles, idoIntent := buildIDOResources(req, namespace, s.inCluster, s.cfg.ExternalPrometheusURL, s.defaultFrequency)
		for _, profile := range profiles {
			if err := s.repo.CreateOrUpdateKPIProfile(ctx, s.cfg.IDONamespace, profile); err != nil {
				warnings = append(warnings, fmt.Sprintf("KPIProfile %s: %v", profile.Name, err))
				s.logger.Warn("KPIProfile creation failed", "profile", profile.Name, "error", err)
				continue
			}
			result.KPIProfiles = append(result.KPIProfiles, profile)
		}
		if err := s.repo.CreateOrUpdateIDOIntent(ctx, idoIntent); err != nil {
			warnings = append(warnings, fmt.Sprintf("IDO Intent %s: %v", idoIntent.Name, err))
			s.logger.Warn("IDO Intent creation failed", "intent", idoIntent.Name, "error", err)
		} else {
			result.IDOIntentName = idoIntent.Name
		}
	}

	urls, err := s.repo.NodePortServiceURLs(ctx, namespace)
	if err == nil && len(urls) > 0 {
		host := s.repo.ResolveExternalHost(ctx)
		for _, u := range urls {
			result.AccessURLs = append(result.AccessURLs, fmt.Sprintf("%s (external host %s)", u, host))
		}
		s.logger.Info("deployment access URLs", "namespace", namespace, "urls", result.AccessURLs)
	}

	result.Warnings = warnings
	return result, nil
}

// Delete uninstalls releaseName from namespace (§4.3.7).
func (s *Service) Delete(ctx context.Context, releaseName, namespace string) (bool, error) {
	return s.repo.Uninstall(ctx, releaseName, namespace)
}

func (s *Service) installOrUpgrade(ctx context.Context, releaseName, namespace, chartPath string, overrides map[string]string) (installed bool, err error) {
	exists, err := s.repo.ReleaseExists(ctx, releaseName, namespace)
	if err != nil {
		return false, fmt.Errorf("checking release existence: %w", err)
	}
	if exists {
		if err := s.repo.Upgrade(ctx, releaseName, namespace, chartPath, overrides); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.repo.Install(ctx, releaseName, namespace, chartPath, overrides); err != nil {
		return false, err
	}
	return true, nil
}

// assignNodePorts implements §4.3.3/4.3.4 end to end: resolve the cluster
// number and range, scan in-use and cross-process-claimed ports, assign
// each chart slot the next free one, and claim every assignment before
// returning so a concurrent deploy on this or another replica can't also
// pick it.
func (s *Service) assignNodePorts(ctx context.Context, chartPath string) (map[string]int32, map[string]string, error) {
	slots, err := s.repo.ChartDefaultNodePortSlots(chartPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading chart nodeport slots: %w", err)
	}
	if len(slots) == 0 {
		return nil, nil, nil
	}

	clusterNumber, err := s.repo.ResolveClusterNumber(ctx)
	if err != nil {
		return nil, nil, err
	}
	r, err := nodeport.RangeForCluster(clusterNumber)
	if err != nil {
		return nil, nil, err
	}

	used, err := s.repo.UsedNodePorts(ctx, "")
	if err != nil {
		return nil, nil, fmt.Errorf("scanning used nodeports: %w", err)
	}
	clusterKey := strconv.Itoa(clusterNumber)
	claimed, err := s.ports.Claimed(ctx, clusterKey)
	if err != nil {
		return nil, nil, fmt.Errorf("reading claimed nodeports: %w", err)
	}

	assignments, err := nodeport.Assign(r, slots, used, claimed)
	if err != nil {
		return nil, nil, err
	}

	overrides := make(map[string]string, len(assignments))
	assigned := make(map[string]int32, len(assignments))
	for path, port := range assignments {
		overrides[path] = strconv.Itoa(port)
		assigned[path] = int32(port)
		if _, err := s.ports.Claim(ctx, clusterKey, port); err != nil {
			s.logger.Warn("failed to record nodeport claim", "port", port, "error", err)
		}
	}
	return assigned, overrides, nil
}
