// Package kubernetes adapts the teacher's repository/application
// Kubernetes-operations style (plain client-go calls behind a narrow
// interface) to the Deployment Engine's contract: namespace/secret
// bootstrap, NodePort service scanning, ServiceAccount patching, pod
// recycling, deployment readiness, ingress creation, node hostname lookup
// for cluster-number resolution, and IDO custom-object creation. Grounded
// on helm_deployer.py's corresponding methods plus the teacher's
// repository/application/kubernetes.go call shapes.
package kubernetes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	k8s "k8s.io/client-go/kubernetes"

	"github.com/intend-project/inserv-orch/internal/deployment/domain"
)

var idoIntentGVR = schema.GroupVersionResource{Group: "ido.intel.com", Version: "v1alpha1", Resource: "intents"}
var idoKPIProfileGVR = schema.GroupVersionResource{Group: "ido.intel.com", Version: "v1alpha1", Resource: "kpiprofiles"}

// Repository implements domain.Repository's Kubernetes-facing half (the
// Helm-facing half is satisfied by internal/deployment/helm.Client; the two
// are paired by CompositeRepository in internal/deployment/service/repository.go).
type Repository struct {
	client        k8s.Interface
	dynamicClient dynamic.Interface
	logger        *slog.Logger
}

// NewRepository builds a Kubernetes-backed Repository.
func NewRepository(client k8s.Interface, dynamicClient dynamic.Interface, logger *slog.Logger) *Repository {
	return &Repository{client: client, dynamicClient: dynamicClient, logger: logger}
}

// EnsureNamespace creates namespace if absent; idempotent (§4.3.2).
func (r *Repository) EnsureNamespace(ctx context.Context, namespace string) error {
	_, err := r.client.CoreV1().Namespaces().Get(ctx, namespace, metav1.GetOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return fmt.Errorf("checking namespace %s: %w", namespace, err)
	}
	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: namespace}}
	_, err = r.client.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("creating namespace %s: %w", namespace, err)
	}
	return nil
}

// EnsureImagePullSecret copies secretName from sourceNamespace into
// namespace, stripping cluster-set metadata, unless it already exists
// there (§4.3.2: "If the secret exists, leave it in place").
func (r *Repository) EnsureImagePullSecret(ctx context.Context, namespace, secretName, sourceNamespace string) error {
	_, err := r.client.CoreV1().Secrets(namespace).Get(ctx, secretName, metav1.GetOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return fmt.Errorf("checking secret %s/%s: %w", namespace, secretName, err)
	}

	source, err := r.client.CoreV1().Secrets(sourceNamespace).Get(ctx, secretName, metav1.GetOptions{})
	if err != nil {
		if cperr := r.copySecretViaKubectl(ctx, secretName, sourceNamespace, namespace); cperr == nil {
			return nil
		}
		return fmt.Errorf("reading source secret %s/%s: %w", sourceNamespace, secretName, err)
	}

	copySecret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      secretName,
			Namespace: namespace,
			Labels:    source.Labels,
		},
		Type: source.Type,
		Data: source.Data,
	}
	_, err = r.client.CoreV1().Secrets(namespace).Create(ctx, copySecret, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("creating secret %s/%s: %w", namespace, secretName, err)
	}
	return nil
}

// copySecretViaKubectl is the degraded-mode fallback (supplemented feature
// #4) for environments where the in-process client lacks cross-namespace
// secret read permission but a kubectl binary with broader credentials is
// on PATH.
func (r *Repository) copySecretViaKubectl(ctx context.Context, secretName, sourceNamespace, namespace string) error {
	getCmd := exec.CommandContext(ctx, "kubectl", "get", "secret", secretName, "-n", sourceNamespace, "-o", "json")
	out, err := getCmd.Output()
	if err != nil {
		return fmt.Errorf("kubectl get secret fallback: %w", err)
	}
	var source corev1.Secret
	if err := json.Unmarshal(out, &source); err != nil {
		return fmt.Errorf("decoding kubectl secret fallback output: %w", err)
	}
	copySecret := corev1.Secret{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{Name: secretName, Namespace: namespace, Labels: source.Labels},
		Type:       source.Type,
		Data:       source.Data,
	}
	manifest, err := json.Marshal(copySecret)
	if err != nil {
		return fmt.Errorf("encoding kubectl secret fallback manifest: %w", err)
	}
	applyCmd := exec.CommandContext(ctx, "kubectl", "apply", "-n", namespace, "-f", "-")
	applyCmd.Stdin = strings.NewReader(string(manifest))
	if err := applyCmd.Run(); err != nil {
		return fmt.Errorf("kubectl apply secret fallback: %w", err)
	}
	r.logger.Warn("copied image pull secret via kubectl fallback", "secret", secretName, "namespace", namespace)
	return nil
}

// CopySecretViaKubectl exposes the fallback path directly for callers
// that want to force it; EnsureImagePullSecret uses the unexported
// copySecretViaKubectl itself.
func (r *Repository) CopySecretViaKubectl(ctx context.Context, secretName, sourceNamespace, namespace string) error {
	return r.copySecretViaKubectl(ctx, secretName, sourceNamespace, namespace)
}

var hostnamePattern = regexp.MustCompile(`^ec(\d+)-inorch-tmf-proxy$`)

// ResolveClusterNumber scans node hostnames (the kubernetes.io/hostname
// label, falling back to .Name) for one matching ^ec(\d+)-inorch-tmf-proxy$
// and returns n (§4.3.3).
func (r *Repository) ResolveClusterNumber(ctx context.Context) (int, error) {
	nodes, err := r.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("listing nodes: %w", err)
	}
	for _, node := range nodes.Items {
		hostname := node.Labels["kubernetes.io/hostname"]
		if hostname == "" {
			hostname = node.Name
		}
		if m := hostnamePattern.FindStringSubmatch(hostname); m != nil {
			var n int
			if _, err := fmt.Sscanf(m[1], "%d", &n); err == nil {
				return n, nil
			}
		}
	}
	return 0, domain.ErrClusterNumberUnresolvable
}

// UsedNodePorts returns every NodePort currently claimed by a NodePort (or
// LoadBalancer, which also allocates one) Service across the cluster.
func (r *Repository) UsedNodePorts(ctx context.Context, _ string) (map[int]bool, error) {
	services, err := r.client.CoreV1().Services("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	used := make(map[int]bool)
	for _, svc := range services.Items {
		if svc.Spec.Type != corev1.ServiceTypeNodePort && svc.Spec.Type != corev1.ServiceTypeLoadBalancer {
			continue
		}
		for _, port := range svc.Spec.Ports {
			if port.NodePort != 0 {
				used[int(port.NodePort)] = true
			}
		}
	}
	return used, nil
}

// PatchServiceAccountsWithSecret adds secretName to every ServiceAccount's
// imagePullSecrets in namespace, idempotently (§4.3.5 step 4a).
func (r *Repository) PatchServiceAccountsWithSecret(ctx context.Context, namespace, secretName string) error {
	accounts, err := r.client.CoreV1().ServiceAccounts(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("listing serviceaccounts in %s: %w", namespace, err)
	}
	for _, sa := range accounts.Items {
		if hasImagePullSecret(sa.ImagePullSecrets, secretName) {
			continue
		}
		sa.ImagePullSecrets = append(sa.ImagePullSecrets, corev1.LocalObjectReference{Name: secretName})
		if _, err := r.client.CoreV1().ServiceAccounts(namespace).Update(ctx, &sa, metav1.UpdateOptions{}); err != nil {
			if apierrors.IsConflict(err) {
				continue // another replica already patched it; benign
			}
			return fmt.Errorf("patching serviceaccount %s/%s: %w", namespace, sa.Name, err)
		}
	}
	return nil
}

func hasImagePullSecret(refs []corev1.LocalObjectReference, name string) bool {
	for _, ref := range refs {
		if ref.Name == name {
			return true
		}
	}
	return false
}

// DeletePodsInNamespace deletes every pod in namespace with the given
// grace period, so they're recreated under the just-patched ServiceAccount
// (§4.3.5 step 4b).
func (r *Repository) DeletePodsInNamespace(ctx context.Context, namespace string, gracePeriodSeconds int64) error {
	pods, err := r.client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("listing pods in %s: %w", namespace, err)
	}
	opts := metav1.DeleteOptions{GracePeriodSeconds: &gracePeriodSeconds}
	for _, pod := range pods.Items {
		if err := r.client.CoreV1().Pods(namespace).Delete(ctx, pod.Name, opts); err != nil && !apierrors.IsNotFound(err) {
			return fmt.Errorf("deleting pod %s/%s: %w", namespace, pod.Name, err)
		}
	}
	return nil
}

// WaitForDeploymentsReady polls every Deployment labeled
// app.kubernetes.io/instance=releaseName until readyReplicas>=replicas or
// perDeploymentTimeout seconds elapse per deployment; unready deployments
// are returned as warning strings, never as an error (§4.3.5 step 5).
func (r *Repository) WaitForDeploymentsReady(ctx context.Context, namespace, releaseName string, perDeploymentTimeout int) []string {
	selector := fmt.Sprintf("app.kubernetes.io/instance=%s", releaseName)
	deployments, err := r.client.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return []string{fmt.Sprintf("listing deployments for readiness wait: %v", err)}
	}

	var warnings []string
	for _, dep := range deployments.Items {
		if !r.waitOneDeploymentReady(ctx, namespace, dep.Name, perDeploymentTimeout) {
			warnings = append(warnings, fmt.Sprintf("deployment %s/%s did not reach readiness within %ds", namespace, dep.Name, perDeploymentTimeout))
		}
	}
	return warnings
}

func (r *Repository) waitOneDeploymentReady(ctx context.Context, namespace, name string, timeoutSeconds int) bool {
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	for time.Now().Before(deadline) {
		dep, err := r.client.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if err == nil && dep.Spec.Replicas != nil && dep.Status.ReadyReplicas >= *dep.Spec.Replicas {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(2 * time.Second):
		}
	}
	return false
}

// EnsureIngressForLoadBalancers creates a path-based Ingress for each
// LoadBalancer service in namespace that doesn't already have one
// (§4.3.5 step 6). Existing Ingresses are left untouched, making this safe
// to call unconditionally from both Install and Upgrade (DESIGN.md Open
// Question #3).
func (r *Repository) EnsureIngressForLoadBalancers(ctx context.Context, namespace, ingressClass, ingressHost string) error {
	services, err := r.client.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("listing services in %s: %w", namespace, err)
	}

	existingBackends := make(map[string]bool)
	ingresses, err := r.client.NetworkingV1().Ingresses(namespace).List(ctx, metav1.ListOptions{})
	if err == nil {
		for _, ing := range ingresses.Items {
			for _, rule := range ing.Spec.Rules {
				if rule.HTTP == nil {
					continue
				}
				for _, path := range rule.HTTP.Paths {
					if path.Backend.Service != nil {
						existingBackends[path.Backend.Service.Name] = true
					}
				}
			}
		}
	}

	for _, svc := range services.Items {
		if svc.Spec.Type != corev1.ServiceTypeLoadBalancer || existingBackends[svc.Name] {
			continue
		}
		if err := r.createServiceIngress(ctx, namespace, ingressClass, ingressHost, svc); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) createServiceIngress(ctx context.Context, namespace, ingressClass, ingressHost string, svc corev1.Service) error {
	if len(svc.Spec.Ports) == 0 {
		return nil
	}
	pathType := networkingv1.PathTypeImplementationSpecific
	rewriteTarget := "/$2"
	ingress := &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{
			Name:      svc.Name,
			Namespace: namespace,
			Annotations: map[string]string{
				"nginx.ingress.kubernetes.io/rewrite-target": rewriteTarget,
				"nginx.ingress.kubernetes.io/use-regex":      "true",
			},
		},
		Spec: networkingv1.IngressSpec{
			IngressClassName: &ingressClass,
			Rules: []networkingv1.IngressRule{
				{
					Host: ingressHost,
					IngressRuleValue: networkingv1.IngressRuleValue{
						HTTP: &networkingv1.HTTPIngressRuleValue{
							Paths: []networkingv1.HTTPIngressPath{
								{
									Path:     fmt.Sprintf("/%s(/|$)(.*)", svc.Name),
									PathType: &pathType,
									Backend: networkingv1.IngressBackend{
										Service: &networkingv1.IngressServiceBackend{
											Name: svc.Name,
											Port: networkingv1.ServiceBackendPort{Number: svc.Spec.Ports[0].Port},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
	_, err := r.client.NetworkingV1().Ingresses(namespace).Create(ctx, ingress, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("creating ingress for service %s: %w", svc.Name, err)
	}
	return nil
}

// NodePortServiceURLs lists "<service-name>:<nodePort>" entries for the
// NodePort services in namespace, for the access-URL log line (§4.3.5 step 8).
func (r *Repository) NodePortServiceURLs(ctx context.Context, namespace string) ([]string, error) {
	services, err := r.client.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing services in %s: %w", namespace, err)
	}
	var urls []string
	for _, svc := range services.Items {
		if svc.Spec.Type != corev1.ServiceTypeNodePort {
			continue
		}
		for _, port := range svc.Spec.Ports {
			if port.NodePort != 0 {
				urls = append(urls, fmt.Sprintf("%s:%d", svc.Name, port.NodePort))
			}
		}
	}
	return urls, nil
}

// ResolveExternalHost implements the fallback chain from supplemented
// feature #3: hostname -f, then a 129.242.x.x-range node IP, then any node
// InternalIP, then a minikube-style IP. Failures at each step are silent;
// this only ever feeds a log line, never an invariant.
func (r *Repository) ResolveExternalHost(ctx context.Context) string {
	if out, err := exec.CommandContext(ctx, "hostname", "-f").Output(); err == nil {
		if host := strings.TrimSpace(string(out)); host != "" {
			return host
		}
	}

	nodes, err := r.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil || len(nodes.Items) == 0 {
		return "localhost"
	}

	var internalIP string
	for _, node := range nodes.Items {
		for _, addr := range node.Status.Addresses {
			if addr.Type != corev1.NodeInternalIP && addr.Type != corev1.NodeExternalIP {
				continue
			}
			if strings.HasPrefix(addr.Address, "129.242.") {
				return addr.Address
			}
			if addr.Type == corev1.NodeInternalIP && internalIP == "" {
				internalIP = addr.Address
			}
		}
	}
	if internalIP != "" {
		return internalIP
	}

	if out, err := exec.CommandContext(ctx, "minikube", "ip").Output(); err == nil {
		if ip := strings.TrimSpace(string(out)); ip != "" {
			return ip
		}
	}
	return "localhost"
}

// CreateOrUpdateKPIProfile creates the ido.intel.com/v1alpha1 KPIProfile
// custom resource for one objective (§4.3.6). "Already exists" is benign:
// an existing KPIProfile of that name is left unchanged, not updated.
func (r *Repository) CreateOrUpdateKPIProfile(ctx context.Context, namespace string, profile domain.KPIProfile) error {
	obj := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "ido.intel.com/v1alpha1",
			"kind":       "KPIProfile",
			"metadata": map[string]interface{}{
				"name":      profile.Name,
				"namespace": namespace,
			},
			"spec": map[string]interface{}{
				"type":               profile.Type,
				"description":        profile.Description,
				"query":              profile.Query,
				"endpoint":           profile.Endpoint,
				"reportingFrequency": profile.ReportingFrequency,
			},
		},
	}
	_, err := r.dynamicClient.Resource(idoKPIProfileGVR).Namespace(namespace).Create(ctx, obj, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating KPIProfile %s/%s: %w", namespace, profile.Name, err)
	}
	return nil
}

// CreateOrUpdateIDOIntent creates the ido.intel.com/v1alpha1 Intent custom
// resource naming the objective(s) this deployment declared (§4.3.6). An
// existing Intent of that name is left unchanged, not updated.
func (r *Repository) CreateOrUpdateIDOIntent(ctx context.Context, intent domain.IDOIntent) error {
	objectives := make([]interface{}, 0, len(intent.Objectives))
	for _, o := range intent.Objectives {
		objectives = append(objectives, map[string]interface{}{
			"name":       o.Name,
			"value":      o.Value,
			"measuredBy": o.MeasuredBy,
		})
	}
	obj := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "ido.intel.com/v1alpha1",
			"kind":       "Intent",
			"metadata": map[string]interface{}{
				"name":      intent.Name,
				"namespace": intent.Namespace,
			},
			"spec": map[string]interface{}{
				"objectives": objectives,
			},
		},
	}
	_, err := r.dynamicClient.Resource(idoIntentGVR).Namespace(intent.Namespace).Create(ctx, obj, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating IDO Intent %s/%s: %w", intent.Namespace, intent.Name, err)
	}
	return nil
}
