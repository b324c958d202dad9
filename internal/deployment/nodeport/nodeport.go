// Package nodeport implements the pure arithmetic of §4.3.3/4.3.4: deriving
// a cluster's reserved NodePort decahedron from its node hostname, and
// assigning chart-declared NodePort slots out of that range while avoiding
// ports already in use on the cluster or already claimed this process
// lifetime. No I/O lives here; the caller supplies the used-port set and
// hostname, grounded on helm_deployer.py's `_get_datacenter_number`,
// `_get_cluster_nodeport_range`, `_find_available_nodeport`.
package nodeport

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/intend-project/inserv-orch/internal/deployment/domain"
)

var hostnamePattern = regexp.MustCompile(`^ec(\d+)-inorch-tmf-proxy$`)

const (
	rangeBase = 30100
	rangeSize = 10
	minPort   = 30000
	maxPort   = 32767
)

// ClusterNumberFromHostname extracts n from a hostname matching
// ^ec(\d+)-inorch-tmf-proxy$. ok is false when the hostname doesn't match,
// per §4.3.3's "refuse to deploy" contract.
func ClusterNumberFromHostname(hostname string) (n int, ok bool) {
	m := hostnamePattern.FindStringSubmatch(hostname)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// RangeForCluster computes the reserved decahedron [30100+10n-9, 30100+10n]
// for cluster number n, rejecting ranges outside [30000, 32767].
func RangeForCluster(n int) (domain.NodePortRange, error) {
	high := rangeBase + rangeSize*n
	low := high - (rangeSize - 1)
	r := domain.NodePortRange{ClusterNumber: n, Low: low, High: high}
	if low < minPort || high > maxPort {
		return domain.NodePortRange{}, domain.ErrNodePortRangeInvalid
	}
	return r, nil
}

// Assign walks slots in declaration order and, for each, picks the lowest
// port in the range not present in used or claimedThisProcess, adding its
// own picks to claimedThisProcess as it goes so two slots never collide.
// Returns an error with no partial assignment if the range is exhausted.
func Assign(r domain.NodePortRange, slots []string, used map[int]bool, claimedThisProcess map[int]bool) (map[string]int, error) {
	taken := make(map[int]bool, len(used)+len(claimedThisProcess))
	for p := range used {
		taken[p] = true
	}
	for p := range claimedThisProcess {
		taken[p] = true
	}

	assignments := make(map[string]int, len(slots))
	for _, slot := range slots {
		port, ok := nextFree(r, taken)
		if !ok {
			return nil, fmt.Errorf("%w: cluster %d range [%d,%d], %d slots requested",
				domain.ErrNodePortExhausted, r.ClusterNumber, r.Low, r.High, len(slots))
		}
		taken[port] = true
		assignments[slot] = port
	}
	return assignments, nil
}

func nextFree(r domain.NodePortRange, taken map[int]bool) (int, bool) {
	for p := r.Low; p <= r.High; p++ {
		if !taken[p] {
			return p, true
		}
	}
	return 0, false
}

// ChartSlotPath is one location in a chart's default values where a
// NodePort integer was declared, identified by the dotted path used as the
// Helm `--set` override key.
type ChartSlotPath struct {
	Path  string
	Value int
}

// ExtractSlots walks a decoded values.yaml (already unmarshalled into
// map[string]interface{}) and collects every integer reachable under a key
// path named `service.nodePort` or `services.<name>.nodePort`, in a
// deterministic (sorted-path) order — matching
// `_extract_nodeports_from_chart`'s declared-order contract closely enough
// that two runs over the same chart always assign ports to the same slots.
func ExtractSlots(values map[string]interface{}) []ChartSlotPath {
	var out []ChartSlotPath

	if svc, ok := values["service"].(map[string]interface{}); ok {
		if np, ok := asInt(svc["nodePort"]); ok {
			out = append(out, ChartSlotPath{Path: "service.nodePort", Value: np})
		}
	}

	if services, ok := values["services"].(map[string]interface{}); ok {
		names := make([]string, 0, len(services))
		for name := range services {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			svc, ok := services[name].(map[string]interface{})
			if !ok {
				continue
			}
			if np, ok := asInt(svc["nodePort"]); ok {
				out = append(out, ChartSlotPath{Path: fmt.Sprintf("services.%s.nodePort", name), Value: np})
			}
		}
	}

	return out
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
