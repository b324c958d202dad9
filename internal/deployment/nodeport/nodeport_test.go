package nodeport

import (
	"testing"

	"github.com/intend-project/inserv-orch/internal/deployment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterNumberFromHostname(t *testing.T) {
	n, ok := ClusterNumberFromHostname("ec21-inorch-tmf-proxy")
	require.True(t, ok)
	assert.Equal(t, 21, n)

	_, ok = ClusterNumberFromHostname("some-other-node")
	assert.False(t, ok)
}

func TestRangeForCluster(t *testing.T) {
	r, err := RangeForCluster(21)
	require.NoError(t, err)
	assert.Equal(t, 30301, r.Low)
	assert.Equal(t, 30310, r.High)

	r, err = RangeForCluster(31)
	require.NoError(t, err)
	assert.Equal(t, 30401, r.Low)
	assert.Equal(t, 30410, r.High)
}

// Scenario 1: single slot, empty cluster.
func TestAssign_SingleSlotEmptyCluster(t *testing.T) {
	r, err := RangeForCluster(21)
	require.NoError(t, err)

	assignments, err := Assign(r, []string{"service.nodePort"}, map[int]bool{}, map[int]bool{})
	require.NoError(t, err)
	assert.Equal(t, 30301, assignments["service.nodePort"])
}

// Scenario 2: two slots, one port preloaded as in-use.
func TestAssign_TwoSlotsWithPreloadedPort(t *testing.T) {
	r, err := RangeForCluster(31)
	require.NoError(t, err)

	slots := []string{"services.api.nodePort", "services.worker.nodePort"}
	assignments, err := Assign(r, slots, map[int]bool{}, map[int]bool{})
	require.NoError(t, err)
	assert.Equal(t, 30401, assignments["services.api.nodePort"])
	assert.Equal(t, 30402, assignments["services.worker.nodePort"])

	used := map[int]bool{30401: true}
	assignments, err = Assign(r, slots, used, map[int]bool{})
	require.NoError(t, err)
	assert.Equal(t, 30402, assignments["services.api.nodePort"])
	assert.Equal(t, 30403, assignments["services.worker.nodePort"])
}

func TestAssign_ExhaustedRange(t *testing.T) {
	r, err := RangeForCluster(21)
	require.NoError(t, err)

	used := map[int]bool{}
	for p := r.Low; p <= r.High; p++ {
		used[p] = true
	}
	_, err = Assign(r, []string{"service.nodePort"}, used, map[int]bool{})
	assert.ErrorIs(t, err, domain.ErrNodePortExhausted)
}

func TestAssign_RespectsClaimedThisProcess(t *testing.T) {
	r, err := RangeForCluster(21)
	require.NoError(t, err)

	claimed := map[int]bool{30301: true, 30302: true}
	assignments, err := Assign(r, []string{"service.nodePort"}, map[int]bool{}, claimed)
	require.NoError(t, err)
	assert.Equal(t, 30303, assignments["service.nodePort"])
}

func TestExtractSlots(t *testing.T) {
	values := map[string]interface{}{
		"service": map[string]interface{}{"nodePort": 30020},
		"services": map[string]interface{}{
			"api":    map[string]interface{}{"nodePort": 30021},
			"worker": map[string]interface{}{"other": "field"},
		},
	}
	slots := ExtractSlots(values)
	require.Len(t, slots, 2)
	assert.Equal(t, "service.nodePort", slots[0].Path)
	assert.Equal(t, 30020, slots[0].Value)
	assert.Equal(t, "services.api.nodePort", slots[1].Path)
	assert.Equal(t, 30021, slots[1].Value)
}
