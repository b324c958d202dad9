package service

import (
	"testing"
	"time"

	"github.com/intend-project/inserv-orch/internal/reporter/domain"
	"github.com/intend-project/inserv-orch/internal/turtle"
	"github.com/stretchr/testify/assert"
)

func TestMapKPIToCondition(t *testing.T) {
	intent := &turtle.Intent{
		Conditions: map[string]*turtle.Condition{
			"http://5g4data.eu/5g4data#CO1": {ID: "CO1", TargetProperty: "http://5g4data.eu/5g4data#p99-token-target"},
		},
	}
	objectives := []domain.IDOObjective{
		{Name: "p99-token-target", MeasuredBy: "ns/p99token-ns"},
	}

	conditionID, objectiveName, ok := mapKPIToCondition(intent, objectives, "p99token-ns")
	assert.True(t, ok)
	assert.Equal(t, "CO1", conditionID)
	assert.Equal(t, "p99-token-target", objectiveName)
}

func TestMapKPIToCondition_NoMatch(t *testing.T) {
	intent := &turtle.Intent{Conditions: map[string]*turtle.Condition{}}
	_, _, ok := mapKPIToCondition(intent, nil, "unknown-kpi")
	assert.False(t, ok)
}

func TestDetermineUnit(t *testing.T) {
	objectives := map[string]turtle.Objective{
		"p99-token-target": {Value: 0.4, Unit: "ms", OriginalValue: 400},
		"throughput":       {Value: 50, Unit: "mbps", OriginalValue: 50},
	}

	assert.Equal(t, "s", determineUnit(objectives, "p99-token-target", "latency"))
	assert.Equal(t, "Mbps", determineUnit(objectives, "throughput", "bandwidth"))
	assert.Equal(t, "ms", determineUnit(objectives, "missing-objective", "latency"))
	assert.Equal(t, "Mbps", determineUnit(objectives, "missing-objective", "bandwidth"))
}

func TestClampFrequency(t *testing.T) {
	s := &Service{}
	s.minFrequency = 5 * time.Second
	s.maxFrequency = 300 * time.Second
	s.defaultFreq = 30 * time.Second

	assert.Equal(t, 30*time.Second, s.clampFrequency(0))
	assert.Equal(t, 5*time.Second, s.clampFrequency(1))
	assert.Equal(t, 300*time.Second, s.clampFrequency(1000))
	assert.Equal(t, 60*time.Second, s.clampFrequency(60))
}
