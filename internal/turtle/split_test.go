package turtle_test

import (
	"testing"

	"github.com/intend-project/inserv-orch/internal/turtle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const combinedIntentTTL = `
@prefix data5g: <http://5g4data.eu/5g4data#> .
@prefix icm: <http://tio.models.tmforum.org/tio/v3.6.0/IntentCommonModel/> .
@prefix log: <http://tio.models.tmforum.org/tio/v3.6.0/LogicalOperators/> .
@prefix dct: <http://purl.org/dc/terms/> .

data5g:I00000000000000000000000000000002 a icm:Intent ;
  dct:description "slice + deploy" ;
  log:allOf data5g:NE0001, data5g:DE0001 .

data5g:NE0001 a data5g:NetworkExpectation ;
  data5g:target data5g:network-slice .

data5g:DE0001 a data5g:DeploymentExpectation ;
  data5g:target data5g:deployment .
`

func TestSplitCombinedIntent_Partition(t *testing.T) {
	neTurtle, deTurtle, err := turtle.SplitCombinedIntent(combinedIntentTTL)
	require.NoError(t, err)

	neIntent, err := turtle.ParseIntent(neTurtle)
	require.NoError(t, err)
	deIntent, err := turtle.ParseIntent(deTurtle)
	require.NoError(t, err)

	// I5: partition, not cover.
	require.NotNil(t, neIntent.Network)
	assert.Nil(t, neIntent.Deployment)
	require.NotNil(t, deIntent.Deployment)
	assert.Nil(t, deIntent.Network)

	// Both sub-intents carry the same Intent IRI.
	assert.Equal(t, "data5g:I00000000000000000000000000000002", compactedIRI(neIntent.IRI))
	assert.Equal(t, neIntent.IRI, deIntent.IRI)
}

func TestSplitCombinedIntent_RequiresBothBranches(t *testing.T) {
	_, _, err := turtle.SplitCombinedIntent(deploymentIntentTTL)
	assert.ErrorIs(t, err, turtle.ErrNoExpectations)
}

func compactedIRI(iri string) string {
	const ns = "http://5g4data.eu/5g4data#"
	if len(iri) > len(ns) && iri[:len(ns)] == ns {
		return "data5g:" + iri[len(ns):]
	}
	return iri
}
