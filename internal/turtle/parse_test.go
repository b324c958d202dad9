package turtle_test

import (
	"testing"

	"github.com/intend-project/inserv-orch/internal/turtle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deploymentIntentTTL = `
@prefix data5g: <http://5g4data.eu/5g4data#> .
@prefix icm: <http://tio.models.tmforum.org/tio/v3.6.0/IntentCommonModel/> .
@prefix log: <http://tio.models.tmforum.org/tio/v3.6.0/LogicalOperators/> .
@prefix set: <http://tio.models.tmforum.org/tio/v3.6.0/SetOperators/> .
@prefix quan: <http://tio.models.tmforum.org/tio/v3.6.0/QuantityOntology/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix dct: <http://purl.org/dc/terms/> .

data5g:I00000000000000000000000000000001 a icm:Intent ;
  dct:description "deploy app" ;
  log:allOf data5g:DE00000000000000000000000000001 .

data5g:DE00000000000000000000000000001 a data5g:DeploymentExpectation ;
  data5g:target data5g:deployment ;
  log:allOf data5g:CX0001, data5g:CO0001 .

data5g:CX0001 a icm:Context ;
  data5g:Application "tokengen" ;
  data5g:DataCenter "oslo-dc1" ;
  data5g:DeploymentDescriptor "oci://registry.example/charts/tokengen:1.0.0" .

data5g:CO0001 a icm:Condition ;
  dct:description "p99 latency bound" ;
  set:forAll data5g:FA0001 .

data5g:FA0001 icm:valuesOfTargetProperty data5g:p99-token-target ;
  quan:smaller data5g:VAL0001 .

data5g:VAL0001 rdf:value 400 ;
  quan:unit "ms" .
`

func TestFindDeploymentInfo(t *testing.T) {
	info, err := turtle.FindDeploymentInfo(deploymentIntentTTL)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "oci://registry.example/charts/tokengen:1.0.0", info.ChartURL)
	assert.Equal(t, "tokengen", info.Application)
	assert.True(t, info.HasDeploymentExpectation)
}

func TestFindDeploymentInfo_NoExpectation(t *testing.T) {
	info, err := turtle.FindDeploymentInfo(`
@prefix data5g: <http://5g4data.eu/5g4data#> .
@prefix icm: <http://tio.models.tmforum.org/tio/v3.6.0/IntentCommonModel/> .
data5g:I1 a icm:Intent .
`)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestParseDeploymentExpectationObjectives_MsToSecondsConversion(t *testing.T) {
	objectives, err := turtle.ParseDeploymentExpectationObjectives(deploymentIntentTTL)
	require.NoError(t, err)
	require.Contains(t, objectives, "p99-token-target")

	obj := objectives["p99-token-target"]
	assert.Equal(t, 0.4, obj.Value)
	assert.Equal(t, "ms", obj.Unit)
	assert.Equal(t, float64(400), obj.OriginalValue)
}

func TestParseDeploymentExpectationObjectives_Empty(t *testing.T) {
	objectives, err := turtle.ParseDeploymentExpectationObjectives(`
@prefix data5g: <http://5g4data.eu/5g4data#> .
@prefix icm: <http://tio.models.tmforum.org/tio/v3.6.0/IntentCommonModel/> .
data5g:I1 a icm:Intent .
`)
	require.NoError(t, err)
	assert.Empty(t, objectives)
}

func TestFindAllExpectations_Deployment(t *testing.T) {
	ne, de, re, unknown, err := turtle.FindAllExpectations(deploymentIntentTTL)
	require.NoError(t, err)
	assert.Nil(t, ne)
	require.NotNil(t, de)
	assert.Equal(t, turtle.ExpectationDeployment, de.Kind)
	assert.Empty(t, re)
	assert.Empty(t, unknown)
}

func TestParseCondition_InRangeRejectsMixedOperators(t *testing.T) {
	_, err := turtle.ParseIntent(`
@prefix data5g: <http://5g4data.eu/5g4data#> .
@prefix icm: <http://tio.models.tmforum.org/tio/v3.6.0/IntentCommonModel/> .
@prefix log: <http://tio.models.tmforum.org/tio/v3.6.0/LogicalOperators/> .
@prefix set: <http://tio.models.tmforum.org/tio/v3.6.0/SetOperators/> .
@prefix quan: <http://tio.models.tmforum.org/tio/v3.6.0/QuantityOntology/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

data5g:I1 a icm:Intent ; log:allOf data5g:DE1 .
data5g:DE1 a data5g:DeploymentExpectation ; log:allOf data5g:CO1 .
data5g:CO1 a icm:Condition ; set:forAll data5g:FA1 .
data5g:FA1 icm:valuesOfTargetProperty data5g:p99-token-target ;
  quan:smaller data5g:V1 ;
  quan:inRange data5g:V2, data5g:V3 .
data5g:V1 rdf:value 1 ; quan:unit "s" .
data5g:V2 rdf:value 1 ; quan:unit "s" .
data5g:V3 rdf:value 2 ; quan:unit "s" .
`)
	assert.ErrorIs(t, err, turtle.ErrMixedOperators)
}

func TestParseCondition_InRangeIncomplete(t *testing.T) {
	_, err := turtle.ParseIntent(`
@prefix data5g: <http://5g4data.eu/5g4data#> .
@prefix icm: <http://tio.models.tmforum.org/tio/v3.6.0/IntentCommonModel/> .
@prefix log: <http://tio.models.tmforum.org/tio/v3.6.0/LogicalOperators/> .
@prefix set: <http://tio.models.tmforum.org/tio/v3.6.0/SetOperators/> .
@prefix quan: <http://tio.models.tmforum.org/tio/v3.6.0/QuantityOntology/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

data5g:I1 a icm:Intent ; log:allOf data5g:DE1 .
data5g:DE1 a data5g:DeploymentExpectation ; log:allOf data5g:CO1 .
data5g:CO1 a icm:Condition ; set:forAll data5g:FA1 .
data5g:FA1 icm:valuesOfTargetProperty data5g:p99-token-target ;
  quan:inRange data5g:V1 .
data5g:V1 rdf:value 1 ; quan:unit "s" .
`)
	assert.ErrorIs(t, err, turtle.ErrInRangeIncomplete)
}
