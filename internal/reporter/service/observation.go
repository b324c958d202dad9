package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// renderObservation builds the Turtle document for one tick (§4.4.5).
// objectiveName is the Condition's target-property local name, not the KPI
// name, per the spec's explicit note.
func renderObservation(objectiveName, conditionID string, value float64, unit string, obtainedAt time.Time) string {
	id := newObservationID()
	return fmt.Sprintf(`@prefix data5g: <http://5g4data.eu/5g4data#> .
@prefix met: <http://5g4data.eu/met#> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix quan: <http://tio.models.tmforum.org/tio/v3.6.0/QuantityOntology/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

data5g:%s a met:Observation ;
  met:observedMetric data5g:%s_%s ;
  met:observedValue [ rdf:value %.3f ; quan:unit "%s" ] ;
  met:obtainedAt "%s"^^xsd:dateTime .
`, id, objectiveName, conditionID, value, unit, obtainedAt.UTC().Format(time.RFC3339))
}

func newObservationID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "OB" + hex[:16]
}

// metricName is the id the metadata registration (§4.4.6) and the
// federated SPARQL template key off: the same `<objective>_<condition>`
// composite Observations use as their observedMetric local name.
func metricName(objectiveName, conditionID string) string {
	return objectiveName + "_" + conditionID
}
