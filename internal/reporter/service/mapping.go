package service

import (
	"strings"

	"github.com/intend-project/inserv-orch/internal/reporter/domain"
	"github.com/intend-project/inserv-orch/internal/turtle"
)

// mapKPIToCondition implements §4.4.2: find the IDO objective whose
// measuredBy names kpiName, then a Condition in the parsed Turtle whose
// target-property IRI contains that objective's name. intent.Conditions is
// a map, so when several Conditions match, which one is returned is not
// defined. Either miss returns ok=false, the signal to skip this KPI with a
// warning.
func mapKPIToCondition(intent *turtle.Intent, objectives []domain.IDOObjective, kpiName string) (conditionID, objectiveName string, ok bool) {
	objectiveName, ok = findObjectiveForKPI(objectives, kpiName)
	if !ok {
		return "", "", false
	}

	for _, cond := range intent.Conditions {
		if strings.Contains(cond.TargetProperty, objectiveName) {
			return cond.ID, objectiveName, true
		}
	}
	return "", "", false
}

func findObjectiveForKPI(objectives []domain.IDOObjective, kpiName string) (string, bool) {
	for _, o := range objectives {
		if o.MeasuredBy == "intend/"+kpiName || strings.HasSuffix(o.MeasuredBy, "/"+kpiName) {
			return o.Name, true
		}
	}
	return "", false
}

// defaultUnitForKPIType is the §4.4.3 fallback when parsing never saw the
// objective at all.
func defaultUnitForKPIType(kpiType string) string {
	if kpiType == "bandwidth" {
		return "Mbps"
	}
	return "ms"
}

// determineUnit implements §4.4.3. objectives is keyed by objective name,
// already ms->s converted by turtle.ParseDeploymentExpectationObjectives;
// its Unit field carries the originally-declared (lowercased) unit string.
func determineUnit(objectives map[string]turtle.Objective, objectiveName, kpiType string) string {
	obj, ok := objectives[objectiveName]
	if !ok {
		return defaultUnitForKPIType(kpiType)
	}
	switch obj.Unit {
	case "ms":
		return "s"
	case "s", "sec", "seconds":
		return "s"
	case "mbps", "mb/s":
		return "Mbps"
	default:
		return obj.Unit
	}
}
