package client

import (
	"context"
	"fmt"

	deploydomain "github.com/intend-project/inserv-orch/internal/deployment/domain"
	"github.com/intend-project/inserv-orch/internal/intentrouter/domain"
	reporterdomain "github.com/intend-project/inserv-orch/internal/reporter/domain"
	"github.com/intend-project/inserv-orch/internal/turtle"
)

// DeploymentAdapter bridges C2 to C3 (install/upgrade the chart) and C4
// (start observation reporting for whatever KPIProfiles C3 created),
// translating the HTTP-shaped contract the router expects onto both
// services' narrower native contracts.
type DeploymentAdapter struct {
	deployer deploydomain.Service
	reporter reporterdomain.Service
}

// NewDeploymentAdapter builds the C3/C4 bridge.
func NewDeploymentAdapter(deployer deploydomain.Service, reporter reporterdomain.Service) *DeploymentAdapter {
	return &DeploymentAdapter{deployer: deployer, reporter: reporter}
}

var _ domain.DeploymentDispatcher = (*DeploymentAdapter)(nil)

// DispatchDeployment parses the deployment-concern Turtle document,
// installs or upgrades the chart via C3, and on success starts C4
// reporting for the resulting KPIProfiles.
func (d *DeploymentAdapter) DispatchDeployment(ctx context.Context, intentID, turtleBody, datacenterID string) (int, map[string]interface{}, error) {
	info, err := turtle.FindDeploymentInfo(turtleBody)
	if err != nil {
		return 0, nil, fmt.Errorf("parsing deployment info: %w", err)
	}
	if info == nil {
		return 400, map[string]interface{}{"error": "no DeploymentExpectation with a usable Context found"}, nil
	}

	parsedObjectives, err := turtle.ParseDeploymentExpectationObjectives(turtleBody)
	if err != nil {
		return 0, nil, fmt.Errorf("parsing deployment objectives: %w", err)
	}

	req := deploydomain.Request{
		IntentID:    intentID,
		Application: info.Application,
		ChartURL:    info.ChartURL,
		DataCenter:  datacenterID,
		Objectives:  convertObjectives(parsedObjectives),
		IntentTTL:   turtleBody,
	}

	result, err := d.deployer.Deploy(ctx, req)
	if err != nil {
		return 500, map[string]interface{}{
			"@type": "Intent",
			"id":    intentID,
			"error": err.Error(),
		}, nil
	}

	if len(result.KPIProfiles) > 0 {
		if err := d.reporter.StartReporting(ctx, reporterdomain.StartRequest{
			IntentID:      intentID,
			Namespace:     result.Namespace,
			TurtleBody:    turtleBody,
			KPIProfiles:   convertKPIProfiles(result.KPIProfiles),
			IDOObjectives: buildIDOObjectives(result),
		}); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("reporting start: %v", err))
		}
	}

	status := 201
	if !result.Installed {
		status = 200
	}

	return status, map[string]interface{}{
		"@type":         "Intent",
		"id":            intentID,
		"releaseName":   result.ReleaseName,
		"namespace":     result.Namespace,
		"installed":     result.Installed,
		"assignedPorts": result.AssignedPorts,
		"accessUrls":    result.AccessURLs,
		"warnings":      result.Warnings,
	}, nil
}

func convertObjectives(parsed map[string]turtle.Objective) map[string]deploydomain.Objective {
	out := make(map[string]deploydomain.Objective, len(parsed))
	for name, o := range parsed {
		out[name] = deploydomain.Objective{Value: o.Value, Unit: o.Unit, OriginalValue: o.OriginalValue}
	}
	return out
}

func convertKPIProfiles(profiles []deploydomain.KPIProfile) []reporterdomain.KPIProfile {
	out := make([]reporterdomain.KPIProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, reporterdomain.KPIProfile{
			Name:               p.Name,
			Type:               p.Type,
			Query:              p.Query,
			Endpoint:           p.Endpoint,
			ReportingFrequency: p.ReportingFrequency,
		})
	}
	return out
}

func buildIDOObjectives(result *deploydomain.Result) []reporterdomain.IDOObjective {
	out := make([]reporterdomain.IDOObjective, 0, len(result.KPIProfiles))
	for _, p := range result.KPIProfiles {
		out = append(out, reporterdomain.IDOObjective{
			Name:       p.ObjectiveName,
			MeasuredBy: fmt.Sprintf("%s/%s", result.Namespace, p.Name),
		})
	}
	return out
}
