// Package service implements the C2 Intent Router's classify-route-
// dispatch state machine (§4.2), grounded on the teacher's
// internal/application/service orchestration layering: a service struct
// holding only narrow ports (graph store, datacenter resolver, dispatcher)
// and sequencing calls onto them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	infra6domain "github.com/intend-project/inserv-orch/internal/infra6/domain"
	"github.com/intend-project/inserv-orch/internal/intentrouter/domain"
	"github.com/intend-project/inserv-orch/internal/turtle"
)

// Service implements domain.Service.
type Service struct {
	graph      domain.GraphStore
	datacenter domain.DataCenterResolver
	dispatcher domain.DownstreamDispatcher
	deployer   domain.DeploymentDispatcher
	innetURL   string
	innetReady bool
	inorchURL  string
	logger     *slog.Logger
}

// NewService builds the Intent Router service.
func NewService(graph domain.GraphStore, datacenter domain.DataCenterResolver, dispatcher domain.DownstreamDispatcher, deployer domain.DeploymentDispatcher, innetURL string, innetReady bool, inorchURL string, logger *slog.Logger) *Service {
	return &Service{
		graph:      graph,
		datacenter: datacenter,
		dispatcher: dispatcher,
		deployer:   deployer,
		innetURL:   innetURL,
		innetReady: innetReady,
		inorchURL:  inorchURL,
		logger:     logger,
	}
}

var _ domain.Service = (*Service)(nil)

// Route classifies req's Turtle body and dispatches it per §4.2's state
// machine, returning the worst status of the two branches for a combined
// intent.
func (s *Service) Route(ctx context.Context, req domain.IntentRequest, datacenterID string) (*domain.RouteResult, error) {
	handlerURL, err := s.resolveDataCenter(ctx, datacenterID)
	if err != nil {
		return nil, err
	}

	ne, de, _, unknown, err := turtle.FindAllExpectations(req.TurtleBody)
	if err != nil {
		return nil, fmt.Errorf("parsing intent: %w", err)
	}

	switch classify(ne, de, unknown) {
	case domain.ClassifyNetwork:
		return s.routeNetwork(ctx, req, handlerURL)
	case domain.ClassifyDeployment:
		return s.routeDeployment(ctx, req, datacenterID)
	case domain.ClassifyCombined:
		return s.routeCombined(ctx, req, handlerURL, datacenterID)
	default:
		s.logger.Warn("intent classified as unknown, falling back to deployment routing", "intent_name", req.Name)
		return s.routeDeployment(ctx, req, datacenterID)
	}
}

func classify(ne, de *turtle.Expectation, unknown []*turtle.Expectation) domain.Classification {
	switch {
	case ne != nil && de != nil:
		return domain.ClassifyCombined
	case ne != nil:
		return domain.ClassifyNetwork
	case de != nil:
		return domain.ClassifyDeployment
	case len(unknown) > 0:
		return domain.ClassifyUnknown
	default:
		return domain.ClassifyUnknown
	}
}

func (s *Service) resolveDataCenter(ctx context.Context, datacenterID string) (string, error) {
	if datacenterID == "" {
		return "", nil
	}
	url, err := s.datacenter.ResolveHandlerURL(ctx, datacenterID)
	if err == nil {
		return url, nil
	}
	if errors.Is(err, domain.ErrDataCenterNotFound) || errors.Is(err, infra6domain.ErrDataCenterNotFound) {
		return "", domain.ErrDataCenterNotFound
	}
	return "", fmt.Errorf("%w: %v", domain.ErrGraphUnavailable, err)
}

// routeNetwork implements CLASSIFIED:NETWORK → DISPATCHED_NETWORK →
// ACK | ABSORBED_AS_RECEIVED.
func (s *Service) routeNetwork(ctx context.Context, req domain.IntentRequest, handlerURL string) (*domain.RouteResult, error) {
	if !s.innetReady {
		return s.absorbAsReceived(ctx, req)
	}
	status, body, err := s.dispatcher.Dispatch(ctx, firstNonEmpty(handlerURL, s.innetURL), req)
	if err != nil {
		return nil, err
	}
	return &domain.RouteResult{StatusCode: status, Body: body}, nil
}

// routeDeployment implements CLASSIFIED:DEPLOYMENT → DISPATCHED_DEPLOY → ACK.
func (s *Service) routeDeployment(ctx context.Context, req domain.IntentRequest, datacenterID string) (*domain.RouteResult, error) {
	intentID, err := s.graph.StoreIntent(ctx, req.TurtleBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGraphUnavailable, err)
	}

	status, body, err := s.deployer.DispatchDeployment(ctx, intentID, req.TurtleBody, datacenterID)
	if err != nil {
		return nil, err
	}
	return &domain.RouteResult{StatusCode: status, Body: body}, nil
}

// routeCombined implements CLASSIFIED:COMBINED → SPLIT →
// DISPATCHED_NETWORK ∥ DISPATCHED_DEPLOY → BUNDLE_ACK, issuing network
// before deployment (§4.2 ordering guarantee, §5).
func (s *Service) routeCombined(ctx context.Context, req domain.IntentRequest, handlerURL, datacenterID string) (*domain.RouteResult, error) {
	neTurtle, deTurtle, err := turtle.SplitCombinedIntent(req.TurtleBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSplitFailed, err)
	}

	neReq := req
	neReq.TurtleBody = neTurtle
	neResult, err := s.routeNetwork(ctx, neReq, handlerURL)
	if err != nil {
		return nil, err
	}

	deReq := req
	deReq.TurtleBody = deTurtle
	deResult, err := s.routeDeployment(ctx, deReq, datacenterID)
	if err != nil {
		return nil, err
	}

	worst := neResult.StatusCode
	if deResult.StatusCode > worst {
		worst = deResult.StatusCode
	}

	return &domain.RouteResult{
		StatusCode: worst,
		IsBundle:   true,
		SubIntents: []domain.SubIntentResult{
			{Kind: "network", StatusCode: neResult.StatusCode, Body: neResult.Body},
			{Kind: "deployment", StatusCode: deResult.StatusCode, Body: deResult.Body},
		},
		Body: map[string]interface{}{
			"isBundle": true,
			"intents": []map[string]interface{}{
				neResult.Body,
				deResult.Body,
			},
		},
	}, nil
}

// absorbAsReceived implements the only locally-owned branch: persist the
// intent and its first report as received, and answer 200 as if a
// downstream network handler had accepted it (§4.2).
func (s *Service) absorbAsReceived(ctx context.Context, req domain.IntentRequest) (*domain.RouteResult, error) {
	intentID, err := s.graph.StoreIntent(ctx, req.TurtleBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGraphUnavailable, err)
	}

	reportTTL := renderReceivedReport(intentID)
	if _, err := s.graph.StoreIntentReport(ctx, reportTTL); err != nil {
		s.logger.Warn("failed to store StateIntentReceived report", "intent_id", intentID, "error", err)
	}

	return &domain.RouteResult{
		StatusCode: 200,
		Body: map[string]interface{}{
			"@type": "Intent",
			"id":    intentID,
			"state": "StateIntentReceived",
		},
	}, nil
}

func renderReceivedReport(intentID string) string {
	reportID := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf(`@prefix data5g: <http://5g4data.eu/5g4data#> .
@prefix icm: <http://tio.models.tmforum.org/tio/v3.6.0/IntentCommonModel/> .

data5g:RP%s a icm:IntentReport ;
  icm:about data5g:I%s ;
  icm:reportNumber 1 ;
  icm:intentHandlingState "StateIntentReceived" .
`, reportID, intentID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
