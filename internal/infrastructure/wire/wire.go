//go:build wireinject
// +build wireinject

package wire

import (
	"log/slog"

	"github.com/google/wire"
	"k8s.io/client-go/dynamic"
	kubernetes "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/intend-project/inserv-orch/internal/config"
	deploydomain "github.com/intend-project/inserv-orch/internal/deployment/domain"
	deployhelm "github.com/intend-project/inserv-orch/internal/deployment/helm"
	deploykube "github.com/intend-project/inserv-orch/internal/deployment/repository/kubernetes"
	deploysvc "github.com/intend-project/inserv-orch/internal/deployment/service"
	"github.com/intend-project/inserv-orch/internal/graphstore"
	infra6repo "github.com/intend-project/inserv-orch/internal/infra6/repository"
	infra6svc "github.com/intend-project/inserv-orch/internal/infra6/service"
	intentclient "github.com/intend-project/inserv-orch/internal/intentrouter/client"
	intenthandler "github.com/intend-project/inserv-orch/internal/intentrouter/handler"
	intentsvc "github.com/intend-project/inserv-orch/internal/intentrouter/service"
	"github.com/intend-project/inserv-orch/internal/logging"
	reporterprom "github.com/intend-project/inserv-orch/internal/reporter/prometheus"
	reportersvc "github.com/intend-project/inserv-orch/internal/reporter/service"
	"github.com/intend-project/inserv-orch/internal/redis"
)

// DeploymentSet wires C3: the Kubernetes+Helm repository, Redis-backed port
// cache, and the orchestration service that sits over them.
var DeploymentSet = wire.NewSet(
	deploykube.NewRepository,
	deployhelm.NewClient,
	ProvideChartCacheDir,
	deploysvc.NewCompositeRepository,
	ProvideDeploymentRepository,
	deploysvc.NewPortCache,
	ProvideDeploymentPortCache,
	ProvideDeployDefaultFrequency,
	ProvideInCluster,
	deploysvc.NewService,
	ProvideDeploymentService,
)

// ReporterSet wires C4: the Prometheus querier, metadata cache, and the
// ticker-driven observation service.
var ReporterSet = wire.NewSet(
	reporterprom.NewClient,
	ProvidePrometheusQuerier,
	reportersvc.NewMetadataCache,
	ProvideReporterFrequencies,
	ProvideGraphRepositoryName,
	reportersvc.NewService,
	ProvideReporterService,
)

// Infra6Set wires C6, the DataCenter-to-handler-URL resolver.
var Infra6Set = wire.NewSet(
	ProvideGraphQuerier,
	infra6repo.NewRepository,
	ProvideDataCenterResolver,
	infra6svc.NewService,
	ProvideInfra6Resolver,
)

// IntentRouterSet wires C2: the downstream dispatcher, the C3/C4 bridge,
// the routing service, and the gin handler.
var IntentRouterSet = wire.NewSet(
	ProvideDownstreamTimeout,
	intentclient.NewDispatcher,
	ProvideDownstreamDispatcher,
	intentclient.NewDeploymentAdapter,
	ProvideDeploymentDispatcher,
	ProvideGraphStore,
	ProvideRouterURLs,
	intentsvc.NewService,
	ProvideIntentRouterService,
	intenthandler.NewHandler,
)

// App bundles everything cmd/inserv/main.go needs to register routes.
type App struct {
	IntentHandler *intenthandler.Handler
}

func NewApp(intentHandler *intenthandler.Handler) *App {
	return &App{IntentHandler: intentHandler}
}

func InitializeApp(cfg *config.Config, graph *graphstore.Client, redisClient *redis.Client, k8sClient kubernetes.Interface, dynamicClient dynamic.Interface, k8sConfig *rest.Config, logger *slog.Logger, structuredLogger *logging.StructuredLogger) (*App, error) {
	wire.Build(
		DeploymentSet,
		ReporterSet,
		Infra6Set,
		IntentRouterSet,
		NewApp,
	)
	return nil, nil
}
