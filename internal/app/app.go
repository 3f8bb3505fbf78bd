package app

import (
	"go.uber.org/fx"

	"github.com/kirana-labs/kirana/internal/broadcast"
	"github.com/kirana-labs/kirana/internal/cache"
	"github.com/kirana-labs/kirana/internal/config"
	"github.com/kirana-labs/kirana/internal/database"
	"github.com/kirana-labs/kirana/internal/logger"
	"github.com/kirana-labs/kirana/internal/messaging"
	"github.com/kirana-labs/kirana/internal/observability"
	repositoryinventory "github.com/kirana-labs/kirana/internal/repository/inventory"
	repositoryorder "github.com/kirana-labs/kirana/internal/repository/order"
	repositoryproduct "github.com/kirana-labs/kirana/internal/repository/product"
	repositoryprovider "github.com/kirana-labs/kirana/internal/repository/provider"
	grpcserver "github.com/kirana-labs/kirana/internal/server/grpc"
	httpserver "github.com/kirana-labs/kirana/internal/server/http"
	servicecatalog "github.com/kirana-labs/kirana/internal/service/catalog"
	serviceorder "github.com/kirana-labs/kirana/internal/service/order"
	serviceprovider "github.com/kirana-labs/kirana/internal/service/provider"
	serviceselector "github.com/kirana-labs/kirana/internal/service/selector"
	transporthttp "github.com/kirana-labs/kirana/internal/transport/http"
	"github.com/kirana-labs/kirana/internal/worker"
	workerorder "github.com/kirana-labs/kirana/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	broadcast.Module,
	repositoryprovider.Module,
	repositoryproduct.Module,
	repositoryinventory.Module,
	repositoryorder.Module,
	serviceselector.Module,
	serviceprovider.Module,
	servicecatalog.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP and gRPC transports on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (API server).
var Module = HTTP
