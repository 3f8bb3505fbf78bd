package http

import (
	"go.uber.org/fx"

	catalogtransport "github.com/kirana-labs/kirana/internal/transport/http/catalog"
	ordertransport "github.com/kirana-labs/kirana/internal/transport/http/order"
	providertransport "github.com/kirana-labs/kirana/internal/transport/http/provider"
	streamtransport "github.com/kirana-labs/kirana/internal/transport/http/stream"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	providertransport.Module,
	catalogtransport.Module,
	ordertransport.Module,
	streamtransport.Module,
)
