package provider

import "go.uber.org/fx"

// Module provides the provider repository to Fx.
var Module = fx.Provide(NewRepository)
