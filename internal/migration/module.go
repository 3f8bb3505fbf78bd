package migration

import "go.uber.org/fx"

// Module wires the migrator.
var Module = fx.Options(
	fx.Provide(New),
)
