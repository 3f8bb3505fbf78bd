package seeder

import "go.uber.org/fx"

// Module wires the seeder.
var Module = fx.Options(
	fx.Provide(New),
)
