package inventory

import "go.uber.org/fx"

// Module provides the inventory ledger to Fx.
var Module = fx.Provide(NewLedger)
