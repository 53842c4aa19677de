package conservation

import "go.uber.org/fx"

var Module = fx.Module("conservation.ledger",
	fx.Provide(NewLedger),
)
