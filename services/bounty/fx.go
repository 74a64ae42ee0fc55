package bounty

import (
	"go.uber.org/fx"
)

var Module = fx.Module("bounty.service",
	fx.Provide(NewService),
)
