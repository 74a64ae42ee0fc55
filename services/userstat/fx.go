package userstat

import (
	"go.uber.org/fx"
)

var Module = fx.Module("userstat.service",
	fx.Provide(NewService),
)
