package build

import (
	"go.uber.org/fx"
)

var Module = fx.Module("build.service",
	fx.Provide(NewService),
)
