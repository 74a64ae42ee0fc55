package querycache

import (
	"bountyboard/pkg/config"

	"go.uber.org/fx"
)

var Module = fx.Module("querycache",
	fx.Provide(FromConfig),
)

// FanoutModule additionally bridges the cache onto redis pub/sub; only wire
// it when the app runs more than one replica.
var FanoutModule = fx.Module("querycache.fanout",
	fx.Provide(NewFanout),
	fx.Invoke(registerFanout),
)

func FromConfig(cfg *config.Config) *Cache {
	return New(cfg.Cache.TTL, cfg.Cache.GracePeriod)
}

func registerFanout(lc fx.Lifecycle, f *Fanout) {
	lc.Append(fx.Hook{
		OnStart: f.Start,
		OnStop:  f.Stop,
	})
}
