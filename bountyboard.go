// Package bountyboard assembles the mirror read services, the chain write
// gateway, and the invalidation cache into one fx option set for embedding
// applications. Apps supply a chain.Client and chain.Signer; everything else
// is built from config.
package bountyboard

import (
	"go.uber.org/fx"

	"bountyboard/chain"
	"bountyboard/pkg/config"
	"bountyboard/pkg/db"
	"bountyboard/pkg/logger"
	"bountyboard/pkg/querycache"
	"bountyboard/pkg/redis"
	"bountyboard/services/bounty"
	"bountyboard/services/build"
	"bountyboard/services/userstat"
)

// Modules wires a single-replica app: in-process cache, no redis fanout.
var Modules = fx.Options(
	config.Module,
	logger.Module,
	db.Module,
	querycache.Module,
	bounty.Module,
	build.Module,
	userstat.Module,
	chain.Module,
)

// ReplicatedModules additionally broadcasts cache invalidations over redis
// pub/sub so several replicas converge after any one replica's write.
var ReplicatedModules = fx.Options(
	Modules,
	redis.Module,
	querycache.FanoutModule,
)
