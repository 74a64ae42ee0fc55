package build

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bountyboard/chain"
	"bountyboard/pkg/chainaddr"
	"bountyboard/pkg/db/option"
	"bountyboard/pkg/errutil"
	"bountyboard/pkg/querycache"
	"bountyboard/pkg/repository"
)

var sortAllow = map[string]bool{
	"create_timestamp":      true,
	"last_update_timestamp": true,
	"payment_amount":        true,
	"build_status":          true,
}

const tieBreakColumn = "build_obj_addr"

type Service struct {
	builds repository.Repository[Build]
	cache  *querycache.Cache
	chain  chain.Client
}

type ServiceParams struct {
	fx.In
	DB    *gorm.DB
	Cache *querycache.Cache `optional:"true"`
	Chain chain.Client      `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		builds: repository.ProvideStore[Build](p.DB),
		cache:  p.Cache,
		chain:  p.Chain,
	}
}

func (s *Service) cached(ctx context.Context, key querycache.Key, loader func(ctx context.Context) (any, error)) (any, error) {
	if s.cache == nil {
		return loader(ctx)
	}
	return s.cache.GetOrLoad(ctx, key, loader)
}

// Get returns the mirror row for one build address.
func (s *Service) Get(ctx context.Context, addr chainaddr.Address) (*Build, error) {
	span := trace.SpanFromContext(ctx)
	logFields := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("build_obj_addr", addr.Short()),
	}

	key := querycache.Key{Kind: "builds.get", Scopes: []string{addr.String()}}
	val, err := s.cached(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetchOne(ctx, addr)
	})
	if err != nil {
		if !errutil.HasStatus(err, errutil.StatusNotFound) {
			zap.L().With(logFields...).Error("failed to query build", zap.Error(err))
		}
		return nil, err
	}
	return val.(*Build), nil
}

func (s *Service) fetchOne(ctx context.Context, addr chainaddr.Address) (*Build, error) {
	rows, err := s.builds.Rows(ctx, nil, option.ApplyOperator(option.Condition{
		Field:    "build_obj_addr",
		Operator: option.Eq,
		Value:    addr.String(),
	}))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errutil.NotFound(fmt.Sprintf("build %s has no mirror row", addr.Short()))
	}
	return DecodeRow(rows[0])
}

type ListRequest struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
	// BountyAddr narrows the list to builds against one bounty.
	BountyAddr chainaddr.Address
	// CreatorAddr narrows the list to one builder.
	CreatorAddr chainaddr.Address
}

type ListResponse struct {
	Builds []*Build
	Total  int64
}

// MirrorVersion is the newest row version on the page, so a cached page is
// never replaced by a refetch from a lagging mirror replica.
func (r *ListResponse) MirrorVersion() querycache.Version {
	var v querycache.Version
	for _, b := range r.Builds {
		if bv := b.MirrorVersion(); bv.Newer(v) {
			v = bv
		}
	}
	return v
}

// List returns one page of builds plus the matching total.
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	span := trace.SpanFromContext(ctx)
	logFields := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	}

	sortBy, order := req.SortBy, req.Order
	if sortBy == "" {
		sortBy, order = "create_timestamp", "DESC"
	}

	scopes := []string{querycache.ScopeAggregate}
	filter := ""
	if req.BountyAddr != "" {
		scopes = append(scopes, req.BountyAddr.String())
		filter += "bounty_obj_addr=" + req.BountyAddr.String() + ";"
	}
	if req.CreatorAddr != "" {
		scopes = append(scopes, req.CreatorAddr.String())
		filter += "creator_addr=" + req.CreatorAddr.String() + ";"
	}
	key := querycache.Key{
		Kind:   "builds.list",
		Scopes: scopes,
		Page:   req.Page,
		Limit:  req.Limit,
		SortBy: sortBy,
		Order:  order,
		Filter: filter,
	}

	val, err := s.cached(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetchList(ctx, req, sortBy, order)
	})
	if err != nil {
		zap.L().With(logFields...).Error("failed to list builds", zap.Error(err))
		return nil, err
	}
	return val.(*ListResponse), nil
}

func (s *Service) fetchList(ctx context.Context, req ListRequest, sortBy, order string) (*ListResponse, error) {
	opts := make([]option.QueryOption, 0, 4)
	if req.BountyAddr != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{
			Field:    "bounty_obj_addr",
			Operator: option.Eq,
			Value:    req.BountyAddr.String(),
		}))
	}
	if req.CreatorAddr != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{
			Field:    "creator_addr",
			Operator: option.Eq,
			Value:    req.CreatorAddr.String(),
		}))
	}
	opts = append(opts,
		option.WithSortBy(option.QuerySortBy{
			SortBy:   sortBy,
			OrderBy:  order,
			Allow:    sortAllow,
			TieBreak: tieBreakColumn,
		}),
		option.WithPage(req.Page, req.Limit),
	)

	rows, err := s.builds.Rows(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}

	builds := make([]*Build, 0, len(rows))
	for _, row := range rows {
		b, err := DecodeRow(row)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}

	total, err := s.builds.Count(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}

	return &ListResponse{Builds: builds, Total: total}, nil
}

// ExistsBuild asks the live chain view whether user already has a build
// against bounty. The mirror may lag a just-confirmed transaction, so this
// never consults the mirror or the cache.
func (s *Service) ExistsBuild(ctx context.Context, bounty, user chainaddr.Address) (bool, error) {
	if s.chain == nil {
		return false, errutil.Internal("no chain client configured for live build lookup")
	}
	return s.chain.ExistsBuild(ctx, bounty, user)
}
