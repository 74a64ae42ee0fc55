package userstat

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bountyboard/pkg/chainaddr"
	"bountyboard/pkg/db/option"
	"bountyboard/pkg/errutil"
	"bountyboard/pkg/querycache"
	"bountyboard/pkg/repository"
)

// sortAllow lists the leaderboard columns. The boards sort by spend,
// earnings, activity counters, or points.
var sortAllow = map[string]bool{
	"apt_spent":       true,
	"stable_spent":    true,
	"apt_received":    true,
	"stable_received": true,
	"bounty_created":  true,
	"build_created":   true,
	"build_completed": true,
	"total_points":    true,
}

const tieBreakColumn = "user_addr"

type Service struct {
	stats repository.Repository[UserStat]
	cache *querycache.Cache
}

type ServiceParams struct {
	fx.In
	DB    *gorm.DB
	Cache *querycache.Cache `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		stats: repository.ProvideStore[UserStat](p.DB),
		cache: p.Cache,
	}
}

func (s *Service) cached(ctx context.Context, key querycache.Key, loader func(ctx context.Context) (any, error)) (any, error) {
	if s.cache == nil {
		return loader(ctx)
	}
	return s.cache.GetOrLoad(ctx, key, loader)
}

// Get returns the counters for one user address.
func (s *Service) Get(ctx context.Context, addr chainaddr.Address) (*UserStat, error) {
	span := trace.SpanFromContext(ctx)
	logFields := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("user_addr", addr.Short()),
	}

	key := querycache.Key{Kind: "user_stats.get", Scopes: []string{addr.String()}}
	val, err := s.cached(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetchOne(ctx, addr)
	})
	if err != nil {
		if !errutil.HasStatus(err, errutil.StatusNotFound) {
			zap.L().With(logFields...).Error("failed to query user stats", zap.Error(err))
		}
		return nil, err
	}
	return val.(*UserStat), nil
}

func (s *Service) fetchOne(ctx context.Context, addr chainaddr.Address) (*UserStat, error) {
	rows, err := s.stats.Rows(ctx, nil, option.ApplyOperator(option.Condition{
		Field:    "user_addr",
		Operator: option.Eq,
		Value:    addr.String(),
	}))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errutil.NotFound(fmt.Sprintf("user %s has no stats row", addr.Short()))
	}
	return DecodeRow(rows[0])
}

type ListRequest struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
}

type ListResponse struct {
	Stats []*UserStat
	Total int64
}

// MirrorVersion is the newest row version on the page, so a cached page is
// never replaced by a refetch from a lagging mirror replica.
func (r *ListResponse) MirrorVersion() querycache.Version {
	var v querycache.Version
	for _, s := range r.Stats {
		if sv := s.MirrorVersion(); sv.Newer(v) {
			v = sv
		}
	}
	return v
}

// List pages over the leaderboard.
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	sortBy, order := req.SortBy, req.Order
	if sortBy == "" {
		sortBy, order = "total_points", "DESC"
	}

	key := querycache.Key{
		Kind:   "user_stats.list",
		Scopes: []string{querycache.ScopeAggregate},
		Page:   req.Page,
		Limit:  req.Limit,
		SortBy: sortBy,
		Order:  order,
	}

	val, err := s.cached(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetchList(ctx, req, sortBy, order)
	})
	if err != nil {
		zap.L().Error("failed to list user stats", zap.Error(err))
		return nil, err
	}
	return val.(*ListResponse), nil
}

func (s *Service) fetchList(ctx context.Context, req ListRequest, sortBy, order string) (*ListResponse, error) {
	opts := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{
			SortBy:   sortBy,
			OrderBy:  order,
			Allow:    sortAllow,
			TieBreak: tieBreakColumn,
		}),
		option.WithPage(req.Page, req.Limit),
	}

	rows, err := s.stats.Rows(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}

	stats := make([]*UserStat, 0, len(rows))
	for _, row := range rows {
		u, err := DecodeRow(row)
		if err != nil {
			return nil, err
		}
		stats = append(stats, u)
	}

	total, err := s.stats.Count(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}

	return &ListResponse{Stats: stats, Total: total}, nil
}
