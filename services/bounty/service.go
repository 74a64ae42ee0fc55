package bounty

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

// APTMetadataAddr is the fungible-asset metadata address of APT. Payment
// totals for any other asset land in the stablecoin bucket.
const APTMetadataAddr chainaddr.Address = "0x000000000000000000000000000000000000000000000000000000000000000a"

// sortAllow lists the bounty columns callers may sort by. Anything else is
// rejected before a query is built.
var sortAllow = map[string]bool{
	"create_timestamp":      true,
	"last_update_timestamp": true,
	"end_timestamp":         true,
	"total_payment":         true,
	"winner_limit":          true,
	"stake_required":        true,
}

// tieBreakColumn keeps pagination deterministic when the sort column ties.
const tieBreakColumn = "bounty_obj_addr"

type Service struct {
	db       *gorm.DB
	bounties repository.Repository[Bounty]
	cache    *querycache.Cache
}

type ServiceParams struct {
	fx.In
	DB    *gorm.DB
	Cache *querycache.Cache `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		bounties: repository.ProvideStore[Bounty](p.DB),
		cache:    p.Cache,
	}
}

func (s *Service) cached(ctx context.Context, key querycache.Key, loader func(ctx context.Context) (any, error)) (any, error) {
	if s.cache == nil {
		return loader(ctx)
	}
	return s.cache.GetOrLoad(ctx, key, loader)
}

// Get returns the mirror row for one bounty address.
func (s *Service) Get(ctx context.Context, addr chainaddr.Address) (*Bounty, error) {
	span := trace.SpanFromContext(ctx)
	logFields := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("bounty_obj_addr", addr.Short()),
	}

	key := querycache.Key{Kind: "bounties.get", Scopes: []string{addr.String()}}
	val, err := s.cached(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetchOne(ctx, addr)
	})
	if err != nil {
		if !errutil.HasStatus(err, errutil.StatusNotFound) {
			zap.L().With(logFields...).Error("failed to query bounty", zap.Error(err))
		}
		return nil, err
	}
	return val.(*Bounty), nil
}

func (s *Service) fetchOne(ctx context.Context, addr chainaddr.Address) (*Bounty, error) {
	rows, err := s.bounties.Rows(ctx, nil, option.ApplyOperator(option.Condition{
		Field:    "bounty_obj_addr",
		Operator: option.Eq,
		Value:    addr.String(),
	}))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errutil.NotFound(fmt.Sprintf("bounty %s has no mirror row", addr.Short()))
	}
	return DecodeRow(rows[0])
}

type ListRequest struct {
	Page  int
	Limit int
	// SortBy must be one of the allow-listed bounty columns; empty defaults
	// to create_timestamp DESC.
	SortBy string
	Order  string
	// CreatorAddr narrows the list to one creator when non-empty.
	CreatorAddr chainaddr.Address
}

type ListResponse struct {
	Bounties []*Bounty
	// Total counts every row matching the filter, ignoring pagination.
	Total int64
}

// MirrorVersion is the newest row version on the page, so a cached page is
// never replaced by a refetch from a lagging mirror replica.
func (r *ListResponse) MirrorVersion() querycache.Version {
	var v querycache.Version
	for _, b := range r.Bounties {
		if bv := b.MirrorVersion(); bv.Newer(v) {
			v = bv
		}
	}
	return v
}

// List returns one page of bounties plus the matching total.
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
	if req.CreatorAddr != "" {
		scopes = append(scopes, req.CreatorAddr.String())
		filter = "creator_addr=" + req.CreatorAddr.String()
	}
	key := querycache.Key{
		Kind:   "bounties.list",
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
		zap.L().With(logFields...).Error("failed to list bounties", zap.Error(err))
		return nil, err
	}
	return val.(*ListResponse), nil
}

func (s *Service) fetchList(ctx context.Context, req ListRequest, sortBy, order string) (*ListResponse, error) {
	opts := make([]option.QueryOption, 0, 3)
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

	rows, err := s.bounties.Rows(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}

	bounties := make([]*Bounty, 0, len(rows))
	for _, row := range rows {
		b, err := DecodeRow(row)
		if err != nil {
			return nil, err
		}
		bounties = append(bounties, b)
	}

	total, err := s.bounties.Count(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}

	return &ListResponse{Bounties: bounties, Total: total}, nil
}

// TotalValue sums total_payment per payment asset across every bounty.
type TotalValue struct {
	APT    int64
	Stable int64
	// BountyCount is the number of bounties contributing to the totals.
	BountyCount int64
}

type assetTotal struct {
	PaymentMetadataObjAddr string `gorm:"column:payment_metadata_obj_addr"`
	Total                  int64  `gorm:"column:total"`
	RowCount               int64  `gorm:"column:row_count"`
}

// TotalValueLocked aggregates SUM(total_payment) grouped by payment asset,
// bucketed into APT and everything-else (stablecoins).
func (s *Service) TotalValueLocked(ctx context.Context) (*TotalValue, error) {
	key := querycache.Key{Kind: "bounties.total_value", Scopes: []string{querycache.ScopeAggregate}}
	val, err := s.cached(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetchTotalValue(ctx)
	})
	if err != nil {
		zap.L().Error("failed to aggregate bounty totals", zap.Error(err))
		return nil, err
	}
	return val.(*TotalValue), nil
}

func (s *Service) fetchTotalValue(ctx context.Context) (*TotalValue, error) {
	var totals []assetTotal
	err := s.db.WithContext(ctx).
		Model(&Bounty{}).
		Select("payment_metadata_obj_addr, SUM(total_payment) AS total, COUNT(*) AS row_count").
		Group("payment_metadata_obj_addr").
		Find(&totals).Error
	if err != nil {
		return nil, err
	}

	out := &TotalValue{}
	for _, t := range totals {
		asset, err := chainaddr.Parse(t.PaymentMetadataObjAddr)
		if err != nil {
			return nil, errutil.MalformedRow(
				fmt.Sprintf("payment_metadata_obj_addr %q is not an address", t.PaymentMetadataObjAddr),
				errutil.WithErr(err),
			)
		}
		if asset == APTMetadataAddr {
			out.APT += t.Total
		} else {
			out.Stable += t.Total
		}
		out.BountyCount += t.RowCount
	}
	return out, nil
}
