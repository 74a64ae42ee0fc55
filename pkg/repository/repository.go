// Package repository is a thin generic gorm store used by the read services.
// The mirror tables are written only by the external indexing pipeline; the
// write methods here exist for tests and offline tooling.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bountyboard/pkg/db/option"
)

type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	// Rows returns loosely typed rows for the entity codec: drivers disagree
	// on how they surface 64-bit columns, so decoding stays in one place.
	Rows(ctx context.Context, query *T, opts ...option.QueryOption) ([]map[string]any, error)
	// Count applies only the filtering options: the total reflects the
	// filter but ignores pagination and ordering.
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
	Create(ctx context.Context, entity *T) error
	BatchCreate(ctx context.Context, entities []*T) error
	Update(ctx context.Context, query *T, values any) error
}

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx}
}

func (s *store[T]) base(ctx context.Context, query *T) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(new(T))
	if query != nil {
		tx = tx.Where(query)
	}
	return tx
}

func applyOptions(tx *gorm.DB, opts []option.QueryOption, filteringOnly bool) (*gorm.DB, error) {
	var err error
	for _, opt := range opts {
		if filteringOnly && !opt.Filtering() {
			continue
		}
		tx, err = opt.Apply(tx)
		if err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func (s *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	tx, err := applyOptions(s.base(ctx, query), opts, false)
	if err != nil {
		return nil, err
	}

	var out []*T
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	tx, err := applyOptions(s.base(ctx, query), opts, false)
	if err != nil {
		return nil, err
	}

	var out T
	if err := tx.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (s *store[T]) Rows(ctx context.Context, query *T, opts ...option.QueryOption) ([]map[string]any, error) {
	tx, err := applyOptions(s.base(ctx, query), opts, false)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *store[T]) Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error) {
	tx, err := applyOptions(s.base(ctx, query), opts, true)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *store[T]) Create(ctx context.Context, entity *T) error {
	return s.db.WithContext(ctx).Create(entity).Error
}

func (s *store[T]) BatchCreate(ctx context.Context, entities []*T) error {
	return s.db.WithContext(ctx).Create(entities).Error
}

func (s *store[T]) Update(ctx context.Context, query *T, values any) error {
	return s.db.WithContext(ctx).Model(new(T)).Where(query).Updates(values).Error
}
