package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bountyboard/pkg/db/option"
	"bountyboard/services/testutil"
)

type mirrorEntry struct {
	Addr     string `gorm:"column:addr;primaryKey"`
	Owner    string `gorm:"column:owner"`
	Amount   int64  `gorm:"column:amount"`
	EventIdx int64  `gorm:"column:event_idx"`
}

func (mirrorEntry) TableName() string {
	return "mirror_entries"
}

func newStore(t *testing.T) (Repository[mirrorEntry], *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, &mirrorEntry{})
	return ProvideStore[mirrorEntry](db), db
}

func TestCreateAndFindOne(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &mirrorEntry{Addr: "0x1", Owner: "0xa", Amount: 100}))

	got, err := store.FindOne(ctx, &mirrorEntry{Addr: "0x1"})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(100), got.Amount)
}

func TestFindOneMissingReturnsNil(t *testing.T) {
	store, _ := newStore(t)

	got, err := store.FindOne(context.Background(), &mirrorEntry{Addr: "0xmissing"})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestBatchCreateAndFind(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.BatchCreate(ctx, []*mirrorEntry{
		{Addr: "0x1", Owner: "0xa", Amount: 10},
		{Addr: "0x2", Owner: "0xa", Amount: 30},
		{Addr: "0x3", Owner: "0xb", Amount: 20},
	}))

	got, err := store.Find(ctx, &mirrorEntry{Owner: "0xa"}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "amount",
		OrderBy: "DESC",
		Allow:   map[string]bool{"amount": true},
	}))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(30), got[0].Amount)
	require.Equal(t, int64(10), got[1].Amount)
}

func TestUpdate(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &mirrorEntry{Addr: "0x1", Amount: 100, EventIdx: 1}))
	require.NoError(t, store.Update(ctx, &mirrorEntry{Addr: "0x1"}, map[string]any{
		"amount":    200,
		"event_idx": 2,
	}))

	got, err := store.FindOne(ctx, &mirrorEntry{Addr: "0x1"})
	require.NoError(t, err)
	require.Equal(t, int64(200), got.Amount)
	require.Equal(t, int64(2), got.EventIdx)
}

func TestWithTrxRollsBack(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := store.WithTrx(tx).Create(ctx, &mirrorEntry{Addr: "0x1"}); err != nil {
			return err
		}
		return errors.New("abort the seed")
	})
	require.Error(t, err)

	got, err := store.FindOne(ctx, &mirrorEntry{Addr: "0x1"})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCountIgnoresPagination(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.BatchCreate(ctx, []*mirrorEntry{
		{Addr: "0x1", Owner: "0xa"},
		{Addr: "0x2", Owner: "0xa"},
		{Addr: "0x3", Owner: "0xb"},
	}))

	opts := []option.QueryOption{
		option.ApplyOperator(option.Condition{Field: "owner", Operator: option.Eq, Value: "0xa"}),
		option.WithPage(1, 1),
	}

	rows, err := store.Rows(ctx, nil, opts...)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	total, err := store.Count(ctx, nil, opts...)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
}

func TestRowsSurfaceRawColumns(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &mirrorEntry{Addr: "0x1", Amount: 42}))

	rows, err := store.Rows(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Contains(t, rows[0], "addr")
	require.Contains(t, rows[0], "amount")
}
