package option

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bountyboard/pkg/errutil"
)

func newDryRunTx(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db.Table("bounties")
}

func TestConditionRejectsBadColumn(t *testing.T) {
	tx := newDryRunTx(t)

	_, err := ApplyOperator(Condition{
		Field:    "creator_addr = '' OR 1=1 --",
		Operator: Eq,
		Value:    "x",
	}).Apply(tx)
	require.Error(t, err)
	require.True(t, errutil.HasStatus(err, errutil.StatusInvalidFilter))
}

func TestConditionRejectsUnknownOperator(t *testing.T) {
	tx := newDryRunTx(t)

	_, err := ApplyOperator(Condition{
		Field:    "creator_addr",
		Operator: Operator("LIKE"),
		Value:    "%x%",
	}).Apply(tx)
	require.Error(t, err)
	require.True(t, errutil.HasStatus(err, errutil.StatusInvalidFilter))
}

func TestConditionBindsValueAsParameter(t *testing.T) {
	tx := newDryRunTx(t)

	tx, err := ApplyOperator(Condition{
		Field:    "creator_addr",
		Operator: Eq,
		Value:    "'; DROP TABLE bounties;--",
	}).Apply(tx)
	require.NoError(t, err)

	stmt := tx.Session(&gorm.Session{DryRun: true}).Find(&[]map[string]any{}).Statement
	require.Contains(t, stmt.SQL.String(), "creator_addr = ?")
	require.NotContains(t, stmt.SQL.String(), "DROP TABLE")
}

func TestSortByOutsideAllowList(t *testing.T) {
	tx := newDryRunTx(t)

	_, err := WithSortBy(QuerySortBy{
		SortBy:  "title",
		OrderBy: "ASC",
		Allow:   map[string]bool{"create_timestamp": true},
	}).Apply(tx)
	require.Error(t, err)
	require.True(t, errutil.HasStatus(err, errutil.StatusInvalidFilter))
}

func TestSortByBadDirection(t *testing.T) {
	tx := newDryRunTx(t)

	_, err := WithSortBy(QuerySortBy{
		SortBy:  "create_timestamp",
		OrderBy: "SIDEWAYS",
		Allow:   map[string]bool{"create_timestamp": true},
	}).Apply(tx)
	require.Error(t, err)
	require.True(t, errutil.HasStatus(err, errutil.StatusInvalidFilter))
}

func TestSortByNormalizesLowercaseDirection(t *testing.T) {
	tx := newDryRunTx(t)

	_, err := WithSortBy(QuerySortBy{
		SortBy:  "create_timestamp",
		OrderBy: "desc",
		Allow:   map[string]bool{"create_timestamp": true},
	}).Apply(tx)
	require.NoError(t, err)
}

func TestPageBeforeFirst(t *testing.T) {
	tx := newDryRunTx(t)

	_, err := WithPage(0, 10).Apply(tx)
	require.Error(t, err)
	require.True(t, errutil.HasStatus(err, errutil.StatusInvalidPage))
}

func TestNegativeLimit(t *testing.T) {
	tx := newDryRunTx(t)

	_, err := WithPage(1, -1).Apply(tx)
	require.Error(t, err)
	require.True(t, errutil.HasStatus(err, errutil.StatusInvalidPage))
}
