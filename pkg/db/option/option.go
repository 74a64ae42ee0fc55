// Package option builds parameterized query clauses for the mirror tables.
// Sort columns are restricted to per-entity allow-lists and every literal is
// bound as a parameter; free text from callers never reaches SQL.
package option

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bountyboard/pkg/errutil"
)

// QueryOption contributes a clause to a list or count query. Options are
// validated when applied, before anything is executed against the database.
type QueryOption interface {
	Apply(tx *gorm.DB) (*gorm.DB, error)
	// Filtering reports whether the option narrows the row set. Filtering
	// options apply to the matching count query as well; ordering and
	// pagination do not.
	Filtering() bool
}

type Operator string

const (
	Eq  Operator = "="
	Neq Operator = "<>"
	Gt  Operator = ">"
	Gte Operator = ">="
	Lt  Operator = "<"
	Lte Operator = "<="
)

// column names are fixed identifiers originating inside this layer, but a
// malformed one is still rejected rather than interpolated.
var columnPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Condition is a structured predicate. Value is always parameter-bound.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type conditionOption struct {
	cond Condition
}

func (o conditionOption) Filtering() bool { return true }

func (o conditionOption) Apply(tx *gorm.DB) (*gorm.DB, error) {
	if !columnPattern.MatchString(o.cond.Field) {
		return nil, errutil.InvalidFilter(fmt.Sprintf("bad filter column %q", o.cond.Field))
	}
	switch o.cond.Operator {
	case Eq, Neq, Gt, Gte, Lt, Lte:
	default:
		return nil, errutil.InvalidFilter(fmt.Sprintf("bad filter operator %q", o.cond.Operator))
	}
	return tx.Where(fmt.Sprintf("%s %s ?", o.cond.Field, o.cond.Operator), o.cond.Value), nil
}

// ApplyOperator adds a structured predicate to the query.
func ApplyOperator(cond Condition) QueryOption {
	return conditionOption{cond: cond}
}

// QuerySortBy orders results by an allow-listed column. TieBreak is the
// entity's unique identity column, appended as a secondary sort so that
// pagination across pages never duplicates or skips rows when the primary
// column has equal values.
type QuerySortBy struct {
	SortBy   string
	OrderBy  string
	Allow    map[string]bool
	TieBreak string
}

type sortOption struct {
	sort QuerySortBy
}

func (o sortOption) Filtering() bool { return false }

func (o sortOption) Apply(tx *gorm.DB) (*gorm.DB, error) {
	s := o.sort

	if !s.Allow[s.SortBy] {
		return nil, errutil.InvalidFilter(fmt.Sprintf("sort column %q is not allowed", s.SortBy))
	}

	var desc bool
	switch strings.ToUpper(s.OrderBy) {
	case "ASC", "":
		desc = false
	case "DESC":
		desc = true
	default:
		return nil, errutil.InvalidFilter(fmt.Sprintf("sort direction %q is not ASC or DESC", s.OrderBy))
	}

	tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: s.SortBy}, Desc: desc})
	if s.TieBreak != "" && s.TieBreak != s.SortBy {
		if !columnPattern.MatchString(s.TieBreak) {
			return nil, errutil.InvalidFilter(fmt.Sprintf("bad tie-break column %q", s.TieBreak))
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: s.TieBreak}, Desc: desc})
	}
	return tx, nil
}

func WithSortBy(sort QuerySortBy) QueryOption {
	return sortOption{sort: sort}
}

type pageOption struct {
	page  int
	limit int
}

func (o pageOption) Filtering() bool { return false }

func (o pageOption) Apply(tx *gorm.DB) (*gorm.DB, error) {
	if o.page < 1 {
		return nil, errutil.InvalidPage(fmt.Sprintf("page %d is before page 1", o.page))
	}
	if o.limit < 0 {
		return nil, errutil.InvalidPage(fmt.Sprintf("negative limit %d", o.limit))
	}
	if o.limit == 0 {
		// No row limit; the caller still gets a total from the count query.
		return tx, nil
	}
	return tx.Limit(o.limit).Offset((o.page - 1) * o.limit), nil
}

// WithPage paginates with a 1-indexed page. limit 0 means no row limit.
func WithPage(page, limit int) QueryOption {
	return pageOption{page: page, limit: limit}
}
