package repositories

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Condition is a single typed predicate. The set is closed: equality,
// null checks and substring patterns.
type Condition interface {
	apply(db *gorm.DB) *gorm.DB
}

// Where is a conjunction of conditions.
type Where []Condition

func (w Where) apply(db *gorm.DB) *gorm.DB {
	for _, c := range w {
		if c != nil {
			db = c.apply(db)
		}
	}
	return db
}

// And returns a copy of w extended with more conditions.
func (w Where) And(more ...Condition) Where {
	out := make(Where, 0, len(w)+len(more))
	out = append(out, w...)
	return append(out, more...)
}

type eqCondition struct {
	column string
	value  any
}

// Eq matches rows whose column equals value.
func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) apply(db *gorm.DB) *gorm.DB {
	return db.Where(clause.Eq{Column: clause.Column{Name: c.column}, Value: c.value})
}

type nullCondition struct {
	column string
	null   bool
}

// IsNull matches rows whose column is NULL.
func IsNull(column string) Condition { return nullCondition{column: column, null: true} }

// NotNull matches rows whose column is not NULL.
func NotNull(column string) Condition { return nullCondition{column: column, null: false} }

func (c nullCondition) apply(db *gorm.DB) *gorm.DB {
	if c.null {
		return db.Where(clause.Eq{Column: clause.Column{Name: c.column}, Value: nil})
	}
	return db.Where(clause.Neq{Column: clause.Column{Name: c.column}, Value: nil})
}

type containsCondition struct {
	column string
	substr string
}

// Contains matches rows whose column contains substr. LIKE wildcards in substr
// are escaped; case sensitivity follows the backend.
func Contains(column, substr string) Condition {
	return containsCondition{column: column, substr: substr}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (c containsCondition) apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(c.substr) + "%"
	return db.Where(clause.Expr{
		SQL:  `? LIKE ? ESCAPE '\'`,
		Vars: []any{clause.Column{Name: c.column}, pattern},
	})
}

// Page bounds a read. Zero values mean unbounded.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}
