package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// uniqueViolation is the psql error code raised on unique index conflicts;
// the storage-level constraints are the source of truth for duplicates.
const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return pqErr.Code == uniqueViolation && string(pqErr.Constraint) == constraint
	}
	return false
}

// trapNoRows maps sql.ErrNoRows to the domain's notFound error.
func trapNoRows(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// contains wraps a search term for ILIKE matching.
func contains(s string) string {
	return "%" + s + "%"
}

// condBuilder accumulates WHERE conditions with positional args.
// `cond` holds `$%d` verbs, one per arg, numbered on append.
type condBuilder struct {
	conds []string
	args  []interface{}
}

func (cb *condBuilder) where(cond string, args ...interface{}) {
	positions := make([]interface{}, len(args))
	for i, arg := range args {
		cb.args = append(cb.args, arg)
		positions[i] = len(cb.args)
	}
	cb.conds = append(cb.conds, fmt.Sprintf(cond, positions...))
}

func (cb *condBuilder) clause() string {
	if len(cb.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(cb.conds, " AND ")
}

// orderBy renders an ORDER BY clause from the requested ordering,
// falling back to `def` when none is given. Fields are whitelisted to
// keep user input out of the SQL.
func orderBy(ordering []core.DBOrdering, allowed map[string]bool, def string) string {
	var cols []string
	for _, ord := range ordering {
		if allowed[ord.Field] {
			cols = append(cols, ord.String())
		}
	}
	if len(cols) == 0 {
		return " ORDER BY " + def
	}
	return " ORDER BY " + strings.Join(cols, ", ")
}
