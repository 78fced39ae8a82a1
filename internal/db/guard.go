package db

import (
	"github.com/xwb1989/sqlparser"

	"github.com/qiangli/dataworks/internal/api"
)

// CheckReadOnly accepts a single SELECT (or UNION of selects) and rejects
// everything else. The parser reads the MySQL dialect, which quotes strings
// differently from sqlite, so callers also run the query on a read-only
// connection (OpenReadOnly, QueryReadOnly).
func CheckReadOnly(query string) error {
	stmt, err := sqlparser.Parse(query)
	if err != nil {
		return api.Wrap(api.KindBadRequest, err, "invalid SQL")
	}
	switch stmt.(type) {
	case *sqlparser.Select, *sqlparser.Union, *sqlparser.ParenSelect:
		return nil
	default:
		return api.NewAccessDeniedError("only SELECT queries are allowed: %s", sqlparser.String(stmt))
	}
}
