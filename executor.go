package schemahelper

import (
	"context"
	"database/sql"
)

// Executor runs a single raw SQL statement and returns its result rows.
// Statements that produce no result set return no rows.
type Executor interface {
	Execute(ctx context.Context, query string) ([]Row, error)
}

// ExecutorFunc adapts an ordinary function to the Executor interface.
type ExecutorFunc func(ctx context.Context, query string) ([]Row, error)

// Execute calls f(ctx, query).
func (f ExecutorFunc) Execute(ctx context.Context, query string) ([]Row, error) {
	return f(ctx, query)
}

// Queryer is implemented by *sql.DB, *sql.Tx and *sql.Conn.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// SQLExecutor returns an Executor issuing statements through q.
//
// Every statement goes through QueryContext: MySQL answers REPAIR, OPTIMIZE
// and SHOW with a result set and ALTER with an empty one. Rows are returned
// as MappedRow using the column names reported by the driver.
func SQLExecutor(q Queryer) Executor {
	return &sqlExecutor{q: q}
}

type sqlExecutor struct {
	q Queryer
}

func (e *sqlExecutor) Execute(ctx context.Context, query string) (result []Row, err error) {
	rows, err := e.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result = []Row{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, MappedRow{Columns: columns, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
