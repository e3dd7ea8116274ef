// package repositories provides the SQLite persistence layer for the client's local state.
package repositories

import (
	"database/sql"
	"fmt"
)

// expectOne checks that a write touched exactly one row, returning notFound otherwise.
func expectOne(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
