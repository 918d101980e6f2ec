package database

import "database/sql"

// requireAffected validates that an ExecContext result touched at least one
// row. Returns err if non-nil, or missingErr when nothing was affected.
func requireAffected(result sql.Result, err, missingErr error) error {
	if err != nil {
		return err
	}
	n, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return affectedErr
	}
	if n == 0 {
		return missingErr
	}
	return nil
}
