package db

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

var ErrConflict = errors.New("already exists")

func IsNonUniqueErr(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	// modernc reports constraint failures as plain errors
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFoundIfNoRows(err error, what string) error {
	if err == sql.ErrNoRows {
		return errors.Wrap(ErrNotFound, what)
	}
	return err
}

// checkAffected turns a zero-row update/delete into ErrNotFound.
func checkAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "error getting rows affected")
	}
	if n == 0 {
		return errors.Wrap(ErrNotFound, what)
	}
	return nil
}
