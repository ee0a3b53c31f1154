package repositories

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Common repository errors
var (
	// ErrNotFound indicates the requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEntry indicates a unique constraint violation
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// isDuplicateErr reports whether err is a unique-key violation
func isDuplicateErr(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	// SQLite phrasing, seen with the integration test database
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
