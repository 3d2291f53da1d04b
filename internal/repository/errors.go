package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// CodeDuplicateEntry is the normalized code for unique constraint violations
const CodeDuplicateEntry = "ER_DUP_ENTRY"

const (
	mysqlDupEntry       = 1062
	postgresUniqueError = "23505"
)

// StorageError is a statement the store rejected or failed to run
type StorageError struct {
	Message string
	SQL     string
	Code    string
	Err     error
}

func (e *StorageError) Error() string {
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func newStorageError(query string, err error) *StorageError {
	return &StorageError{
		Message: err.Error(),
		SQL:     query,
		Code:    errorCode(err),
		Err:     err,
	}
}

func errorCode(err error) string {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDupEntry {
		return CodeDuplicateEntry
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == postgresUniqueError {
		return CodeDuplicateEntry
	}
	return ""
}
