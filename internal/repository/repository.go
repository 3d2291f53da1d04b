package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Dan9191/user-service/internal/models"
)

const userTable = "user"

// ErrNotFound is returned when a lookup by id matches no row
var ErrNotFound = errors.New("user not found")

// Repository provides database operations on the user table
type Repository struct {
	db      *sql.DB
	dialect Dialect
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{db: db, dialect: dialect}
}

// ListUsers returns every row of the user table
func (r *Repository) ListUsers(ctx context.Context) ([]models.Row, error) {
	query := r.selectAllQuery()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, newStorageError(query, err)
	}
	defer rows.Close()

	users, err := scanRows(rows)
	if err != nil {
		return nil, newStorageError(query, err)
	}
	return users, nil
}

// CreateUser inserts fields as a new row and returns the generated id.
// Every key of fields becomes a column of the insert.
func (r *Repository) CreateUser(ctx context.Context, fields map[string]any) (int64, error) {
	query, args, err := r.insertQuery(fields)
	if err != nil {
		return 0, err
	}

	if r.dialect.returning {
		var id int64
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, newStorageError(query, err)
		}
		return id, nil
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, newStorageError(query, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, newStorageError(query, err)
	}
	return id, nil
}

// UpdateUser overwrites the columns named in fields on the row with the given id
func (r *Repository) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	query, args, err := r.updateQuery(fields, id)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return newStorageError(query, err)
	}
	return nil
}

// FindUserByID retrieves a single row by id
func (r *Repository) FindUserByID(ctx context.Context, id any) (models.Row, error) {
	query := r.selectByIDQuery()
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, newStorageError(query, err)
	}
	defer rows.Close()

	users, err := scanRows(rows)
	if err != nil {
		return nil, newStorageError(query, err)
	}
	if len(users) == 0 {
		return nil, &StorageError{Message: ErrNotFound.Error(), SQL: query, Err: ErrNotFound}
	}
	return users[0], nil
}

func (r *Repository) selectAllQuery() string {
	return "SELECT * FROM " + r.dialect.Quote(userTable)
}

func (r *Repository) selectByIDQuery() string {
	return fmt.Sprintf("SELECT * FROM %s WHERE id = %s", r.dialect.Quote(userTable), r.dialect.Placeholder(1))
}

func (r *Repository) insertQuery(fields map[string]any) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("failed to build insert: no columns")
	}
	keys := sortedKeys(fields)
	cols := make([]string, len(keys))
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		cols[i] = r.dialect.Quote(k)
		marks[i] = r.dialect.Placeholder(i + 1)
		args[i] = fields[k]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.dialect.Quote(userTable), strings.Join(cols, ", "), strings.Join(marks, ", "))
	if r.dialect.returning {
		query += " RETURNING id"
	}
	return query, args, nil
}

func (r *Repository) updateQuery(fields map[string]any, id string) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("failed to build update: no columns")
	}
	keys := sortedKeys(fields)
	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		sets[i] = r.dialect.Quote(k) + " = " + r.dialect.Placeholder(i+1)
		args = append(args, fields[k])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
		r.dialect.Quote(userTable), strings.Join(sets, ", "), r.dialect.Placeholder(len(keys)+1))
	return query, args, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
