package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/user-service/internal/models"
)

func newMock(t *testing.T, dialect Dialect) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewRepository(db, dialect), mock
}

func userRows(mock sqlmock.Sqlmock) *sqlmock.Rows {
	return mock.NewRowsWithColumnDefinition(
		mock.NewColumn("id").OfType("INT", int64(0)),
		mock.NewColumn("email").OfType("VARCHAR", ""),
		mock.NewColumn("password").OfType("VARCHAR", ""),
		mock.NewColumn("name").OfType("VARCHAR", ""),
	)
}

var userFields = map[string]any{
	"email":    "a@b.com",
	"password": "longenough",
	"name":     "Jo",
}

func TestListUsers_DecodesTextProtocolValues(t *testing.T) {
	repo, mock := newMock(t, MySQL)

	mock.ExpectQuery("SELECT * FROM `user`").
		WillReturnRows(userRows(mock).
			AddRow([]byte("1"), []byte("a@b.com"), []byte("longenough"), []byte("Jo")).
			AddRow([]byte("2"), []byte("c@d.com"), []byte("secret123"), []byte("Al")))

	users, err := repo.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.Row{"id": int64(1), "email": "a@b.com", "password": "longenough", "name": "Jo"}, users[0])
	assert.Equal(t, int64(2), users[1]["id"])
}

func TestListUsers_EmptyTableIsEmptySlice(t *testing.T) {
	repo, mock := newMock(t, MySQL)

	mock.ExpectQuery("SELECT * FROM `user`").WillReturnRows(userRows(mock))

	users, err := repo.ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestListUsers_StorageError(t *testing.T) {
	repo, mock := newMock(t, MySQL)

	mock.ExpectQuery("SELECT * FROM `user`").WillReturnError(errors.New("table missing"))

	_, err := repo.ListUsers(context.Background())
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "table missing", se.Message)
	assert.Equal(t, "SELECT * FROM `user`", se.SQL)
	assert.Empty(t, se.Code)
}

func TestCreateUser_MySQLUsesLastInsertID(t *testing.T) {
	repo, mock := newMock(t, MySQL)

	mock.ExpectExec("INSERT INTO `user` (`email`, `name`, `password`) VALUES (?, ?, ?)").
		WithArgs("a@b.com", "Jo", "longenough").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.CreateUser(context.Background(), userFields)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestCreateUser_PostgresUsesReturning(t *testing.T) {
	repo, mock := newMock(t, Postgres)

	mock.ExpectQuery(`INSERT INTO "user" ("email", "name", "password") VALUES ($1, $2, $3) RETURNING id`).
		WithArgs("a@b.com", "Jo", "longenough").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	id, err := repo.CreateUser(context.Background(), userFields)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
}

func TestCreateUser_ExtraFieldsBecomeColumns(t *testing.T) {
	repo, mock := newMock(t, MySQL)

	fields := map[string]any{"email": "a@b.com", "password": "longenough", "name": "Jo", "is`admin": true}
	mock.ExpectExec("INSERT INTO `user` (`email`, `is``admin`, `name`, `password`) VALUES (?, ?, ?, ?)").
		WithArgs("a@b.com", true, "Jo", "longenough").
		WillReturnResult(sqlmock.NewResult(3, 1))

	_, err := repo.CreateUser(context.Background(), fields)
	require.NoError(t, err)
}

func TestCreateUser_DuplicateCodes(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		err     error
	}{
		{
			name:    "mysql",
			dialect: MySQL,
			query:   "INSERT INTO `user` (`email`, `name`, `password`) VALUES (?, ?, ?)",
			err:     &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.com' for key 'email'"},
		},
		{
			name:    "postgres",
			dialect: Postgres,
			query:   `INSERT INTO "user" ("email", "name", "password") VALUES ($1, $2, $3) RETURNING id`,
			err:     &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMock(t, tt.dialect)
			if tt.dialect.returning {
				mock.ExpectQuery(tt.query).WillReturnError(tt.err)
			} else {
				mock.ExpectExec(tt.query).WillReturnError(tt.err)
			}

			_, err := repo.CreateUser(context.Background(), userFields)
			var se *StorageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, CodeDuplicateEntry, se.Code)
			assert.Equal(t, tt.query, se.SQL)
			assert.Equal(t, tt.err.Error(), se.Message)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCreateUser_NoFields(t *testing.T) {
	repo, _ := newMock(t, MySQL)

	_, err := repo.CreateUser(context.Background(), map[string]any{})
	require.Error(t, err)
}

func TestUpdateUser(t *testing.T) {
	repo, mock := newMock(t, Postgres)

	mock.ExpectExec(`UPDATE "user" SET "email" = $1, "name" = $2, "password" = $3 WHERE id = $4`).
		WithArgs("a@b.com", "Jo", "longenough", "1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateUser(context.Background(), "1", userFields))
}

func TestUpdateUser_Duplicate(t *testing.T) {
	repo, mock := newMock(t, MySQL)

	mock.ExpectExec("UPDATE `user` SET `email` = ?, `name` = ?, `password` = ? WHERE id = ?").
		WithArgs("a@b.com", "Jo", "longenough", "1").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.UpdateUser(context.Background(), "1", userFields)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeDuplicateEntry, se.Code)
}

func TestFindUserByID(t *testing.T) {
	repo, mock := newMock(t, MySQL)

	mock.ExpectQuery("SELECT * FROM `user` WHERE id = ?").
		WithArgs(int64(7)).
		WillReturnRows(userRows(mock).AddRow(int64(7), "a@b.com", "longenough", "Jo"))

	user, err := repo.FindUserByID(context.Background(), int64(7))
	require.NoError(t, err)
	assert.Equal(t, models.Row{"id": int64(7), "email": "a@b.com", "password": "longenough", "name": "Jo"}, user)
}

func TestFindUserByID_NotFound(t *testing.T) {
	repo, mock := newMock(t, Postgres)

	mock.ExpectQuery(`SELECT * FROM "user" WHERE id = $1`).
		WithArgs("42").
		WillReturnRows(userRows(mock))

	_, err := repo.FindUserByID(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNotFound)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, `SELECT * FROM "user" WHERE id = $1`, se.SQL)
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, `"a""b"`, d.Quote(`a"b`))
	assert.Equal(t, "$3", d.Placeholder(3))

	d, err = DialectFor("mysql")
	require.NoError(t, err)
	assert.Equal(t, "?", d.Placeholder(3))

	_, err = DialectFor("sqlite")
	assert.Error(t, err)
}
