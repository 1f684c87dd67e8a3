package repository

import (
	"context"
	"database/sql"
	"errors"
	"go-shop-api/model"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	ctx := context.Background()
	insert := regexp.QuoteMeta(`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, role, created_at`)

	t.Run("success", func(t *testing.T) {
		now := time.Now()
		dbMock.ExpectQuery(insert).
			WithArgs("Ann", "ann@x.com", "hash").
			WillReturnRows(sqlmock.NewRows([]string{"id", "role", "created_at"}).AddRow(7, "user", now))

		user := &model.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"}
		err := repo.Create(ctx, user)

		assert.NoError(t, err)
		assert.Equal(t, 7, user.ID)
		assert.Equal(t, "user", user.Role)
		assert.Equal(t, now, user.CreatedAt)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		dbMock.ExpectQuery(insert).
			WithArgs("Ann", "ann@x.com", "hash").
			WillReturnError(&pq.Error{Code: uniqueViolation})

		err := repo.Create(ctx, &model.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})

		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("other error", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		dbMock.ExpectQuery(insert).WillReturnError(dbErr)

		err := repo.Create(ctx, &model.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrDuplicateEmail)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestUserRepository_Get(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	ctx := context.Background()
	columns := []string{"id", "name", "email", "password_hash", "role", "created_at"}

	t.Run("by email", func(t *testing.T) {
		dbMock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
			WithArgs("ann@x.com").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "Ann", "ann@x.com", "hash", "user", time.Now()))

		user, err := repo.GetByEmail(ctx, "ann@x.com")

		require.NoError(t, err)
		assert.Equal(t, 1, user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("by id not found", func(t *testing.T) {
		dbMock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
			WithArgs(42).
			WillReturnRows(sqlmock.NewRows(columns))

		user, err := repo.GetByID(ctx, 42)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestUserRepository_UpdateRole(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	update := regexp.QuoteMeta(`UPDATE users SET role = $1 WHERE id = $2`)

	t.Run("success", func(t *testing.T) {
		dbMock.ExpectExec(update).WithArgs("admin", 3).WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.UpdateRole(context.Background(), 3, "admin"))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		dbMock.ExpectExec(update).WithArgs("admin", 4).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.UpdateRole(context.Background(), 4, "admin"), sql.ErrNoRows)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}
