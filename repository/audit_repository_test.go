package repository

import (
	"context"
	"go-shop-api/model"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepository_Create(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)
	now := time.Now()
	userID := 3

	dbMock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO audit_logs`)).
		WithArgs(3, model.AuditActionLogin, "User logged in", "10.0.0.1", "curl/8", []byte(`{"email":"ann@x.com"}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))

	entry := &model.AuditLog{
		UserID:      &userID,
		Action:      model.AuditActionLogin,
		Description: "User logged in",
		IPAddress:   "10.0.0.1",
		UserAgent:   "curl/8",
		Metadata:    map[string]any{"email": "ann@x.com"},
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.Equal(t, 11, entry.ID)
	assert.Equal(t, now, entry.CreatedAt)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestAuditRepository_CreateWithoutUser(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO audit_logs`)).
		WithArgs(nil, model.AuditActionClear, "cleared", "", "", []byte(`{}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	err = NewAuditRepository(db).Create(context.Background(), &model.AuditLog{Action: model.AuditActionClear, Description: "cleared"})
	assert.NoError(t, err)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestAuditRepository_List(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepository(db)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := model.AuditFilter{Page: 2, Limit: 10, UserID: 3, Action: "log_in", StartDate: &start}

	dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM audit_logs WHERE user_id = $1 AND action ILIKE '%' || $2 || '%' AND created_at >= $3`)).
		WithArgs(3, `log\_in`, start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	columns := []string{"id", "user_id", "action", "description", "ip_address", "user_agent", "metadata", "created_at"}
	dbMock.ExpectQuery(regexp.QuoteMeta(`LIMIT $4 OFFSET $5`)).
		WithArgs(3, `log\_in`, start, 10, 10).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2, 3, "auth.log_in", "d", "ip", "ua", []byte(`{"k":"v"}`), start).
			AddRow(1, nil, "auth.log_in", "d", "ip", "ua", []byte(`{}`), start))

	logs, total, err := repo.List(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, logs, 2)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, 3, *logs[0].UserID)
	assert.Equal(t, "v", logs[0].Metadata["k"])
	assert.Nil(t, logs[1].UserID)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestAuditRepository_ListUnfiltered(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectQuery(`^SELECT COUNT\(\*\) FROM audit_logs$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	dbMock.ExpectQuery(regexp.QuoteMeta(`LIMIT $1 OFFSET $2`)).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	logs, total, err := NewAuditRepository(db).List(context.Background(), model.AuditFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, logs)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestAuditRepository_DeleteAll(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectExec(regexp.QuoteMeta(`DELETE FROM audit_logs`)).WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewAuditRepository(db).DeleteAll(context.Background())
	assert.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
