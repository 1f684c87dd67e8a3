package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"go-shop-api/logger"
	"go-shop-api/model"
	"strings"

	"github.com/sirupsen/logrus"
)

// IAuditRepository defines the contract for audit log persistence.
type IAuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type AuditRepository struct {
	DB *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	log := logger.Log.WithFields(logrus.Fields{
		"action":  entry.Action,
		"user_id": entry.UserID,
	})
	log.Info("Executing query to create an audit log entry")

	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("could not encode audit metadata: %w", err)
	}

	query := `INSERT INTO audit_logs (user_id, action, description, ip_address, user_agent, metadata)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err = r.DB.QueryRowContext(ctx, query,
		nullableInt(entry.UserID), entry.Action, entry.Description, entry.IPAddress, entry.UserAgent, raw,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create audit log query")
		return err
	}
	return nil
}

// List returns one page of entries matching filter, newest first, together
// with the total number of matching entries. filter.Page and filter.Limit
// must already be normalised.
func (r *AuditRepository) List(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, int, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"page":  filter.Page,
		"limit": filter.Limit,
	})
	log.Info("Executing query to list audit logs")

	where, args := auditWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM audit_logs` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.WithError(err).Error("Failed to execute count audit logs query")
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`SELECT id, user_id, action, description, ip_address, user_agent, metadata, created_at
		FROM audit_logs%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.DB.QueryContext(ctx, listQuery, args...)
	if err != nil {
		log.WithError(err).Error("Failed to execute list audit logs query")
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]*model.AuditLog, 0, filter.Limit)
	for rows.Next() {
		var (
			entry  model.AuditLog
			userID sql.NullInt64
			raw    []byte
		)
		if err := rows.Scan(&entry.ID, &userID, &entry.Action, &entry.Description, &entry.IPAddress, &entry.UserAgent, &raw, &entry.CreatedAt); err != nil {
			log.WithError(err).Error("Failed to scan audit log row")
			return nil, 0, err
		}
		if userID.Valid {
			id := int(userID.Int64)
			entry.UserID = &id
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &entry.Metadata); err != nil {
				log.WithError(err).WithField("audit_id", entry.ID).Warn("Discarding undecodable audit metadata")
			}
		}
		logs = append(logs, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// DeleteAll removes every audit log entry.
func (r *AuditRepository) DeleteAll(ctx context.Context) (int64, error) {
	logger.Log.Warn("Executing query to delete all audit logs")

	res, err := r.DB.ExecContext(ctx, `DELETE FROM audit_logs`)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete audit logs query")
		return 0, err
	}
	return res.RowsAffected()
}

func auditWhere(filter model.AuditFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID > 0 {
		add("user_id = $%d", filter.UserID)
	}
	if filter.Action != "" {
		add("action ILIKE '%%' || $%d || '%%'", escapeLike(filter.Action))
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
