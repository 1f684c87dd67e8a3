package repository

import (
	"context"
	"database/sql"
	"errors"
	"go-shop-api/logger"
	"go-shop-api/model"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// uniqueViolation is the postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

var ErrDuplicateEmail = errors.New("email already registered")

// IUserRepository defines the contract for account persistence.
// Lookups return sql.ErrNoRows when nothing matches.
type IUserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
	UpdateRole(ctx context.Context, id int, role string) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create inserts user and fills in its ID, role and creation time. The
// users_email_key constraint makes concurrent signups for one email safe.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	log := logger.Log.WithField("email", user.Email)
	log.Info("Executing query to create a new user")

	query := `INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, role, created_at`
	err := r.DB.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash).Scan(&user.ID, &user.Role, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			log.Info("User with this email already exists")
			return ErrDuplicateEmail
		}
		log.WithError(err).Error("Failed to execute create user query")
		return err
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1`
	return r.getOne(ctx, logger.Log.WithField("email", email), query, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	query := `SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = $1`
	return r.getOne(ctx, logger.Log.WithField("user_id", id), query, id)
}

func (r *UserRepository) getOne(ctx context.Context, log *logrus.Entry, query string, arg interface{}) (*model.User, error) {
	log.Info("Executing query to get user")

	user := &model.User{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.WithError(err).Error("Failed to execute get user query")
		}
		return nil, err
	}
	return user, nil
}

// UpdateRole changes a user's role. It returns sql.ErrNoRows when the user
// does not exist.
func (r *UserRepository) UpdateRole(ctx context.Context, id int, role string) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": id,
		"role":    role,
	})
	log.Info("Executing query to update user role")

	res, err := r.DB.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute update user role query")
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
