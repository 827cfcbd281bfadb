package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/smart-recruiter/assessment-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	Create(ctx context.Context, name, email, password string, role models.UserRole) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetByEmailAndRole(ctx context.Context, email string, role models.UserRole) (models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, name, email, password string, role models.UserRole) (models.User, error) {
	if !models.IsValidRole(role) {
		return models.User{}, errors.Errorf("invalid role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, errors.Wrap(err, "hash password")
	}

	const query = `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, role;
	`

	var user models.User
	err = r.db.QueryRowContext(ctx, query, name, email, string(hash), string(role)).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := r.getBy(ctx, "email = $1", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, errors.New("invalid credentials")
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, errors.New("invalid credentials")
	}

	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (models.User, error) {
	return r.getBy(ctx, "id = $1", userID)
}

func (r *userRepository) GetByEmailAndRole(ctx context.Context, email string, role models.UserRole) (models.User, error) {
	return r.getBy(ctx, "email = $1 AND role = $2", email, string(role))
}

func (r *userRepository) getBy(ctx context.Context, where string, args ...interface{}) (models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role
		FROM users
		WHERE ` + where

	var user models.User
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
	)
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}
