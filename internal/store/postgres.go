package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/todo-api/internal/apperr"
	"github.com/ayush/todo-api/internal/models"
)

// SQLSTATE codes the store maps to domain results.
const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// PostgresStore handles user credentials against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username   VARCHAR(255) UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)
	`)
	return classify("migrate users", err)
}

// Ping checks the connection pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return classify("ping postgres", s.pool.Ping(ctx))
}

// CreateUser relies on the UNIQUE constraint, so concurrent registrations of
// one username resolve to a single winner.
func (s *PostgresStore) CreateUser(ctx context.Context, username, hashedPassword string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password)
		 VALUES ($1, $2)
		 RETURNING id::text, username, password, created_at`,
		username, hashedPassword,
	).Scan(&u.ID, &u.Username, &u.Password, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrDuplicateUsername
		}
		return nil, classify("create user", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "get user by username",
		`SELECT id::text, username, password, created_at FROM users WHERE username = $1`, username)
}

// GetUserByID treats an id that is not a UUID as no match.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.getUser(ctx, "get user by id",
		`SELECT id::text, username, password, created_at FROM users WHERE id = $1::uuid`, id)
	if hasSQLState(err, invalidTextRepresentation) {
		return nil, nil
	}
	return u, err
}

func (s *PostgresStore) getUser(ctx context.Context, op, query, arg string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Password, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(op, err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	return hasSQLState(err, uniqueViolation)
}

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
