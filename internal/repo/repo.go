package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInviteExpired = errors.New("invite expired")
	ErrInviteUsed    = errors.New("invite used")
	ErrEmailTaken    = errors.New("email already registered")
)

type Repo struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

func (r *Repo) CreateUser(ctx context.Context, email, passwordHash, timezone string) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO users (email, password_hash, timezone) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING RETURNING id`, email, passwordHash, timezone).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmailTaken
	}
	return id, err
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := r.Pool.QueryRow(ctx, `SELECT id, password_hash FROM users WHERE email=$1`, email).Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return id, hash, err
}

func (r *Repo) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	var u models.User
	err := r.Pool.QueryRow(ctx, `SELECT id, email, timezone, created_at, updated_at FROM users WHERE id=$1`, userID).
		Scan(&u.ID, &u.Email, &u.Timezone, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *Repo) UpdateUserTimezone(ctx context.Context, userID, timezone string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE users SET timezone=$1, updated_at=now() WHERE id=$2`, timezone, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO sessions (user_id, token, expires_at) VALUES ($1, $2, $3)`, userID, token, expiresAt)
	return err
}

func (r *Repo) CreateInvite(ctx context.Context, createdBy *string, code string, expiresAt time.Time) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO invites (code, created_by_user_id, expires_at) VALUES ($1, $2, $3)`, code, createdBy, expiresAt)
	return err
}

// ConsumeInvite marks an invite used, distinguishing why it can't be.
func (r *Repo) ConsumeInvite(ctx context.Context, code string) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `UPDATE invites SET used_at=now()
		WHERE code=$1 AND used_at IS NULL AND expires_at > now()
		RETURNING id`, code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		var expiresAt time.Time
		var usedAt *time.Time
		checkErr := tx.QueryRow(ctx, `SELECT expires_at, used_at FROM invites WHERE code=$1`, code).Scan(&expiresAt, &usedAt)
		if errors.Is(checkErr, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if checkErr != nil {
			return checkErr
		}
		if usedAt != nil {
			return ErrInviteUsed
		}
		if time.Now().After(expiresAt) {
			return ErrInviteExpired
		}
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
