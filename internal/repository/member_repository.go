package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/duetday/duetday-api/internal/models"
)

// MemberRepository persists members and their refresh token sessions.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository creates a new member repository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `id, email, password_hash, nickname, birth_day, couple_id, active, last_login, created_at, updated_at`

// FindByEmail loads a member by email.
func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	query := fmt.Sprintf("SELECT %s FROM members WHERE email = $1", memberColumns)
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, email); err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByID loads a member by id.
func (r *MemberRepository) FindByID(ctx context.Context, id string) (*models.Member, error) {
	query := fmt.Sprintf("SELECT %s FROM members WHERE id = $1", memberColumns)
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// FindPartner returns the other member of a couple.
func (r *MemberRepository) FindPartner(ctx context.Context, coupleID, memberID string) (*models.Member, error) {
	query := fmt.Sprintf("SELECT %s FROM members WHERE couple_id = $1 AND id <> $2", memberColumns)
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, coupleID, memberID); err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateLastLogin records a successful login timestamp.
func (r *MemberRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE members SET last_login = $1, updated_at = $1 WHERE id = $2", ts, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CreateRefreshToken stores a refresh token session.
func (r *MemberRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, member_id, token, expires_at, created_at, revoked)
VALUES (:id, :member_id, :token, :expires_at, :created_at, :revoked)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken loads a refresh token session by its opaque value.
func (r *MemberRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, member_id, token, expires_at, created_at, revoked, revoked_at FROM refresh_tokens WHERE token = $1`
	var session models.RefreshToken
	if err := r.db.GetContext(ctx, &session, query, token); err != nil {
		return nil, err
	}
	return &session, nil
}

// RevokeRefreshToken marks a refresh token session revoked.
func (r *MemberRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $1 WHERE id = $2", revokedAt, id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
