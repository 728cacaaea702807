package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/duetday/duetday-api/internal/models"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
)

type authRepoStub struct {
	byEmail map[string]*models.Member
	byID    map[string]*models.Member
	tokens  map[string]*models.RefreshToken

	createdToken  *models.RefreshToken
	revokedID     string
	lastLoginID   string
	lastLoginTime time.Time
}

func newAuthRepoStub() *authRepoStub {
	return &authRepoStub{
		byEmail: map[string]*models.Member{},
		byID:    map[string]*models.Member{},
		tokens:  map[string]*models.RefreshToken{},
	}
}

func (s *authRepoStub) addMember(m *models.Member) {
	s.byEmail[m.Email] = m
	s.byID[m.ID] = m
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	if m, ok := s.byEmail[email]; ok {
		return m, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.Member, error) {
	if m, ok := s.byID[id]; ok {
		return m, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	s.lastLoginID = id
	s.lastLoginTime = ts
	return nil
}

func (s *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.createdToken = token
	s.tokens[token.Token] = token
	return nil
}

func (s *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.tokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	s.revokedID = id
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "duetday-api",
	}
}

func activeMember(t *testing.T) *models.Member {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Member{
		ID:           "member-1",
		Email:        "mina@example.com",
		PasswordHash: string(hash),
		Nickname:     "Mina",
		CoupleID:     strPtr("couple-1"),
		Active:       true,
	}
}

func TestAuthServiceLoginIssuesTokens(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addMember(activeMember(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "mina@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, "member-1", resp.Member.ID)
	require.NotNil(t, resp.Member.CoupleID)
	assert.Equal(t, "couple-1", *resp.Member.CoupleID)

	require.NotNil(t, repo.createdToken)
	assert.Equal(t, resp.RefreshToken, repo.createdToken.Token)
	assert.Equal(t, "member-1", repo.lastLoginID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "member-1", claims.MemberID)
	assert.Equal(t, "Mina", claims.Nickname)
	require.NotNil(t, claims.CoupleID)
	assert.Equal(t, "couple-1", *claims.CoupleID)
}

func TestAuthServiceLoginRejectsWrongPassword(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addMember(activeMember(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "mina@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRejectsUnknownEmail(t *testing.T) {
	svc := NewAuthService(newAuthRepoStub(), nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	repo := newAuthRepoStub()
	member := activeMember(t)
	member.Active = false
	repo.addMember(member)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "mina@example.com",
		Password: "correct horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addMember(activeMember(t))
	repo.tokens["old-refresh"] = &models.RefreshToken{
		ID:        "token-1",
		MemberID:  "member-1",
		Token:     "old-refresh",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-refresh"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "old-refresh", resp.RefreshToken)
	assert.Equal(t, "token-1", repo.revokedID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "member-1", claims.MemberID)
}

func TestAuthServiceRefreshRejectsRevokedToken(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addMember(activeMember(t))
	repo.tokens["old-refresh"] = &models.RefreshToken{
		ID:        "token-1",
		MemberID:  "member-1",
		Token:     "old-refresh",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		Revoked:   true,
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-refresh"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRejectsExpiredToken(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addMember(activeMember(t))
	repo.tokens["old-refresh"] = &models.RefreshToken{
		ID:        "token-1",
		MemberID:  "member-1",
		Token:     "old-refresh",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-refresh"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsForeignSignature(t *testing.T) {
	svc := NewAuthService(newAuthRepoStub(), nil, nil, testAuthConfig())

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{MemberID: "member-1"})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
