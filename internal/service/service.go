package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fischervincent/grow-journal-sub000/internal/auth"
	"github.com/fischervincent/grow-journal-sub000/internal/repo"
)

// seedEventTypes are created for every new account so reminders have
// something to attach to from day one.
var seedEventTypes = []string{"Watering", "Fertilizing", "Repotting", "Misting"}

type Service struct {
	Repo      *repo.Repo
	Auth      *auth.Manager
	TokenTTL  time.Duration
	RefreshTT time.Duration
	InviteTTL time.Duration
}

func New(r *repo.Repo, authManager *auth.Manager) *Service {
	return &Service{
		Repo:      r,
		Auth:      authManager,
		TokenTTL:  time.Hour,
		RefreshTT: 7 * 24 * time.Hour,
		InviteTTL: 7 * 24 * time.Hour,
	}
}

// Register creates an account behind the invite gate: the code must
// exist, be unused and unexpired. The new account gets the seed care
// event types.
func (s *Service) Register(ctx context.Context, inviteCode, email, password, timezone string) (string, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return "", fmt.Errorf("unknown timezone %q", timezone)
	}
	if err := s.Repo.ConsumeInvite(ctx, inviteCode); err != nil {
		return "", err
	}
	hash, err := s.Auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	userID, err := s.Repo.CreateUser(ctx, email, hash, timezone)
	if err != nil {
		return "", err
	}
	for _, name := range seedEventTypes {
		if _, err := s.Repo.CreateEventType(ctx, userID, name, nil); err != nil {
			return "", err
		}
	}
	return userID, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	userID, hash, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if err := s.Auth.ComparePassword(hash, password); err != nil {
		return "", "", errors.New("invalid credentials")
	}
	accessToken, err := s.Auth.GenerateToken(userID, s.TokenTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return "", "", err
	}
	if err := s.Repo.CreateSession(ctx, userID, refreshToken, time.Now().Add(s.RefreshTT)); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// IssueInvite mints a single-use invite code on behalf of an existing
// user. createdBy may be nil for the bootstrap invite minted at startup.
func (s *Service) IssueInvite(ctx context.Context, createdBy *string) (string, error) {
	code := uuid.NewString()
	if err := s.Repo.CreateInvite(ctx, createdBy, code, time.Now().Add(s.InviteTTL)); err != nil {
		return "", err
	}
	return code, nil
}

func (s *Service) generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
