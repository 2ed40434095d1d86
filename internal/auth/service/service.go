package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"papex_backend/internal/auth/domain"
	"papex_backend/internal/auth/repository"
	"papex_backend/platform/apperr"
	"papex_backend/platform/config"
	"papex_backend/platform/httpkit"
	"papex_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgInvalidCredentials = "Identifiants invalides."
	msgInactiveAccount    = "Compte désactivé."
	msgInvalidToken       = "Invalid token"
	msgUserNotFound       = "Utilisateur introuvable."
	msgEmailTaken         = "Cet email est déjà utilisé."
	msgInvalidRole        = "Rôle invalide."
)

// Session is the token pair issued on login and refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	Role         string
}

// CreateUserInput is what an administrator provides to open a staff account.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

type Service struct {
	repo repository.AuthRepository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
	now  func() time.Time
}

func New(repo repository.AuthRepository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log, now: time.Now}
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.AuthEvent("login", email, false, "unknown email")
			return Session{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return Session{}, err
	}

	if err := comparePassword(user.PasswordHash, password); err != nil {
		s.log.AuthEvent("login", email, false, "password mismatch")
		return Session{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !user.IsActive {
		s.log.AuthEvent("login", email, false, "inactive")
		return Session{}, apperr.Forbidden(msgInactiveAccount)
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return Session{}, err
	}
	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		s.log.DatabaseError("touch last login", err)
	}
	s.log.AuthEvent("login", email, true, "")
	return session, nil
}

// Refresh rotates the refresh token: the presented one is revoked and a new pair is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	hash := hashToken(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, apperr.Unauthorized(msgInvalidToken)
		}
		return Session{}, err
	}

	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		return Session{}, err
	}
	if s.now().After(expiresAt) {
		return Session{}, apperr.Unauthorized(msgInvalidToken)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, apperr.Unauthorized(msgInvalidToken)
		}
		return Session{}, err
	}
	if !user.IsActive {
		return Session{}, apperr.Unauthorized(msgInvalidToken)
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.RevokeRefreshToken(ctx, hashToken(refreshToken))
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Profile{}, apperr.NotFound(msgUserNotFound)
		}
		return domain.Profile{}, err
	}
	return toProfile(user), nil
}

// ListUsers returns active staff, optionally restricted to one role.
func (s *Service) ListUsers(ctx context.Context, role string) ([]domain.Profile, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role != "" && !domain.ValidRole(role) {
		return nil, apperr.BadRequest(msgInvalidRole)
	}
	users, err := s.repo.ListActiveUsers(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, toProfile(u))
	}
	return out, nil
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (domain.Profile, error) {
	if !domain.ValidRole(in.Role) {
		return domain.Profile{}, apperr.BadRequest(msgInvalidRole)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return domain.Profile{}, err
	}
	user, err := s.repo.CreateUser(ctx, repository.NewUser{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         in.Role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return domain.Profile{}, apperr.Conflict(msgEmailTaken)
		}
		return domain.Profile{}, err
	}
	return toProfile(user), nil
}

func (s *Service) issueSession(ctx context.Context, user repository.User) (Session, error) {
	accessToken, err := httpkit.SignAccessToken(user.ID, user.Role, s.cfg.GetAccessTokenTTL(), s.cfg.GetJWTAccessSecret())
	if err != nil {
		return Session{}, err
	}

	refreshToken, err := generateRandomToken(48)
	if err != nil {
		return Session{}, err
	}
	expiresAt := s.now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hashToken(refreshToken), expiresAt); err != nil {
		return Session{}, err
	}

	return Session{AccessToken: accessToken, RefreshToken: refreshToken, Role: user.Role}, nil
}

func toProfile(u repository.User) domain.Profile {
	return domain.Profile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
