package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/inventory-lending/internal/user"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the account store authentication needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type Service struct {
	users    UserStore
	tokenGen TokenGenerator
	logger   *slog.Logger
}

func NewService(users UserStore, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		tokenGen: tokenGen,
		logger:   logger,
	}
}

// Authenticate verifies username/password and issues an access token.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.GetByUsername(ctx, dto.Username)
	if err != nil {
		s.logger.Error("failed to look up user for login", "error", err, "username", dto.Username)
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login rejected: bad password", "username", dto.Username)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenGen.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		s.logger.Error("failed to generate access token", "error", err, "user_id", u.ID)
		return nil, err
	}

	s.logger.Info("user authenticated", "user_id", u.ID, "username", u.Username)

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	}, nil
}

// UserFromToken validates the token and loads the current account.
func (s *Service) UserFromToken(ctx context.Context, tokenString string) (*user.User, error) {
	claims, err := s.tokenGen.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return u, nil
}
