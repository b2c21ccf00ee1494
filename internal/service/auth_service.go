package service

import (
	"context"
	"errors"

	"library-api/internal/core/auth"
	"library-api/internal/domain"
)

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type AuthService struct {
	users *UserService
	jwt   *auth.JWTer
}

func NewAuthService(users *UserService, j *auth.JWTer) *AuthService {
	return &AuthService{users: users, jwt: j}
}

func (s *AuthService) Register(ctx context.Context, in CreateUserInput) (*AuthResult, error) {
	u, err := s.users.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Resolve turns a bearer token into the live user it names. Every failure,
// including a user deleted after the token was issued, is Unauthorized.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, domain.Unauthorized("token is not valid")
	}
	u, err := s.users.Get(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized("token is not valid")
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) issue(u *domain.User) (*AuthResult, error) {
	tok, err := s.jwt.Issue(u.ID)
	if err != nil {
		return nil, domain.Internal("issue token failed", err)
	}
	return &AuthResult{Token: tok, User: u}, nil
}
