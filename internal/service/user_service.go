package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"library-api/internal/domain"
	"library-api/internal/repo"
	"library-api/pkg/utils"
)

type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.Role // empty means student
}

// UserService is the credential store: it owns hashing and email
// normalisation so no caller ever persists a plaintext password.
type UserService struct {
	store domain.Store
}

func NewUserService(store domain.Store) *UserService { return &UserService{store: store} }

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// hashPassword reports bcrypt's 72 byte ceiling as bad input.
func hashPassword(pw string) (string, error) {
	h, err := utils.HashPassword(pw)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return "", domain.Internal("hash password failed", err)
	}
	return h, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if !role.Valid() {
		return nil, domain.Validation("role must be either student or librarian")
	}
	email := normalizeEmail(in.Email)
	users := s.store.Users()

	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal("find user failed", err)
	}
	if existing != nil {
		return nil, domain.Conflict("user already exists")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, domain.Conflict("user already exists")
		}
		return nil, domain.Internal("create user failed", err)
	}
	return u, nil
}

// Verify returns the user owning email if password matches. Unknown email and
// wrong password produce the same error.
func (s *UserService) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.store.Users().FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, domain.Internal("find user failed", err)
	}
	if u == nil {
		utils.BurnPasswordCheck(password)
		return nil, domain.Unauthorized("invalid credentials")
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.Unauthorized("invalid credentials")
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("find user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	out, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, domain.Internal("list users failed", err)
	}
	return out, nil
}

// Update applies only the fields present in p.
func (s *UserService) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	users := s.store.Users()
	u, err := users.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("find user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}

	if p.FirstName != nil {
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Role != nil {
		if !p.Role.Valid() {
			return nil, domain.Validation("role must be either student or librarian")
		}
		u.Role = *p.Role
	}
	if p.Email != nil {
		email := normalizeEmail(*p.Email)
		if email != u.Email {
			other, err := users.FindByEmail(ctx, email)
			if err != nil {
				return nil, domain.Internal("find user failed", err)
			}
			if other != nil {
				return nil, domain.Conflict("user already exists")
			}
			u.Email = email
		}
	}
	if p.Password != nil {
		hash, err := hashPassword(*p.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, domain.Conflict("user already exists")
		}
		return nil, domain.Internal("update user failed", err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Users().Delete(ctx, id)
	if err != nil {
		return domain.Internal("delete user failed", err)
	}
	if !ok {
		return domain.NotFound("user not found")
	}
	return nil
}
