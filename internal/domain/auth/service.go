package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	Store    StoreAPI
	Secret   string
	TokenTTL time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: ttl}
}

func (s *Service) Signup(ctx context.Context, input SignupInput) (Administrator, error) {
	hash, err := HashPassword(input.Password)
	if err != nil {
		return Administrator{}, err
	}
	company := Company{
		Name:    strings.TrimSpace(input.CompanyName),
		Address: strings.TrimSpace(input.CompanyAddress),
		Phone:   strings.TrimSpace(input.CompanyPhone),
	}
	admin := Administrator{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
	}
	return s.Store.CreateCompanyWithAdmin(ctx, company, admin)
}

// Login verifies the password and issues a bearer token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, Administrator, error) {
	admin, err := s.authenticate(ctx, email, password)
	if err != nil {
		return "", Administrator{}, err
	}
	token, err := GenerateToken(s.Secret, Claims{AdminID: admin.ID, CompanyID: admin.CompanyID}, s.TokenTTL)
	if err != nil {
		return "", Administrator{}, err
	}
	return token, admin, nil
}

// CheckCredentials reports whether the pair is valid. ErrAdminNotFound is
// returned for unknown emails.
func (s *Service) CheckCredentials(ctx context.Context, email, password string) (bool, error) {
	admin, err := s.Store.FindAdminByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, err
	}
	return CheckPassword(admin.PasswordHash, password) == nil, nil
}

// ResetPassword replaces the hash after verifying the current password and
// returns the administrator it changed.
func (s *Service) ResetPassword(ctx context.Context, email, currentPassword, newPassword string) (Administrator, error) {
	admin, err := s.authenticate(ctx, email, currentPassword)
	if err != nil {
		return Administrator{}, err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return Administrator{}, err
	}
	if err := s.Store.UpdatePassword(ctx, admin.ID, hash); err != nil {
		return Administrator{}, err
	}
	return admin, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string) (Administrator, error) {
	admin, err := s.Store.FindAdminByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrAdminNotFound) {
		return Administrator{}, ErrInvalidCredentials
	}
	if err != nil {
		return Administrator{}, err
	}
	if err := CheckPassword(admin.PasswordHash, password); err != nil {
		return Administrator{}, ErrInvalidCredentials
	}
	return admin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
