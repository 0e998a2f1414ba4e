package auth

import (
	"context"
	"errors"
	"strings"

	ierr "insurepay/errors"
	"insurepay/models"
	"insurepay/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func invalidCredentials() error {
	return ierr.NewError("invalid credentials").
		WithHint("Invalid email or password").
		Mark(ierr.ErrUnauthenticated)
}

// account is a stored identity before its password is checked.
type account struct {
	principal    models.Principal
	passwordHash string
}

// lookup resolves email to an admin, insurer or customer account, in that order.
func (s *DefaultAuthService) lookup(ctx context.Context, email string) (*account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, invalidCredentials()
	}

	if s.Admin.Email != "" && strings.EqualFold(s.Admin.Email, email) {
		return &account{
			principal:    models.Principal{Role: models.RoleAdmin, ID: "admin", Email: s.Admin.Email, Name: "Administrator"},
			passwordHash: s.Admin.PasswordHash,
		}, nil
	}

	insurer, err := s.Insurers.GetByEmail(ctx, email)
	if err == nil {
		return &account{
			principal:    models.Principal{Role: models.RoleInsurer, ID: insurer.ID, Email: insurer.Email, Name: insurer.Name},
			passwordHash: insurer.PasswordHash,
		}, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	customer, err := s.Customers.GetByEmail(ctx, email)
	if err == nil {
		return &account{
			principal:    models.Principal{Role: models.RoleCustomer, ID: customer.ID, Email: customer.Email, Name: customer.Name},
			passwordHash: customer.PasswordHash,
		}, nil
	}
	if ierr.IsNotFound(err) {
		return nil, invalidCredentials()
	}
	return nil, err
}

func (s *DefaultAuthService) Authenticate(ctx context.Context, email, password string) (*models.Principal, error) {
	acct, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if acct.passwordHash == "" {
		return nil, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.passwordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.Logger.Warn("Stored password hash is unusable", zap.String("email", email), zap.Error(err))
		}
		return nil, invalidCredentials()
	}
	p := acct.principal
	return &p, nil
}

func (s *DefaultAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	principal, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, *principal)
}

// issue signs a token for principal and caches its hash, replacing any
// earlier session of the same principal.
func (s *DefaultAuthService) issue(ctx context.Context, principal models.Principal) (*models.LoginResponse, error) {
	token, err := utils.GenerateToken(principal.ID, string(principal.Role), principal.Email, s.TokenTTL)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Could not issue token").Mark(ierr.ErrSystem)
	}
	if err := s.Sessions.Set(ctx, sessionKey(principal), utils.HashToken(token), s.TokenTTL); err != nil {
		return nil, ierr.WithError(err).WithHint("Could not start session").Mark(ierr.ErrSystem)
	}
	s.Logger.Info("Login succeeded", zap.String("role", string(principal.Role)), zap.String("id", principal.ID))
	return &models.LoginResponse{Principal: principal, Token: token}, nil
}

func (s *DefaultAuthService) Logout(ctx context.Context, principal models.Principal) error {
	return s.Sessions.Del(ctx, sessionKey(principal))
}

func (s *DefaultAuthService) ValidateSession(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Invalid token").Mark(ierr.ErrUnauthenticated)
	}
	principal := models.Principal{Role: models.Role(claims.Role), ID: claims.Subject, Email: claims.Email}
	switch principal.Role {
	case models.RoleAdmin, models.RoleInsurer, models.RoleCustomer:
	default:
		return nil, ierr.NewErrorf("unknown role %q", claims.Role).WithHint("Invalid token").Mark(ierr.ErrUnauthenticated)
	}

	cached, err := s.Sessions.Get(ctx, sessionKey(principal))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ierr.NewError("session not found").WithHint("Session expired").Mark(ierr.ErrUnauthenticated)
		}
		return nil, ierr.WithError(err).WithHint("Could not verify session").Mark(ierr.ErrSystem)
	}
	if cached != utils.HashToken(token) {
		return nil, ierr.NewError("token mismatch").WithHint("Token mismatch").Mark(ierr.ErrUnauthenticated)
	}
	return &principal, nil
}

func sessionKey(p models.Principal) string {
	return utils.AuthCachePrefix + string(p.Role) + ":" + p.ID
}

// HashPassword returns the bcrypt hash stored for new accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
