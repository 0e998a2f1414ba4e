package auth_test

import (
	"context"
	"testing"
	"time"

	ierr "insurepay/errors"
	"insurepay/models"
	"insurepay/services/auth"
	"insurepay/testutil"
	"insurepay/utils"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceSuite struct {
	suite.Suite
	ctx      context.Context
	sessions *testutil.InMemoryKV
	otps     *testutil.InMemoryKV
	notifier *testutil.RecordingNotifier
	service  *auth.DefaultAuthService
}

func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func hash(s *suite.Suite, password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	return string(h)
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctx = context.Background()
	customers := testutil.NewInMemoryCustomerStore()
	insurers := testutil.NewInMemoryInsurerStore()
	s.sessions = testutil.NewInMemoryKV()
	s.otps = testutil.NewInMemoryKV()
	s.notifier = testutil.NewRecordingNotifier()

	s.Require().NoError(customers.Create(s.ctx, &models.Customer{
		ID: "cust_1", Name: "Asha", Email: "asha@example.com", PasswordHash: hash(&s.Suite, "customer-pass"),
	}))
	s.Require().NoError(insurers.Create(s.ctx, &models.Insurer{
		ID: "ins_1", Name: "Acme Insurance", Email: "ops@acme.example", PasswordHash: hash(&s.Suite, "insurer-pass"),
	}))

	s.service = auth.NewDefaultAuthService(customers, insurers, s.sessions, s.otps, s.notifier,
		auth.AdminAccount{Email: "admin@insurepay.local", PasswordHash: hash(&s.Suite, "admin-pass")},
		zap.NewNop())
}

func (s *AuthServiceSuite) TestAuthenticateResolvesEachRole() {
	tests := []struct {
		email, password string
		role            models.Role
		id              string
	}{
		{"admin@insurepay.local", "admin-pass", models.RoleAdmin, "admin"},
		{"ops@acme.example", "insurer-pass", models.RoleInsurer, "ins_1"},
		{"ASHA@example.com", "customer-pass", models.RoleCustomer, "cust_1"},
	}
	for _, tt := range tests {
		s.Run(string(tt.role), func() {
			p, err := s.service.Authenticate(s.ctx, tt.email, tt.password)
			s.Require().NoError(err)
			s.Equal(tt.role, p.Role)
			s.Equal(tt.id, p.ID)
		})
	}
}

func (s *AuthServiceSuite) TestAuthenticateRejectsBadCredentials() {
	_, err := s.service.Authenticate(s.ctx, "asha@example.com", "wrong")
	s.True(ierr.IsUnauthenticated(err))

	_, err = s.service.Authenticate(s.ctx, "nobody@example.com", "customer-pass")
	s.True(ierr.IsUnauthenticated(err))
}

func (s *AuthServiceSuite) TestLoginIssuesValidatableSession() {
	resp, err := s.service.Login(s.ctx, models.LoginRequest{Email: "asha@example.com", Password: "customer-pass"})
	s.Require().NoError(err)
	s.NotEmpty(resp.Token)

	p, err := s.service.ValidateSession(s.ctx, resp.Token)
	s.Require().NoError(err)
	s.Equal(models.RoleCustomer, p.Role)
	s.Equal("cust_1", p.ID)

	s.Require().NoError(s.service.Logout(s.ctx, *p))
	_, err = s.service.ValidateSession(s.ctx, resp.Token)
	s.True(ierr.IsUnauthenticated(err))
}

func (s *AuthServiceSuite) TestNewLoginReplacesOldSession() {
	first, err := s.service.Login(s.ctx, models.LoginRequest{Email: "ops@acme.example", Password: "insurer-pass"})
	s.Require().NoError(err)
	time.Sleep(1100 * time.Millisecond)
	second, err := s.service.Login(s.ctx, models.LoginRequest{Email: "ops@acme.example", Password: "insurer-pass"})
	s.Require().NoError(err)

	_, err = s.service.ValidateSession(s.ctx, first.Token)
	s.True(ierr.IsUnauthenticated(err))
	_, err = s.service.ValidateSession(s.ctx, second.Token)
	s.NoError(err)
}

func (s *AuthServiceSuite) TestValidateSessionRejectsGarbage() {
	_, err := s.service.ValidateSession(s.ctx, "not-a-token")
	s.True(ierr.IsUnauthenticated(err))
}

func (s *AuthServiceSuite) TestOTPFlow() {
	s.Require().NoError(s.service.RequestOTP(s.ctx, "asha@example.com"))
	code := s.notifier.OTPs["asha@example.com"]
	s.Len(code, 6)

	_, err := s.service.VerifyOTP(s.ctx, "asha@example.com", "000000x")
	s.True(ierr.IsUnauthenticated(err))

	resp, err := s.service.VerifyOTP(s.ctx, "asha@example.com", code)
	s.Require().NoError(err)
	s.Equal(models.RoleCustomer, resp.Role)

	// Codes are single use.
	_, err = s.service.VerifyOTP(s.ctx, "asha@example.com", code)
	s.True(ierr.IsUnauthenticated(err))
}

func (s *AuthServiceSuite) TestOTPRevokedAfterTooManyWrongCodes() {
	s.Require().NoError(s.service.RequestOTP(s.ctx, "asha@example.com"))
	code := s.notifier.OTPs["asha@example.com"]
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 0; i < utils.OTPMaxAttempts; i++ {
		_, err := s.service.VerifyOTP(s.ctx, "asha@example.com", wrong)
		s.True(ierr.IsUnauthenticated(err))
	}

	// The right code no longer works once the limit is hit.
	_, err := s.service.VerifyOTP(s.ctx, "asha@example.com", code)
	s.Require().Error(err)
	s.Contains(ierr.Hint(err, ""), "not found")

	// A fresh code starts a fresh count.
	s.Require().NoError(s.service.RequestOTP(s.ctx, "asha@example.com"))
	code = s.notifier.OTPs["asha@example.com"]
	wrong = "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = s.service.VerifyOTP(s.ctx, "asha@example.com", wrong)
	s.True(ierr.IsUnauthenticated(err))
	_, err = s.service.VerifyOTP(s.ctx, "asha@example.com", code)
	s.NoError(err)
}

func (s *AuthServiceSuite) TestOTPExpires() {
	now := time.Now()
	s.otps.Now = func() time.Time { return now }
	s.Require().NoError(s.service.RequestOTP(s.ctx, "ops@acme.example"))
	code := s.notifier.OTPs["ops@acme.example"]

	s.otps.Now = func() time.Time { return now.Add(6 * time.Minute) }
	_, err := s.service.VerifyOTP(s.ctx, "ops@acme.example", code)
	s.True(ierr.IsUnauthenticated(err))
}

func (s *AuthServiceSuite) TestOTPUnknownEmailIsSilent() {
	s.NoError(s.service.RequestOTP(s.ctx, "ghost@example.com"))
	s.Empty(s.notifier.OTPs)
}
