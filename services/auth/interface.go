package auth

import (
	"context"
	"time"

	customerRepo "insurepay/database/repository/customer"
	insurerRepo "insurepay/database/repository/insurer"
	"insurepay/models"
	"insurepay/services/notification"
	"insurepay/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	// Authenticate resolves email and password to exactly one role.
	Authenticate(ctx context.Context, email, password string) (*models.Principal, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, principal models.Principal) error
	// ValidateSession checks a bearer token against the session cache.
	ValidateSession(ctx context.Context, token string) (*models.Principal, error)

	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*models.LoginResponse, error)
}

// AdminAccount is the single built-in administrator from config.
type AdminAccount struct {
	Email        string
	PasswordHash string
}

// DefaultAuthService is the production implementation.
type DefaultAuthService struct {
	Customers customerRepo.CustomerRepository
	Insurers  insurerRepo.InsurerRepository
	Sessions  KeyValueStore
	OTPs      KeyValueStore
	Notifier  notification.Notifier
	Admin     AdminAccount
	Logger    *zap.Logger
	TokenTTL  time.Duration
	OTPTTL    time.Duration
	// OTPMaxAttempts wrong codes delete the outstanding OTP.
	OTPMaxAttempts int64
}

func NewDefaultAuthService(
	customers customerRepo.CustomerRepository,
	insurers insurerRepo.InsurerRepository,
	sessions, otps KeyValueStore,
	notifier notification.Notifier,
	admin AdminAccount,
	logger *zap.Logger,
) *DefaultAuthService {
	return &DefaultAuthService{
		Customers: customers,
		Insurers:  insurers,
		Sessions:  sessions,
		OTPs:      otps,
		Notifier:  notifier,
		Admin:     admin,
		Logger:    logger,
		TokenTTL:  utils.AuthCacheTTL,
		OTPTTL:    utils.OTPTTL,

		OTPMaxAttempts: utils.OTPMaxAttempts,
	}
}
