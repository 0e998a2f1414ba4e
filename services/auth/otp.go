package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"

	ierr "insurepay/errors"
	"insurepay/models"
	"insurepay/utils"

	"go.uber.org/zap"
)

// generateOTP returns a uniformly random 6-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RequestOTP emails a login code to a known account. Unknown emails are
// accepted silently so the endpoint does not reveal which accounts exist.
func (s *DefaultAuthService) RequestOTP(ctx context.Context, email string) error {
	acct, err := s.lookup(ctx, email)
	if err != nil {
		if ierr.IsUnauthenticated(err) {
			s.Logger.Info("OTP requested for unknown email", zap.String("email", email))
			return nil
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return ierr.WithError(err).WithHint("Could not generate code").Mark(ierr.ErrSystem)
	}
	if err := s.OTPs.Del(ctx, otpAttemptsKey(acct.principal.Email)); err != nil {
		s.Logger.Warn("Failed to reset OTP attempts", zap.Error(err))
	}
	if err := s.OTPs.Set(ctx, otpKey(acct.principal.Email), code, s.OTPTTL); err != nil {
		s.Logger.Error("Failed to cache OTP", zap.Error(err))
		return ierr.WithError(err).WithHint("Could not start verification").Mark(ierr.ErrSystem)
	}
	if err := s.Notifier.NotifyOTP(ctx, acct.principal.Email, code, s.OTPTTL); err != nil {
		s.Logger.Error("Failed to send OTP", zap.String("email", acct.principal.Email), zap.Error(err))
		return ierr.WithError(err).WithHint("Could not send verification code").Mark(ierr.ErrSystem)
	}
	return nil
}

// VerifyOTP consumes a code and logs the account in.
func (s *DefaultAuthService) VerifyOTP(ctx context.Context, email, code string) (*models.LoginResponse, error) {
	acct, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	key := otpKey(acct.principal.Email)

	stored, err := s.OTPs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ierr.NewError("otp not found").WithHint("OTP not found or expired").Mark(ierr.ErrUnauthenticated)
		}
		return nil, ierr.WithError(err).WithHint("Could not verify code").Mark(ierr.ErrSystem)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		s.recordFailedOTP(ctx, acct.principal.Email)
		return nil, ierr.NewError("otp mismatch").WithHint("OTP does not match").Mark(ierr.ErrUnauthenticated)
	}
	if err := s.OTPs.Del(ctx, key, otpAttemptsKey(acct.principal.Email)); err != nil {
		s.Logger.Error("Failed to delete OTP after verification", zap.Error(err))
	}
	return s.issue(ctx, acct.principal)
}

// recordFailedOTP counts a wrong code and burns the OTP once the limit is
// reached, so a code cannot be brute forced within its lifetime.
func (s *DefaultAuthService) recordFailedOTP(ctx context.Context, email string) {
	attempts, err := s.OTPs.Incr(ctx, otpAttemptsKey(email), s.OTPTTL)
	if err != nil {
		s.Logger.Error("Failed to count OTP attempt", zap.Error(err))
		return
	}
	if s.OTPMaxAttempts <= 0 || attempts < s.OTPMaxAttempts {
		return
	}
	s.Logger.Warn("OTP attempt limit reached, code revoked",
		zap.String("email", email), zap.Int64("attempts", attempts))
	if err := s.OTPs.Del(ctx, otpKey(email), otpAttemptsKey(email)); err != nil {
		s.Logger.Error("Failed to revoke OTP", zap.Error(err))
	}
}

func otpKey(email string) string {
	return utils.OTPCachePrefix + email
}

func otpAttemptsKey(email string) string {
	return utils.OTPCachePrefix + "attempts:" + email
}
