package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/mailer"
	"github.com/fathima-sithara/campus-service/internal/repository"
	"github.com/fathima-sithara/campus-service/internal/utils"
)

// PasswordResetService runs request, verify and complete for forgotten passwords.
type PasswordResetService struct {
	users    repository.UserRepository
	resets   repository.PasswordResetRepository
	mail     mailer.Mailer
	hashCost int
	otpTTL   time.Duration
	logger   *zap.Logger
}

func NewPasswordResetService(
	users repository.UserRepository,
	resets repository.PasswordResetRepository,
	mail mailer.Mailer,
	hashCost int,
	otpTTL time.Duration,
	logger *zap.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		users:    users,
		resets:   resets,
		mail:     mail,
		hashCost: hashCost,
		otpTTL:   otpTTL,
		logger:   logger,
	}
}

func (s *PasswordResetService) Request(ctx context.Context, rawEmail string) error {
	email := NormalizeEmail(rawEmail)
	if email == "" {
		return invalid("Email is required")
	}
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		return notFoundAs(err, ErrUserNotFound, "find user by email")
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return internal("generate otp", err)
	}
	if err := s.resets.Upsert(ctx, email, code); err != nil {
		return internal("store reset code", err)
	}

	msg, err := mailer.CodeMessage(email, code, s.otpTTL, mailer.PurposePasswordReset)
	if err != nil {
		return internal("render reset email", err)
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Warn("reset code delivery failed", zap.String("email", email), zap.Error(err))
		return delivery("Failed to send password reset code", err)
	}
	return nil
}

func (s *PasswordResetService) Verify(ctx context.Context, rawEmail, code string) error {
	email := NormalizeEmail(rawEmail)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return invalid("Email and OTP are required")
	}
	rec, err := s.resets.FindByEmail(ctx, email)
	if err != nil {
		return notFoundAs(err, ErrCodeExpired, "find reset code")
	}
	if rec.Code != code {
		return ErrCodeMismatch
	}
	if err := s.resets.MarkVerified(ctx, email); err != nil {
		return notFoundAs(err, ErrCodeExpired, "mark reset verified")
	}
	return nil
}

// Complete sets the new password once the code has been verified.
func (s *PasswordResetService) Complete(ctx context.Context, rawEmail, newPassword, confirmPassword string) error {
	email := NormalizeEmail(rawEmail)
	if email == "" || newPassword == "" || confirmPassword == "" {
		return invalid("All fields are required")
	}
	if newPassword != confirmPassword {
		return invalid("Passwords do not match")
	}
	if err := CheckPasswordStrength(newPassword); err != nil {
		return err
	}

	rec, err := s.resets.FindByEmail(ctx, email)
	if err != nil {
		return notFoundAs(err, ErrUnverified, "find reset code")
	}
	if !rec.IsVerified {
		return ErrUnverified
	}

	hash, err := hashPassword(newPassword, s.hashCost)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, email, hash); err != nil {
		return notFoundAs(err, ErrUserNotFound, "set password")
	}
	if err := s.resets.DeleteByEmail(ctx, email); err != nil {
		s.logger.Warn("failed to delete consumed reset code", zap.String("email", email), zap.Error(err))
	}
	s.logger.Info("password reset", zap.String("email", email))
	return nil
}
