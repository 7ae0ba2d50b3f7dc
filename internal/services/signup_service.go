package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/activity"
	"github.com/fathima-sithara/campus-service/internal/mailer"
	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/repository"
	"github.com/fathima-sithara/campus-service/internal/utils"
)

// SignupService runs the email-verified registration flow.
type SignupService struct {
	users    repository.UserRepository
	otps     repository.OTPRepository
	mail     mailer.Mailer
	activity activity.Recorder
	hashCost int
	otpTTL   time.Duration
	now      Clock
	logger   *zap.Logger
}

func NewSignupService(
	users repository.UserRepository,
	otps repository.OTPRepository,
	mail mailer.Mailer,
	rec activity.Recorder,
	hashCost int,
	otpTTL time.Duration,
	logger *zap.Logger,
) *SignupService {
	return &SignupService{
		users:    users,
		otps:     otps,
		mail:     mail,
		activity: rec,
		hashCost: hashCost,
		otpTTL:   otpTTL,
		now:      systemClock,
		logger:   logger,
	}
}

// RequestCode validates the signup request and emails a verification code.
func (s *SignupService) RequestCode(ctx context.Context, req models.SendOTPRequest) error {
	email := NormalizeEmail(req.Email)
	if email == "" {
		return invalid("Email is required")
	}
	if !req.AcceptedTerms {
		return invalid("Please accept the terms and conditions")
	}
	if !IsInstitutionalEmail(email) {
		return invalid("Please enter college provided Email!")
	}
	if err := s.ensureAvailable(ctx, email); err != nil {
		return err
	}

	data, err := s.captureFields(req)
	if err != nil {
		return err
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return internal("generate otp", err)
	}
	if err := s.otps.Upsert(ctx, &models.OTP{Email: email, Code: code, ValidatedData: data}); err != nil {
		return internal("store otp", err)
	}

	msg, err := mailer.CodeMessage(email, code, s.otpTTL, mailer.PurposeSignup)
	if err != nil {
		return internal("render otp email", err)
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Warn("signup code delivery failed", zap.String("email", email), zap.Error(err))
		return delivery("Failed to send OTP", err)
	}
	return nil
}

func (s *SignupService) ensureAvailable(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrDuplicateEmail
	case !errors.Is(err, repository.ErrNotFound):
		return internal("find user by email", err)
	}

	roll, _ := DeriveRollNumber(email)
	_, err = s.users.FindByRollNumber(ctx, roll)
	switch {
	case err == nil:
		return ErrDuplicateRollNumber
	case !errors.Is(err, repository.ErrNotFound):
		return internal("find user by roll number", err)
	}
	return nil
}

// captureFields validates the optional registration fields sent with the
// code request. The password is stored hashed.
func (s *SignupService) captureFields(req models.SendOTPRequest) (*models.SignupData, error) {
	data := &models.SignupData{
		Firstname:  strings.TrimSpace(req.Firstname),
		Lastname:   strings.TrimSpace(req.Lastname),
		Department: strings.TrimSpace(req.Department),
		Year:       req.Year,
	}
	if err := checkNames(data.Firstname, data.Lastname); err != nil {
		return nil, err
	}
	if req.Password != "" {
		if err := CheckPasswordStrength(req.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(req.Password, s.hashCost)
		if err != nil {
			return nil, err
		}
		data.Password = hash
	}
	if *data == (models.SignupData{}) {
		return nil, nil
	}
	return data, nil
}

func checkNames(first, last string) error {
	if first != "" && !IsValidName(first) {
		return invalid("First name can only contain letters and spaces")
	}
	if last != "" && !IsValidName(last) {
		return invalid("Last name can only contain letters and spaces")
	}
	return nil
}

// Confirm checks the code and creates the account. Fields missing from the
// request fall back to the ones captured by RequestCode.
func (s *SignupService) Confirm(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := NormalizeEmail(req.Email)
	code := strings.TrimSpace(req.OTP)
	if email == "" || code == "" {
		return nil, invalid("Email and OTP are required")
	}

	rec, err := s.otps.FindByEmail(ctx, email)
	if err != nil {
		return nil, notFoundAs(err, ErrCodeExpired, "find otp")
	}
	if rec.Code != code {
		return nil, ErrCodeMismatch
	}

	fields := mergeSignup(req, rec.ValidatedData)
	if fields.Firstname == "" || fields.Lastname == "" || fields.Department == "" || fields.Year == 0 || fields.Password == "" {
		return nil, invalid("Something is missing, please check!")
	}
	if err := checkNames(fields.Firstname, fields.Lastname); err != nil {
		return nil, err
	}

	// A password in the request replaces the hash captured with the code.
	hash := fields.Password
	if req.Password != "" {
		if err := CheckPasswordStrength(req.Password); err != nil {
			return nil, err
		}
		if hash, err = hashPassword(req.Password, s.hashCost); err != nil {
			return nil, err
		}
	}

	roll, err := DeriveRollNumber(email)
	if err != nil {
		return nil, invalid("Please enter college provided Email!")
	}
	handle, _ := DeriveHandle(email)

	user := &models.User{
		Username:       handle,
		RollNumber:     roll,
		Email:          email,
		FullName:       fields.Firstname + " " + fields.Lastname,
		Password:       hash,
		Department:     fields.Department,
		GraduationYear: fields.Year,
		Role:           DeriveRole(fields.Year, s.now()),
		IsVerified:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, duplicateAs(err)
	}

	if err := s.otps.DeleteByEmail(ctx, email); err != nil {
		s.logger.Warn("failed to delete consumed otp", zap.String("email", email), zap.Error(err))
	}

	s.activity.Record(ctx, activity.Event{
		Type:    activity.UserRegistered,
		ActorID: user.ID.Hex(),
		Attrs:   map[string]string{"role": string(user.Role), "department": user.Department},
		At:      s.now(),
	})
	s.logger.Info("user registered", zap.String("user_id", user.ID.Hex()), zap.String("role", string(user.Role)))
	return user, nil
}

func mergeSignup(req models.RegisterRequest, stored *models.SignupData) models.SignupData {
	out := models.SignupData{
		Firstname:  strings.TrimSpace(req.Firstname),
		Lastname:   strings.TrimSpace(req.Lastname),
		Department: strings.TrimSpace(req.Department),
		Year:       req.Year,
		Password:   req.Password,
	}
	if stored == nil {
		return out
	}
	if out.Firstname == "" {
		out.Firstname = stored.Firstname
	}
	if out.Lastname == "" {
		out.Lastname = stored.Lastname
	}
	if out.Department == "" {
		out.Department = stored.Department
	}
	if out.Year == 0 {
		out.Year = stored.Year
	}
	if out.Password == "" {
		out.Password = stored.Password
	}
	return out
}

func duplicateAs(err error) error {
	var dup *repository.DuplicateKeyError
	if !errors.As(err, &dup) {
		return internal("create user", err)
	}
	switch dup.Field {
	case "rollnumber":
		return ErrDuplicateRollNumber
	case "username":
		return ErrDuplicateUsername
	default:
		return ErrDuplicateEmail
	}
}
