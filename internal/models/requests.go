package models

// SendOTPRequest starts signup for an institutional email.
type SendOTPRequest struct {
	Email         string `json:"email" validate:"required"`
	AcceptedTerms bool   `json:"acceptedTerms"`
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	Department    string `json:"department"`
	Year          int    `json:"year"`
	Password      string `json:"password"`
}

// RegisterRequest confirms signup. Fields left empty fall back to the ones captured by SendOTPRequest.
type RegisterRequest struct {
	Email      string `json:"email" validate:"required"`
	OTP        string `json:"otp" validate:"required"`
	Firstname  string `json:"firstname"`
	Lastname   string `json:"lastname"`
	Department string `json:"department"`
	Year       int    `json:"year"`
	Password   string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type VerifyResetRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type CommentRequest struct {
	Text string `json:"text"`
}
