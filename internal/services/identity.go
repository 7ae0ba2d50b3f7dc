package services

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/fathima-sithara/campus-service/internal/models"
)

var (
	institutionalEmail = regexp.MustCompile(`^[a-zA-Z]+_\d{11}@hnbgu\.edu\.in$`)
	personName         = regexp.MustCompile(`^[A-Za-z ]+$`)
	errNotInstitution  = errors.New("not an institutional email")
)

// NormalizeEmail trims and lowercases an email; records are keyed by this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsInstitutionalEmail(email string) bool {
	return institutionalEmail.MatchString(email)
}

func splitLocal(email string) (name, roll string, err error) {
	if !IsInstitutionalEmail(email) {
		return "", "", errNotInstitution
	}
	local := email[:strings.IndexByte(email, '@')]
	name, roll, _ = strings.Cut(local, "_")
	return name, roll, nil
}

// DeriveRollNumber returns the 11-digit roll segment of an institutional email.
func DeriveRollNumber(email string) (string, error) {
	_, roll, err := splitLocal(email)
	return roll, err
}

// DeriveHandle joins the name part of the email with the last four digits of the roll number.
func DeriveHandle(email string) (string, error) {
	name, roll, err := splitLocal(email)
	if err != nil {
		return "", err
	}
	return name + roll[len(roll)-4:], nil
}

// DeriveRole classifies a graduate as alumni once their graduation year has
// passed, counting July onward of the graduation year as passed.
func DeriveRole(graduationYear int, now time.Time) models.Role {
	monthIndex := int(now.Month()) - 1
	if graduationYear < now.Year() || (graduationYear == now.Year() && monthIndex > 5) {
		return models.RoleAlumni
	}
	return models.RoleStudent
}

func IsValidName(name string) bool {
	return personName.MatchString(name)
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// CheckPasswordStrength requires 8+ characters with upper, lower, digit and symbol classes.
func CheckPasswordStrength(pw string) error {
	if len(pw) > MaxPasswordBytes {
		return invalid("Password must be at most 72 bytes long")
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if len([]rune(pw)) < 8 || !upper || !lower || !digit || !symbol {
		return invalid("Password must be at least 8 characters and include uppercase, lowercase, number and special character")
	}
	return nil
}
