package wizard

import (
	"regexp"
	"time"
)

// DateLayout is the accepted birth date format.
const DateLayout = "2006-01-02"

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// Validation messages.
const (
	MsgRequired      = "required"
	MsgDateInFuture  = "date in the future"
	MsgInvalidDate   = "invalid date"
	MsgInvalidEmail  = "invalid email"
	MsgInvalidPhone  = "invalid phone number"
	MsgInvalidIDCard = "invalid id card number"
	MsgShortPassword = "password too short (min 6 characters)"
	MsgInvalidRole   = "invalid role"
	MsgFixErrors     = "Please fix the errors before continuing."
)

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe  = regexp.MustCompile(`^[0-9]{8,15}$`)
	idCardRe = regexp.MustCompile(`^[a-zA-Z0-9]{5,20}$`)
)

// ValidateBirthDate rejects dates after today. today is interpreted in its
// own location, and only its calendar date is used.
func ValidateBirthDate(value string, today time.Time) string {
	d, err := time.ParseInLocation(DateLayout, value, today.Location())
	if err != nil {
		return MsgInvalidDate
	}
	y, m, day := today.Date()
	if d.After(time.Date(y, m, day, 0, 0, 0, 0, today.Location())) {
		return MsgDateInFuture
	}
	return ""
}

func ValidateEmail(value string) string {
	if !emailRe.MatchString(value) {
		return MsgInvalidEmail
	}
	return ""
}

// ValidatePhone accepts 8 to 15 digits.
func ValidatePhone(value string) string {
	if !phoneRe.MatchString(value) {
		return MsgInvalidPhone
	}
	return ""
}

// ValidateIDCard accepts 5 to 20 ASCII letters or digits.
func ValidateIDCard(value string) string {
	if !idCardRe.MatchString(value) {
		return MsgInvalidIDCard
	}
	return ""
}

func ValidatePassword(value string) string {
	if len([]rune(value)) < MinPasswordLen {
		return MsgShortPassword
	}
	return ""
}
