package services

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/dto"
	"github.com/nyaruka/phonenumbers"
)

const (
	minNameLength     = 3
	maxNameLength     = 32
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit
	minVehicleYear    = 1930
)

func invalid(format string, args ...interface{}) error {
	return &userError{kind: ErrInvalidInput, msg: fmt.Sprintf(format, args...)}
}

// NormalizeEmail lower-cases and trims an address after checking its syntax.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email must be a valid address")
	}
	return email, nil
}

// NormalizeMobile parses a phone number, falling back to region for numbers
// without a country code, and formats it as E.164.
func NormalizeMobile(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid("mobile number is required")
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", invalid("mobile number is not a valid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func validatePersonName(field, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	n := len([]rune(name))
	if n < minNameLength || n > maxNameLength {
		return "", invalid("%s must be between %d to %d characters", field, minNameLength, maxNameLength)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return "", invalid("%s must only contain letters", field)
		}
	}
	return name, nil
}

func validateAdminName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	n := len([]rune(name))
	if n < minNameLength || n > maxNameLength {
		return "", invalid("name must be between %d to %d characters", minNameLength, maxNameLength)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' {
			return "", invalid("name should only contain letters and spaces")
		}
	}
	return name, nil
}

// validatePassword requires at least eight characters mixing upper case,
// lower case, digits and symbols, and at most 72 bytes.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return invalid("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return invalid("password must be at most %d bytes", maxPasswordBytes)
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
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
	if !upper || !lower || !digit || !symbol {
		return invalid("password must contain upper and lower case letters, a number and a symbol")
	}
	return nil
}

type profile struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
}

func validateProfile(req *dto.CustomerSignupRequest, region string) (profile, error) {
	var (
		p   profile
		err error
	)
	if p.FirstName, err = validatePersonName("first name", req.FirstName); err != nil {
		return p, err
	}
	if p.LastName, err = validatePersonName("last name", req.LastName); err != nil {
		return p, err
	}
	if p.Email, err = NormalizeEmail(req.Email); err != nil {
		return p, err
	}
	if p.Mobile, err = NormalizeMobile(req.Mobile, region); err != nil {
		return p, err
	}
	if err = validatePassword(req.Password); err != nil {
		return p, err
	}
	return p, nil
}

func validateVehicle(req *dto.DriverSignupRequest, now time.Time) error {
	if strings.TrimSpace(req.VehicleModel) == "" {
		return invalid("vehicle model is required")
	}
	if strings.TrimSpace(req.VehicleColor) == "" {
		return invalid("vehicle color is required")
	}
	if strings.TrimSpace(req.VehiclePlateNum) == "" {
		return invalid("vehicle plate number is required")
	}
	if req.VehicleYear < minVehicleYear || req.VehicleYear > now.Year() {
		return invalid("vehicle year must be between %d and %d", minVehicleYear, now.Year())
	}
	return nil
}
