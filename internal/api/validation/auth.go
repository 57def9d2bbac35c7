package validation

import (
	"errors"
	"strings"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/auth"
)

// SignUpRequest mirrors the fields needed for signup validation.
type SignUpRequest struct {
	Email    string
	Password string
	Name     string
}

// ValidateSignUpRequest applies the account policy (email shape, password length)
// and bounds the optional name.
func ValidateSignUpRequest(req SignUpRequest) []FieldError {
	var errs []FieldError

	if err := auth.ValidateEmail(strings.TrimSpace(req.Email)); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: emailMessage(err)})
	}

	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	} else if err := auth.ValidatePassword(req.Password); err != nil {
		errs = append(errs, FieldError{Field: "password", Message: err.Error()})
	}

	if len(strings.TrimSpace(req.Name)) > maxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	return errs
}

// ValidateRole checks an admin-submitted role value.
func ValidateRole(role string) []FieldError {
	if role == "" {
		return []FieldError{{Field: "role", Message: "role is required"}}
	}
	if !account.Role(role).Valid() {
		return []FieldError{{Field: "role", Message: "role must be \"user\" or \"admin\""}}
	}
	return nil
}

// ValidateProfileName checks the display name submitted on profile update.
func ValidateProfileName(name string) []FieldError {
	name = strings.TrimSpace(name)
	if name == "" {
		return []FieldError{{Field: "name", Message: "name is required"}}
	}
	if len(name) > maxNameLength {
		return []FieldError{{Field: "name", Message: "name must be at most 255 characters"}}
	}
	return nil
}

// ValidateAvatar accepts an empty value (clear), an http(s) URL or an inline
// data:image URI.
func ValidateAvatar(image string) []FieldError {
	switch {
	case image == "":
		return nil
	case strings.HasPrefix(image, "data:image/"):
		return nil
	case strings.HasPrefix(image, "https://"), strings.HasPrefix(image, "http://"):
		return nil
	}
	return []FieldError{{Field: "image", Message: "image must be an http(s) URL or a data:image URI"}}
}

func emailMessage(err error) string {
	if errors.Is(err, auth.ErrEmailRequired) {
		return "email is required"
	}
	return "email must be a valid email address"
}
