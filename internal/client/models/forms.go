package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrRequired         = errors.New("required field is empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

func (r Registration) Validate() error {
	return required(map[string]string{"name": r.Name, "email": r.Email, "password": r.Password})
}

// UserFields is the payload of create/update on the users list. Empty
// fields are omitted, so an update only sends what changed.
type UserFields struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
}

// ValidateCreate checks the fields a new user cannot go without.
func (f UserFields) ValidateCreate() error {
	return required(map[string]string{"name": f.Name, "email": f.Email})
}

func (f UserFields) IsEmpty() bool {
	return f == UserFields{}
}

// ProfileUpdate is sent as multipart form data; ImagePath, when set, is
// attached as the profileImage file.
type ProfileUpdate struct {
	Name      string
	Email     string
	ImagePath string
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate runs before any request is made.
func (p PasswordChange) Validate() error {
	if err := required(map[string]string{"current password": p.CurrentPassword, "new password": p.NewPassword}); err != nil {
		return err
	}
	if p.NewPassword != p.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: %s", ErrRequired, strings.Join(missing, ", "))
}

