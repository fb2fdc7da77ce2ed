package user

import (
	"errors"
	"fmt"
	"strings"
)

// CreateUserDTO is the request payload for registering an account.
type CreateUserDTO struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role"`
	Password string `json:"password" validate:"required,min=8"`
}

func (dto *CreateUserDTO) Validate() error {
	if len(dto.Username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if !strings.Contains(dto.Email, "@") {
		return errors.New("email is invalid")
	}
	if dto.FullName == "" {
		return errors.New("full_name is required")
	}
	if dto.Role == "" {
		dto.Role = RoleUser
	}
	if !ValidRole(dto.Role) {
		return fmt.Errorf("invalid role %q", dto.Role)
	}
	if len(dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
