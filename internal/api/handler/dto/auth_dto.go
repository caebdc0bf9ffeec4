package dto

import (
	"crm-rep/internal/domain/user"
	"crm-rep/internal/pkg/apperrors"
	"strings"
)

type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *TokenRequest) Validate() error {
	var errs apperrors.FieldErrors
	if strings.TrimSpace(r.Username) == "" {
		errs = append(errs, &apperrors.ValidationError{Field: "username", Message: "This field may not be blank."})
	}
	if r.Password == "" {
		errs = append(errs, &apperrors.ValidationError{Field: "password", Message: "This field may not be blank."})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

func (r *RefreshRequest) Validate() error {
	if strings.TrimSpace(r.Refresh) == "" {
		return apperrors.FieldErrors{{Field: "refresh", Message: "This field may not be blank."}}
	}
	return nil
}

type AccessResponse struct {
	Access string `json:"access"`
}

type UserResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Level      int    `json:"level,omitempty"`
}

func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Department: u.Department,
		Level:      u.Level,
	}
}
