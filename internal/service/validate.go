package service

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/Skotchmaster/accounts/internal/models"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

var passwordLength = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if len(s) > maxPasswordBytes {
		return errors.New("Password must be at most 72 bytes")
	}
	return nil
})

type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullname"`
	Role     string `json:"role"`
}

func (in *RegisterInput) normalize() {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.FullName = strings.TrimSpace(in.FullName)
	in.Role = strings.TrimSpace(in.Role)
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email,
			validation.Required.Error("Email is Empty"),
			is.Email.Error("Email is Invalid")),
		validation.Field(&in.Username,
			validation.Required.Error("Username is required"),
			validation.Length(3, 0).Error("Username must be at least 3 characters long")),
		validation.Field(&in.Password,
			validation.Required.Error("Password is Required"),
			passwordLength),
		validation.Field(&in.Role,
			validation.In(models.RoleUser, models.RoleAdmin).Error("Role is Invalid")),
	)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email,
			validation.Required.Error("Email is Required"),
			is.Email.Error("Email is Invalid")),
		validation.Field(&in.Password,
			validation.Required.Error("Password is Required")),
	)
}

type forgotPasswordInput struct {
	Email string `json:"email"`
}

func (in forgotPasswordInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email,
			validation.Required.Error("Email is Required"),
			is.Email.Error("Email is Invalid")),
	)
}

type newPasswordInput struct {
	NewPassword string `json:"newPassword"`
}

func (in newPasswordInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.NewPassword,
			validation.Required.Error("New password is Required"),
			passwordLength),
	)
}

type changePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (in changePasswordInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.OldPassword,
			validation.Required.Error("Old password is Required")),
		validation.Field(&in.NewPassword,
			validation.Required.Error("New password is Required"),
			passwordLength),
	)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// checkInput runs v.Validate and turns ozzo's field map into a
// ValidationError with one detail per field, ordered by field name. Field
// names come from the json tags.
func checkInput(v validation.Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return internalError("Validation failed", err)
	}

	fields := make([]string, 0, len(fieldErrs))
	for f := range fieldErrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	details := make([]map[string]string, 0, len(fields))
	for _, f := range fields {
		details = append(details, map[string]string{f: fieldErrs[f].Error()})
	}
	return validationError(fieldErrs[fields[0]].Error(), details)
}
