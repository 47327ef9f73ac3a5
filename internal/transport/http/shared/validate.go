package shared

import (
	"github.com/go-playground/validator/v10"

	dErrors "campuspass/pkg/domain-errors"
)

var validate = validator.New()

// Validate runs struct-tag validation on a decoded request DTO and converts
// the first failure into a client-facing bad request error.
func Validate(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return dErrors.Newf(dErrors.CodeBadRequest, "field %q failed validation on %q", fe.Field(), fe.Tag())
	}
	return dErrors.New(dErrors.CodeBadRequest, "invalid request")
}
