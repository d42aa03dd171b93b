package services

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// checkRequest runs struct tag validation over a parsed request payload and
// folds the first failure into a validation error for the response body.
func checkRequest(params interface{}) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}

	if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
		field := fieldErrors[0]
		return validationError(fmt.Errorf("invalid value for field '%v' (%v)", field.Field(), field.Tag()))
	}
	return validationError(err)
}
