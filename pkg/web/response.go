// Package web defines common components for a web application.
package web

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns human readable message for the failed validation of the field.
func GetErrorMsg(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " field is required"
	case "email":
		return field + " must be a valid email"
	case "accounttype":
		return field + " must be SAVINGS or CURRENT"
	case "numeric":
		return field + " must be a number"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, fe.Param())
	}

	return field + " is invalid"
}
