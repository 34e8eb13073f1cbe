package services

import (
	"encoding/json"
	"errors"

	"productapi/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	msgFieldsRequired = "All fields are required"
	msgPriceNumber    = "Price must be a number"
	msgInvalidBody    = "Invalid request body"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateProductInput checks that every required field is present.
// Empty strings and nulls are rejected; zero price and false inStock are not.
func ValidateProductInput(input models.ProductInput) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field())
	}
	return &ValidationError{Message: msgFieldsRequired, Fields: fields}
}

// DecodeError turns a JSON body decoding failure into a ValidationError.
// A type mismatch on price gets its own message.
func DecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "price" {
			return &ValidationError{Message: msgPriceNumber, Fields: []string{"price"}}
		}
		return &ValidationError{Message: msgInvalidBody, Fields: []string{typeErr.Field}}
	}
	return &ValidationError{Message: msgInvalidBody}
}
