package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	// Sections are prefilled by applyDefaults, but a hand-constructed
	// Config may still miss them.
	if c.General == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general",
			Message:   "configuration must contain 'general' section",
		})
		return validationErrors
	}
	if c.Provider == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "provider",
			Message:   "configuration must contain 'provider' section",
		})
		return validationErrors
	}

	if err := validate.Struct(c.General); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "general")...)
	}
	if err := validate.Struct(c.Provider); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "provider")...)
	}
	if c.Tunnel != nil {
		if err := validate.Struct(c.Tunnel); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "tunnel")...)
		}
	}
	if c.PortForwarding != nil {
		if err := validate.Struct(c.PortForwarding); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "port_forwarding")...)
		}
	}
	if c.Service != nil {
		if err := validate.Struct(c.Service); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "service")...)
		}
	}

	validationErrors = append(validationErrors, c.validateCAFile()...)

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validateCAFile checks the provider CA certificate exists: the key
// exchange cannot be verified without it.
func (c *Config) validateCAFile() ValidationErrors {
	var validationErrors ValidationErrors

	caFile := c.GetAbsCAFile()
	if _, err := os.Stat(caFile); errors.Is(err, os.ErrNotExist) {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "provider.ca_file",
			Message:   fmt.Sprintf("CA certificate not found: %s", caFile),
		})
	}

	return validationErrors
}

func convertValidatorErrors(err error, fieldPrefix string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				// e.Field() returns the TOML tag name because we registered TagNameFunc
				fieldName := e.Field()

				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + fieldName
				} else {
					fieldPath = fieldName
				}
			}

			validationErrors = append(validationErrors, ValidationError{
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	} else {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: fieldPrefix,
			Message:   err.Error(),
		})
	}

	return validationErrors
}
